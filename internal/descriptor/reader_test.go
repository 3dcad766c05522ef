package descriptor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Scenario 1: empty file with package only.
func TestParse_EmptyFileWithPackageOnly(t *testing.T) {
	data := encodeFileSet(fileSpec{pkg: "x.y"})

	defs, err := Parse(data, t)
	require.NoError(t, err)
	assert.Empty(t, defs)
}

// Scenario 2: single message with one int field.
func TestParse_SingleMessageOneIntField(t *testing.T) {
	data := encodeFileSet(fileSpec{
		pkg: "p",
		messages: []msgSpec{{
			name: "M",
			fields: []fieldSpec{{
				name:   "a",
				number: 1,
				typ:    int32(descriptorpb.FieldDescriptorProto_TYPE_INT32),
				label:  int32(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
			}},
		}},
	})

	defs, err := Parse(data, t)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	m, ok := defs[0].(*MessageDef)
	require.True(t, ok)
	assert.Equal(t, "p.M", m.FullName())
	require.Len(t, m.Fields, 1)

	f := m.Fields[0]
	assert.Equal(t, "a", f.Name)
	assert.Equal(t, int32(1), f.Number)
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_INT32, f.Type)
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, f.Label)
	assert.False(t, f.HasDefault)
}

// Scenario 3: nested messages.
func TestParse_NestedMessages(t *testing.T) {
	data := encodeFileSet(fileSpec{
		pkg: "p",
		messages: []msgSpec{{
			name: "A",
			nested: []msgSpec{{
				name: "B",
				nested: []msgSpec{{
					name: "C",
				}},
			}},
		}},
	})

	defs, err := Parse(data, t)
	require.NoError(t, err)
	require.Len(t, defs, 3)

	var names []string
	for _, d := range defs {
		names = append(names, d.FullName())
	}
	assert.Equal(t, []string{"p.A", "p.A.B", "p.A.B.C"}, names)
}

// Scenario 4: enum with default-by-first-value.
func TestParse_EnumDefaultByFirstValue(t *testing.T) {
	data := encodeFileSet(fileSpec{
		enums: []enumSpec{{
			name: "E",
			values: []enumValueSpec{
				{name: "ONE", number: 1},
				{name: "TWO", number: 2},
			},
		}},
	})

	defs, err := Parse(data, t)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	e, ok := defs[0].(*EnumDef)
	require.True(t, ok)
	assert.Equal(t, "E", e.FullName())
	assert.Equal(t, int32(1), e.Default)
	assert.Equal(t, []EnumValue{{Name: "ONE", Number: 1}, {Name: "TWO", Number: 2}}, e.Values)
}

// Scenario 5: field with typed default.
func TestParse_FieldWithTypedDefault(t *testing.T) {
	data := encodeFileSet(fileSpec{
		messages: []msgSpec{{
			name: "M",
			fields: []fieldSpec{{
				name:         "n",
				number:       1,
				typ:          int32(descriptorpb.FieldDescriptorProto_TYPE_UINT32),
				defaultValue: "0xff",
				hasDefault:   true,
			}},
		}},
	})

	defs, err := Parse(data, t)
	require.NoError(t, err)
	m := defs[0].(*MessageDef)
	f := m.Fields[0]
	require.True(t, f.HasDefault)
	assert.Equal(t, uint32(255), f.DefaultValue)
}

// Scenario 6: invalid - enum value missing number.
func TestParse_EnumValueMissingNumber(t *testing.T) {
	// Built by hand rather than via encodeEnumValue, which always writes a
	// number field: this scenario needs "number" genuinely absent.
	ev := appendString(nil, enumValueDescriptorProtoName, "X")
	enum := appendString(nil, enumDescriptorProtoName, "E")
	enum = appendBytesField(enum, enumDescriptorProtoValue, ev)
	file := appendBytesField(nil, fileDescriptorProtoEnumType, enum)
	data := appendBytesField(nil, fileDescriptorSetFile, file)

	_, err := Parse(data, t)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaIncomplete)
	assert.Contains(t, err.Error(), "Enum value missing name or number.")
}

func TestParse_MessageWithNoName(t *testing.T) {
	var msg []byte // no "name" field at all
	msg = appendBytesField(msg, descriptorProtoField, encodeField(fieldSpec{name: "a", number: 1}))
	var file []byte
	file = appendBytesField(file, fileDescriptorProtoMessageType, msg)
	data := appendBytesField(nil, fileDescriptorSetFile, file)

	_, err := Parse(data, t)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaIncomplete)
	assert.Contains(t, err.Error(), "Encountered message with no name.")
}

func TestParse_EnumWithNoValues(t *testing.T) {
	data := encodeFileSet(fileSpec{enums: []enumSpec{{name: "Empty"}}})
	_, err := Parse(data, t)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaIncomplete)
	assert.Contains(t, err.Error(), "Enum had no values.")
}

func TestParse_SubmessageFieldWithDefaultIsInvalid(t *testing.T) {
	data := encodeFileSet(fileSpec{
		messages: []msgSpec{{
			name: "M",
			fields: []fieldSpec{{
				name:         "child",
				number:       1,
				typ:          int32(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE),
				typeName:     ".p.Other",
				defaultValue: "anything",
				hasDefault:   true,
			}},
		}},
	})
	_, err := Parse(data, t)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaInvalid)
}

func TestParse_DefaultOutOfRangeIsParseError(t *testing.T) {
	data := encodeFileSet(fileSpec{
		messages: []msgSpec{{
			name: "M",
			fields: []fieldSpec{{
				name:         "n",
				number:       1,
				typ:          int32(descriptorpb.FieldDescriptorProto_TYPE_INT32),
				defaultValue: "0x80000000",
				hasDefault:   true,
			}},
		}},
	})
	_, err := Parse(data, t)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDefaultParse)
}

func TestParse_MaxInt32DefaultSucceeds(t *testing.T) {
	data := encodeFileSet(fileSpec{
		messages: []msgSpec{{
			name: "M",
			fields: []fieldSpec{{
				name:         "n",
				number:       1,
				typ:          int32(descriptorpb.FieldDescriptorProto_TYPE_INT32),
				defaultValue: "0x7fffffff",
				hasDefault:   true,
			}},
		}},
	})
	defs, err := Parse(data, t)
	require.NoError(t, err)
	f := defs[0].(*MessageDef).Fields[0]
	assert.Equal(t, int32(2147483647), f.DefaultValue)
}

func TestParse_BoolDefaultStrict(t *testing.T) {
	for _, tc := range []struct {
		literal string
		wantErr bool
		want    bool
	}{
		{"true", false, true},
		{"false", false, false},
		{"True", true, false},
		{"1", true, false},
	} {
		data := encodeFileSet(fileSpec{
			messages: []msgSpec{{
				name: "M",
				fields: []fieldSpec{{
					name:         "b",
					number:       1,
					typ:          int32(descriptorpb.FieldDescriptorProto_TYPE_BOOL),
					defaultValue: tc.literal,
					hasDefault:   true,
				}},
			}},
		})
		defs, err := Parse(data, t)
		if tc.wantErr {
			require.Error(t, err, tc.literal)
			assert.ErrorIs(t, err, ErrDefaultParse)
			continue
		}
		require.NoError(t, err, tc.literal)
		assert.Equal(t, tc.want, defs[0].(*MessageDef).Fields[0].DefaultValue)
	}
}

func TestParse_EmptyStringDefaultAcceptedVerbatim(t *testing.T) {
	data := encodeFileSet(fileSpec{
		messages: []msgSpec{{
			name: "M",
			fields: []fieldSpec{{
				name:         "s",
				number:       1,
				typ:          int32(descriptorpb.FieldDescriptorProto_TYPE_STRING),
				defaultValue: "",
				hasDefault:   true,
			}},
		}},
	})
	defs, err := Parse(data, t)
	require.NoError(t, err)
	f := defs[0].(*MessageDef).Fields[0]
	assert.True(t, f.HasDefault)
	assert.Equal(t, "", f.DefaultValue)
}

func TestParse_TypeRefKeepsTypeName(t *testing.T) {
	data := encodeFileSet(fileSpec{
		messages: []msgSpec{{
			name: "M",
			fields: []fieldSpec{{
				name:     "child",
				number:   1,
				typ:      int32(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE),
				typeName: ".p.Other",
			}},
		}},
	})
	defs, err := Parse(data, t)
	require.NoError(t, err)
	f := defs[0].(*MessageDef).Fields[0]
	assert.True(t, f.IsTypeRef())
	assert.Equal(t, ".p.Other", f.TypeName)
}

// Depth boundary: nested messages at the decoder's stack bound succeed;
// one level deeper fails structurally (spec.md §8).
func TestParse_DepthBoundary(t *testing.T) {
	build := func(depth int) msgSpec {
		m := msgSpec{name: "M0"}
		cur := &m
		for i := 1; i < depth; i++ {
			cur.nested = []msgSpec{{name: "M"}}
			cur = &cur.nested[0]
		}
		return m
	}

	okData := encodeFileSet(fileSpec{messages: []msgSpec{build(maxScopeDepth)}})
	_, err := Parse(okData, t)
	assert.NoError(t, err)

	tooDeep := encodeFileSet(fileSpec{messages: []msgSpec{build(maxScopeDepth + 1)}})
	_, err = Parse(tooDeep, t)
	require.Error(t, err)
	var se *StructuralError
	assert.True(t, errors.As(err, &se) || errors.Is(err, errDepthExceeded))
}

// Qualification is idempotent when the package is empty.
func TestParse_QualificationIdempotentWithEmptyPackage(t *testing.T) {
	data := encodeFileSet(fileSpec{
		messages: []msgSpec{{name: "Lonely"}},
	})
	defs, err := Parse(data, t)
	require.NoError(t, err)
	assert.Equal(t, "Lonely", defs[0].FullName())
}

// Every Definition's full name is the dotted concatenation of package and
// enclosing names (property check across a richer graph), verified with
// go-cmp against the expected structural shape.
func TestParse_FullGraphShape(t *testing.T) {
	data := encodeFileSet(fileSpec{
		pkg: "p",
		messages: []msgSpec{{
			name: "A",
			fields: []fieldSpec{{
				name: "x", number: 1,
				typ: int32(descriptorpb.FieldDescriptorProto_TYPE_INT32),
			}},
			enums: []enumSpec{{
				name:   "Color",
				values: []enumValueSpec{{name: "RED", number: 0}},
			}},
		}},
	})
	defs, err := Parse(data, t)
	require.NoError(t, err)

	var names []string
	for _, d := range defs {
		names = append(names, d.FullName())
	}
	want := []string{"p.A", "p.A.Color"}
	if diff := cmp.Diff(want, names, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("full names mismatch (-want +got):\n%s", diff)
	}
}

func TestStatus_StickyOnFirstError(t *testing.T) {
	bad := appendBytesField(nil, fileDescriptorSetFile,
		appendBytesField(nil, fileDescriptorProtoEnumType,
			appendString(nil, enumDescriptorProtoName, ""))) // enum with empty name
	_, err := Parse(bad, t)
	require.Error(t, err)
	first := err

	// Calling fail again must not change the recorded status.
	r2 := NewReader()
	r2.status = first
	r2.fail(errors.New("later error"))
	assert.Equal(t, first, r2.status)
}
