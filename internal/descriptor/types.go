// Package descriptor implements a push-style streaming parser that
// materializes a FileDescriptorSet into an in-memory graph of message and
// enum definitions.
//
// The parser is driven by callbacks delivered from internal/wire as it walks
// the wire-encoded bytes: a start/value/end callback fires for each of the
// six descriptor messages defined by descriptor.proto that this reader
// understands (FileDescriptorSet, FileDescriptorProto, DescriptorProto,
// FieldDescriptorProto, EnumDescriptorProto, EnumValueDescriptorProto).
// Services, extensions, options, oneofs, map fields and source-location
// info are not modeled.
package descriptor

import "google.golang.org/protobuf/types/descriptorpb"

// Type is the scalar or composite protobuf type tag carried by a FieldDef.
// It reuses descriptor.proto's own enumeration rather than a local copy.
type Type = descriptorpb.FieldDescriptorProto_Type

const (
	typeString = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeBytes  = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	typeEnum   = descriptorpb.FieldDescriptorProto_TYPE_ENUM
)

// Label is a field's cardinality: optional, required, or repeated.
type Label = descriptorpb.FieldDescriptorProto_Label

// Definition is the common interface satisfied by MessageDef and EnumDef,
// the two concrete shapes a parsed descriptor can take.
type Definition interface {
	// FullName returns the dotted, package-qualified name of this
	// definition. Until the enclosing scope frames close and qualify it, it
	// holds the unqualified local name (empty if no name has arrived).
	FullName() string

	// setFullName is used internally by DefList.Qualify and the name
	// callbacks; it is not part of the public contract of a finished graph.
	setFullName(name string)

	isDefinition()
}

// MessageDef is a parsed DescriptorProto: a message's full name and its
// ordered, owned fields.
type MessageDef struct {
	fullName string
	Fields   []*FieldDef
}

func (m *MessageDef) FullName() string        { return m.fullName }
func (m *MessageDef) setFullName(name string) { m.fullName = name }
func (*MessageDef) isDefinition()             {}

// AddField appends a field to this message. Field order is the order
// fields were declared in the wire encoding.
func (m *MessageDef) AddField(f *FieldDef) {
	m.Fields = append(m.Fields, f)
}

// EnumValue is one (name, number) pair of a parsed enum.
type EnumValue struct {
	Name   string
	Number int32
}

// EnumDef is a parsed EnumDescriptorProto: a full name, its ordered values,
// and the default value (the number of the first value added — see
// AddValue).
type EnumDef struct {
	fullName     string
	Values       []EnumValue
	Default      int32
	hasDefault   bool
}

func (e *EnumDef) FullName() string        { return e.fullName }
func (e *EnumDef) setFullName(name string) { e.fullName = name }
func (*EnumDef) isDefinition()             {}

// AddValue appends (name, number) to the enum. The first value added, and
// only the first, becomes the enum's default; EnumDef has no other way to
// set the default.
func (e *EnumDef) AddValue(name string, number int32) {
	if len(e.Values) == 0 && !e.hasDefault {
		e.Default = number
		e.hasDefault = true
	}
	e.Values = append(e.Values, EnumValue{Name: name, Number: number})
}

// FieldDef is a parsed FieldDescriptorProto.
type FieldDef struct {
	Number   int32
	Name     string
	Label    Label
	Type     Type
	TypeName string // set iff Type is TYPE_MESSAGE or TYPE_ENUM

	HasDefault   bool
	DefaultValue any // string, bool, int32, int64, uint32, uint64, float32, or float64
}

// IsTypeRef reports whether this field's Type requires a resolved TypeName
// (message or enum references, resolved later by a symbol table this
// package does not implement).
func (f *FieldDef) IsTypeRef() bool {
	return f.Type == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE ||
		f.Type == descriptorpb.FieldDescriptorProto_TYPE_ENUM
}

// IsSubmessage reports whether this field's Type is MESSAGE or GROUP —
// both of which forbid a default value.
func (f *FieldDef) IsSubmessage() bool {
	return f.Type == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE ||
		f.Type == descriptorpb.FieldDescriptorProto_TYPE_GROUP
}
