package descriptor

import (
	"errors"
	"fmt"

	"github.com/axonops/protodesc-core/internal/wire"
)

// Reader is the top-level parser state: it ties together a DefList, a
// ScopeStack, and the in-progress field/enum-value builders, and exposes
// the callback methods internal/wire's handler table dispatches against
// (spec.md §4.3). A Reader is driven by exactly one decode pass and must
// not be reused across parses or shared across goroutines.
type Reader struct {
	defs  *DefList
	scope *ScopeStack

	field *fieldBuilder
	enval *enumValueBuilder

	status error // sticky: set once, never cleared
}

// NewReader returns a Reader ready to be driven by wire.Decode against
// HandlerTable().
func NewReader() *Reader {
	defs := NewDefList()
	return &Reader{
		defs:  defs,
		scope: NewScopeStack(defs),
	}
}

// Status reports the first error encountered during the parse, or nil if
// none has occurred yet.
func (r *Reader) Status() error { return r.status }

// fail records the first error seen; later calls are no-ops, matching
// spec.md §7's "sticky on first error" policy.
func (r *Reader) fail(err error) error {
	if r.status == nil {
		r.status = err
	}
	return r.status
}

// Finalize donates the parsed Definitions to owner. It only succeeds if no
// error was recorded during the parse; otherwise it returns the recorded
// status and no Definitions.
func (r *Reader) Finalize(owner any) ([]Definition, error) {
	if r.status != nil {
		return nil, r.status
	}
	return r.defs.Donate(owner), nil
}

// top locates the MessageDef enclosing the field or nested definition
// currently being assembled: the container-index trick from
// original_source/upb/descriptor/reader.c (upb_descreader_top). When a
// container pushes its scope frame, the container's own Definition has
// already been appended, so it sits immediately before the frame's start
// index.
func (r *Reader) top() *MessageDef {
	f := r.scope.Top()
	d := r.defs.At(f.Start - 1)
	m, _ := d.(*MessageDef)
	return m
}

// ---- FileDescriptorProto ----------------------------------------------

func (r *Reader) fileStart() error {
	if err := r.scope.Enter(); err != nil {
		return err
	}
	return nil
}

func (r *Reader) fileEnd() error {
	r.scope.Leave()
	return nil
}

func (r *Reader) filePackage(v wire.Value) error {
	r.scope.SetScopeName(v.String())
	return nil
}

// ---- DescriptorProto (messages, self-recursive via nested_type) -------

func (r *Reader) messageStart() error {
	r.defs.Push(&MessageDef{})
	return r.scope.Enter()
}

func (r *Reader) messageEnd() error {
	m := r.top()
	if m.FullName() == "" {
		return r.fail(fmt.Errorf("%w: Encountered message with no name.", ErrSchemaIncomplete))
	}
	r.scope.Leave()
	return nil
}

func (r *Reader) messageName(v wire.Value) error {
	name := v.String()
	r.top().setFullName(name)
	r.scope.SetScopeName(name)
	return nil
}

// ---- FieldDescriptorProto -----------------------------------------------

func (r *Reader) fieldStart() error {
	r.field = newFieldBuilder()
	return nil
}

func (r *Reader) fieldEnd() error {
	f := r.field
	r.field = nil

	m := r.top()
	m.AddField(f.field)

	if !f.sawDefault {
		return nil
	}
	if f.field.IsSubmessage() {
		return r.fail(fmt.Errorf("%w: Submessages cannot have defaults.", ErrSchemaInvalid))
	}

	switch f.field.Type {
	case typeString, typeBytes, typeEnum:
		f.field.DefaultValue = f.defaultLiteral
	default:
		val, err := parseDefault(f.defaultLiteral, f.field.Type)
		if err != nil {
			if errors.Is(err, ErrSchemaIncomplete) {
				return r.fail(err)
			}
			return r.fail(fmt.Errorf("%w: Error converting default value.", ErrDefaultParse))
		}
		f.field.DefaultValue = val
	}
	f.field.HasDefault = true
	return nil
}

func (r *Reader) fieldType(v wire.Value) error {
	r.field.field.Type = Type(v.Int32())
	return nil
}

func (r *Reader) fieldLabel(v wire.Value) error {
	r.field.field.Label = Label(v.Int32())
	return nil
}

func (r *Reader) fieldNumber(v wire.Value) error {
	r.field.field.Number = v.Int32()
	return nil
}

func (r *Reader) fieldName(v wire.Value) error {
	r.field.field.Name = v.String()
	return nil
}

func (r *Reader) fieldTypeName(v wire.Value) error {
	r.field.field.TypeName = v.String()
	return nil
}

func (r *Reader) fieldDefaultValue(v wire.Value) error {
	r.field.defaultLiteral = v.String()
	r.field.sawDefault = true
	return nil
}

// ---- EnumDescriptorProto ------------------------------------------------

func (r *Reader) enumStart() error {
	r.defs.Push(&EnumDef{})
	return nil
}

func (r *Reader) enumEnd() error {
	e := r.defs.Last().(*EnumDef)
	if e.FullName() == "" {
		return r.fail(fmt.Errorf("%w: Enum had no name.", ErrSchemaIncomplete))
	}
	if len(e.Values) == 0 {
		return r.fail(fmt.Errorf("%w: Enum had no values.", ErrSchemaIncomplete))
	}
	return nil
}

func (r *Reader) enumName(v wire.Value) error {
	r.defs.Last().setFullName(v.String())
	return nil
}

// ---- EnumValueDescriptorProto --------------------------------------------

func (r *Reader) enumValueStart() error {
	r.enval = newEnumValueBuilder()
	return nil
}

func (r *Reader) enumValueEnd() error {
	v := r.enval
	r.enval = nil
	if !v.sawName || !v.sawNumber {
		return r.fail(fmt.Errorf("%w: Enum value missing name or number.", ErrSchemaIncomplete))
	}
	e := r.defs.Last().(*EnumDef)
	e.AddValue(v.name, v.number)
	return nil
}

func (r *Reader) enumValueName(v wire.Value) error {
	r.enval.name = v.String()
	r.enval.sawName = true
	return nil
}

func (r *Reader) enumValueNumber(v wire.Value) error {
	r.enval.number = v.Int32()
	r.enval.sawNumber = true
	return nil
}
