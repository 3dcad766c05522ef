package descriptor

import (
	"errors"

	"github.com/axonops/protodesc-core/internal/wire"
)

// Field numbers for the six descriptor.proto messages this reader
// understands, named the way upb's own GOOGLE_PROTOBUF_*_FIELDNUM macros
// are in original_source/upb/descriptor/reader.c — declared locally rather
// than imported, since descriptorpb's generated Go types carry field
// numbers only as struct-tag metadata, not as named constants.
const (
	fileDescriptorSetFile = 1

	fileDescriptorProtoPackage     = 2
	fileDescriptorProtoMessageType = 4
	fileDescriptorProtoEnumType    = 5

	descriptorProtoName       = 1
	descriptorProtoField      = 2
	descriptorProtoNestedType = 3
	descriptorProtoEnumType   = 4

	fieldDescriptorProtoName         = 1
	fieldDescriptorProtoNumber       = 3
	fieldDescriptorProtoLabel        = 4
	fieldDescriptorProtoType         = 5
	fieldDescriptorProtoTypeName     = 6
	fieldDescriptorProtoDefaultValue = 7

	enumDescriptorProtoName  = 1
	enumDescriptorProtoValue = 2

	enumValueDescriptorProtoName   = 1
	enumValueDescriptorProtoNumber = 2
)

// HandlerTable is the static handler table rooted at FileDescriptorSet. It
// is built fresh per Reader (spec.md §9: "the handler registry is a
// per-reader-construction artifact, not process-global"), wiring every
// callback in reader.go against the field numbers above and declaring
// DescriptorProto's self-recursion on nested_type.
func HandlerTable(r *Reader) *wire.MsgHandlers[*Reader] {
	enumValue := wire.NewMsgHandlers(
		func(r *Reader) error { return r.enumValueStart() },
		func(r *Reader) error { return r.enumValueEnd() },
	)
	enumValue.OnValue(enumValueDescriptorProtoName, func(r *Reader, v wire.Value) error {
		return r.enumValueName(v)
	})
	enumValue.OnValue(enumValueDescriptorProtoNumber, func(r *Reader, v wire.Value) error {
		return r.enumValueNumber(v)
	})

	enum := wire.NewMsgHandlers(
		func(r *Reader) error { return r.enumStart() },
		func(r *Reader) error { return r.enumEnd() },
	)
	enum.OnValue(enumDescriptorProtoName, func(r *Reader, v wire.Value) error {
		return r.enumName(v)
	})
	enum.OnSubmessage(enumDescriptorProtoValue, enumValue)

	field := wire.NewMsgHandlers(
		func(r *Reader) error { return r.fieldStart() },
		func(r *Reader) error { return r.fieldEnd() },
	)
	field.OnValue(fieldDescriptorProtoType, func(r *Reader, v wire.Value) error { return r.fieldType(v) })
	field.OnValue(fieldDescriptorProtoLabel, func(r *Reader, v wire.Value) error { return r.fieldLabel(v) })
	field.OnValue(fieldDescriptorProtoNumber, func(r *Reader, v wire.Value) error { return r.fieldNumber(v) })
	field.OnValue(fieldDescriptorProtoName, func(r *Reader, v wire.Value) error { return r.fieldName(v) })
	field.OnValue(fieldDescriptorProtoTypeName, func(r *Reader, v wire.Value) error { return r.fieldTypeName(v) })
	field.OnValue(fieldDescriptorProtoDefaultValue, func(r *Reader, v wire.Value) error { return r.fieldDefaultValue(v) })

	// DescriptorProto is self-recursive on nested_type: allocate the table
	// first, then register the self-reference once its identity exists
	// (spec.md §9 Design Notes).
	message := wire.NewMsgHandlers[*Reader](
		func(r *Reader) error { return r.messageStart() },
		func(r *Reader) error { return r.messageEnd() },
	)
	message.OnValue(descriptorProtoName, func(r *Reader, v wire.Value) error { return r.messageName(v) })
	message.OnSubmessage(descriptorProtoField, field)
	message.OnSubmessage(descriptorProtoEnumType, enum)
	message.OnSubmessage(descriptorProtoNestedType, message)

	file := wire.NewMsgHandlers(
		func(r *Reader) error { return r.fileStart() },
		func(r *Reader) error { return r.fileEnd() },
	)
	file.OnValue(fileDescriptorProtoPackage, func(r *Reader, v wire.Value) error { return r.filePackage(v) })
	file.OnSubmessage(fileDescriptorProtoMessageType, message)
	file.OnSubmessage(fileDescriptorProtoEnumType, enum)

	set := wire.NewMsgHandlers[*Reader](nil, nil)
	set.OnSubmessage(fileDescriptorSetFile, file)
	return set
}

// Parse runs a full ingestion pass: it decodes data as a FileDescriptorSet,
// drives a fresh Reader through HandlerTable, and finalizes the resulting
// Definitions. owner is passed through to DefList.Donate.
func Parse(data []byte, owner any) ([]Definition, error) {
	r := NewReader()
	table := HandlerTable(r)
	if err := wire.Decode(data, table, r); err != nil {
		// A reader callback may already have recorded a schema-domain
		// error via r.fail before returning it up through wire.Decode
		// (e.g. ErrSchemaIncomplete from messageEnd) — r.status is set in
		// that case and the error is left as-is. Otherwise this error
		// originates in the decoder itself (malformed bytes, depth
		// exceeded) or in ScopeStack.Enter, which constructs its own
		// StructuralError without going through r.fail; wrap it in
		// StructuralError here so Status() always surfaces spec.md §7's
		// taxonomy rather than a bare wire error.
		if r.status == nil {
			var se *StructuralError
			if !errors.As(err, &se) {
				err = &StructuralError{Err: err}
			}
		}
		r.fail(err)
		return nil, r.status
	}
	return r.Finalize(owner)
}
