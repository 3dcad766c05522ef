//go:build bdd

package steps

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers for the descriptor.proto messages these fixtures encode,
// matching internal/descriptor/handlers.go's local constants.
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
	fieldDescriptorProtoDefaultValue = 7

	enumDescriptorProtoName  = 1
	enumDescriptorProtoValue = 2

	enumValueDescriptorProtoName   = 1
	enumValueDescriptorProtoNumber = 2
)

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendMessageField(b []byte, num protowire.Number, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func encodeField(f fieldFixture) []byte {
	var b []byte
	if f.name != "" {
		b = appendStringField(b, fieldDescriptorProtoName, f.name)
	}
	if f.number != 0 {
		b = appendVarintField(b, fieldDescriptorProtoNumber, uint64(f.number))
	}
	if f.label != 0 {
		b = appendVarintField(b, fieldDescriptorProtoLabel, uint64(f.label))
	}
	if f.typ != 0 {
		b = appendVarintField(b, fieldDescriptorProtoType, uint64(f.typ))
	}
	if f.hasDefault {
		b = appendStringField(b, fieldDescriptorProtoDefaultValue, f.defaultValue)
	}
	return b
}

func encodeEnumValue(v enumValueFixture) []byte {
	var b []byte
	if v.name != "" {
		b = appendStringField(b, enumValueDescriptorProtoName, v.name)
	}
	if v.hasNumber {
		b = appendVarintField(b, enumValueDescriptorProtoNumber, uint64(v.number))
	}
	return b
}

func encodeEnum(e enumFixture) []byte {
	var b []byte
	if e.name != "" {
		b = appendStringField(b, enumDescriptorProtoName, e.name)
	}
	for _, v := range e.values {
		b = appendMessageField(b, enumDescriptorProtoValue, encodeEnumValue(v))
	}
	return b
}

func encodeMessage(m messageFixture) []byte {
	var b []byte
	if m.name != "" {
		b = appendStringField(b, descriptorProtoName, m.name)
	}
	for _, f := range m.fields {
		b = appendMessageField(b, descriptorProtoField, encodeField(f))
	}
	for _, n := range m.nested {
		b = appendMessageField(b, descriptorProtoNestedType, encodeMessage(n))
	}
	return b
}

// encode serializes the fixture accumulated on tc into a wire-encoded
// FileDescriptorSet containing exactly one file.
func (tc *TestContext) encode() []byte {
	var file []byte
	if tc.hasPkg {
		file = appendStringField(file, fileDescriptorProtoPackage, tc.pkg)
	}
	for _, m := range tc.messages {
		file = appendMessageField(file, fileDescriptorProtoMessageType, encodeMessage(m))
	}
	for _, e := range tc.enums {
		file = appendMessageField(file, fileDescriptorProtoEnumType, encodeEnum(e))
	}

	var set []byte
	set = appendMessageField(set, fileDescriptorSetFile, file)
	return set
}
