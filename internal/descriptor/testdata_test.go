package descriptor

import "google.golang.org/protobuf/encoding/protowire"

// Hand-built wire encodings of google.protobuf.FileDescriptorSet messages,
// used instead of depending on a .proto toolchain at test time. Each
// helper mirrors descriptor.proto's canonical field numbers (handlers.go).

type fieldSpec struct {
	name         string
	number       int32
	label        int32
	typ          int32
	typeName     string
	defaultValue string
	hasDefault   bool
}

type msgSpec struct {
	name    string
	fields  []fieldSpec
	nested  []msgSpec
	enums   []enumSpec
}

type enumValueSpec struct {
	name   string
	number int32
}

type enumSpec struct {
	name   string
	values []enumValueSpec
}

func appendTag(b []byte, num protowire.Number, typ protowire.Type) []byte {
	return protowire.AppendTag(b, num, typ)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = appendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = appendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, payload []byte) []byte {
	b = appendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func encodeField(f fieldSpec) []byte {
	var b []byte
	b = appendString(b, fieldDescriptorProtoName, f.name)
	if f.number != 0 {
		b = appendVarint(b, fieldDescriptorProtoNumber, uint64(f.number))
	}
	if f.label != 0 {
		b = appendVarint(b, fieldDescriptorProtoLabel, uint64(f.label))
	}
	if f.typ != 0 {
		b = appendVarint(b, fieldDescriptorProtoType, uint64(f.typ))
	}
	if f.typeName != "" {
		b = appendString(b, fieldDescriptorProtoTypeName, f.typeName)
	}
	if f.hasDefault {
		b = appendString(b, fieldDescriptorProtoDefaultValue, f.defaultValue)
	}
	return b
}

func encodeEnumValue(v enumValueSpec) []byte {
	var b []byte
	b = appendString(b, enumValueDescriptorProtoName, v.name)
	b = appendVarint(b, enumValueDescriptorProtoNumber, uint64(v.number))
	return b
}

func encodeEnum(e enumSpec) []byte {
	var b []byte
	b = appendString(b, enumDescriptorProtoName, e.name)
	for _, v := range e.values {
		b = appendBytesField(b, enumDescriptorProtoValue, encodeEnumValue(v))
	}
	return b
}

func encodeMessage(m msgSpec) []byte {
	var b []byte
	b = appendString(b, descriptorProtoName, m.name)
	for _, f := range m.fields {
		b = appendBytesField(b, descriptorProtoField, encodeField(f))
	}
	for _, e := range m.enums {
		b = appendBytesField(b, descriptorProtoEnumType, encodeEnum(e))
	}
	for _, n := range m.nested {
		b = appendBytesField(b, descriptorProtoNestedType, encodeMessage(n))
	}
	return b
}

type fileSpec struct {
	pkg      string
	messages []msgSpec
	enums    []enumSpec
}

func encodeFile(f fileSpec) []byte {
	var b []byte
	if f.pkg != "" {
		b = appendString(b, fileDescriptorProtoPackage, f.pkg)
	}
	for _, m := range f.messages {
		b = appendBytesField(b, fileDescriptorProtoMessageType, encodeMessage(m))
	}
	for _, e := range f.enums {
		b = appendBytesField(b, fileDescriptorProtoEnumType, encodeEnum(e))
	}
	return b
}

func encodeFileSet(files ...fileSpec) []byte {
	var b []byte
	for _, f := range files {
		b = appendBytesField(b, fileDescriptorSetFile, encodeFile(f))
	}
	return b
}
