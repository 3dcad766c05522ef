package descriptor

// fieldBuilder holds the in-progress state for the FieldDescriptorProto
// currently being assembled. It is owned by the reader between the field's
// start and end callbacks; nothing outside this package sees a partially
// built FieldDef.
type fieldBuilder struct {
	field *FieldDef

	// defaultLiteral is the raw textual default_value, stashed because it
	// may arrive before the field's type does (spec.md §4.4,
	// FieldDescriptorProto). Parsed in a type-directed way at end-of-message.
	defaultLiteral string
	sawDefault     bool
}

func newFieldBuilder() *fieldBuilder {
	return &fieldBuilder{field: &FieldDef{}}
}

// enumValueBuilder holds the in-progress state for the
// EnumValueDescriptorProto currently being assembled.
type enumValueBuilder struct {
	name     string
	number   int32
	sawName  bool
	sawNumber bool
}

func newEnumValueBuilder() *enumValueBuilder {
	return &enumValueBuilder{}
}
