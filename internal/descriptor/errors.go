package descriptor

import "errors"

// errDepthExceeded is wrapped in a StructuralError when ScopeStack.Enter
// would exceed maxScopeDepth.
var errDepthExceeded = errors.New("nested message depth exceeds decoder limit")

// Sentinel errors for the four-member error taxonomy a parse can surface.
// All of them are fatal to the current parse: the reader's status is set
// once and the graph becomes unextractable (spec §7).
var (
	// ErrSchemaIncomplete covers: message with no name, enum with no name,
	// enum with no values, enum value missing name or number, and a field
	// whose default_value arrived but whose type was never set.
	ErrSchemaIncomplete = errors.New("schema incomplete")

	// ErrSchemaInvalid covers a submessage (MESSAGE/GROUP) field declared
	// with a default value.
	ErrSchemaInvalid = errors.New("schema invalid")

	// ErrDefaultParse covers a default literal that does not parse under
	// its field's declared scalar type, or is out of range for it.
	ErrDefaultParse = errors.New("default value parse error")
)

// StructuralError wraps errors that are not schema errors: malformed bytes
// or nesting past the depth bound. Parse wraps errors from the wire decoder
// in one, and ScopeStack.Enter returns one when its frame capacity is
// exhausted.
type StructuralError struct {
	Err error
}

func (e *StructuralError) Error() string { return "structural error: " + e.Err.Error() }
func (e *StructuralError) Unwrap() error { return e.Err }
