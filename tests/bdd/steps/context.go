//go:build bdd

// Package steps holds godog step definitions for the descriptor ingestion
// feature suite: building wire-encoded FileDescriptorSet fixtures, driving
// them through descriptor.Parse, and asserting on the resulting graph.
package steps

import (
	"github.com/axonops/protodesc-core/internal/descriptor"
)

// Protobuf scalar type tags, mirroring descriptor.proto's own numbering
// (descriptorpb.FieldDescriptorProto_Type). Declared locally since a
// feature step needs to write a bare "INT32"/"UINT32" token, not import
// the generated enum.
const (
	typeInt32  = 5
	typeUint32 = 13
)

const labelOptional = 1

// fieldFixture describes one field to encode onto a message fixture.
type fieldFixture struct {
	name         string
	number       int32
	label        int32
	typ          int32
	defaultValue string
	hasDefault   bool
}

// messageFixture describes one message, optionally containing nested
// messages, to encode onto a file fixture.
type messageFixture struct {
	name   string
	fields []fieldFixture
	nested []messageFixture
}

// enumValueFixture describes one (name, number) enum value. hasNumber is
// false for the "missing number" scenario, where the number field is
// omitted from the wire encoding entirely.
type enumValueFixture struct {
	name      string
	number    int32
	hasNumber bool
}

// enumFixture describes one enum to encode onto a file fixture.
type enumFixture struct {
	name   string
	values []enumValueFixture
}

// TestContext accumulates the fixture under construction across a
// scenario's Given steps, then holds the outcome of the When step for the
// Then steps to assert against.
type TestContext struct {
	pkg      string
	hasPkg   bool
	messages []messageFixture
	enums    []enumFixture

	defs     []descriptor.Definition
	parseErr error
}

// NewTestContext returns a fresh, empty fixture builder for one scenario.
func NewTestContext() *TestContext {
	return &TestContext{}
}
