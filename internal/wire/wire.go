// Package wire implements the generic, push-style protobuf decoder that
// spec.md's descriptor reader treats as an external collaborator: a single
// pass over wire-encoded bytes that dispatches start/value/end callbacks
// against a static handler table, with explicit submessage recursion and a
// bounded nesting depth.
//
// It is built on google.golang.org/protobuf/encoding/protowire for the
// byte-region primitives (tag/varint/fixed/length-delimited consumption) —
// the concrete form of spec.md's "byte-region abstraction" collaborator.
// Unknown fields and wire groups are skipped silently, matching spec.md §6:
// "groups, unknown fields, and unrecognized submessages within the six
// handled types are silently ignored by the generic decoder before
// reaching the reader."
package wire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Number identifies a protobuf field by its declared field number.
type Number = protowire.Number

// MaxDepth bounds submessage recursion. Decode's own root call is depth 0
// (FileDescriptorSet), its file field is depth 1 (FileDescriptorProto), and
// each nested DescriptorProto adds one more — so 64 levels of nested
// messages (descriptor.maxScopeDepth) reach depth 65. MaxDepth is set to
// 65 accordingly: depth 65 succeeds, depth 66 (the 65th nested message)
// fails with ErrDepthExceeded rather than overflowing any internal stack.
const MaxDepth = 65

// ErrMalformed reports that the input bytes could not be parsed as a
// well-formed protobuf wire stream.
var ErrMalformed = errors.New("malformed protobuf wire data")

// ErrDepthExceeded reports that a message nested more than MaxDepth levels
// deep.
var ErrDepthExceeded = errors.New("message nesting exceeds maximum depth")

// Value is a decoded scalar field's wire-level value, read as whichever
// typed view the caller needs — the byte-region abstraction's
// get_int32/get_byte_region contract (spec.md §6), made concrete.
type Value struct {
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// Int32 interprets the value as a signed 32-bit varint.
func (v Value) Int32() int32 { return int32(v.varint) }

// Int64 interprets the value as a signed 64-bit varint.
func (v Value) Int64() int64 { return int64(v.varint) }

// Uint32 interprets the value as an unsigned 32-bit varint.
func (v Value) Uint32() uint32 { return uint32(v.varint) }

// Uint64 interprets the value as an unsigned 64-bit varint.
func (v Value) Uint64() uint64 { return v.varint }

// Bool interprets the value as a protobuf bool (nonzero varint is true).
func (v Value) Bool() bool { return v.varint != 0 }

// Fixed32 interprets the value as a little-endian 32-bit fixed value.
func (v Value) Fixed32() uint32 { return uint32(v.varint) }

// Fixed64 interprets the value as a little-endian 64-bit fixed value.
func (v Value) Fixed64() uint64 { return v.varint }

// Float32 interprets a Fixed32 value as an IEEE-754 single.
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.varint)) }

// Float64 interprets a Fixed64 value as an IEEE-754 double.
func (v Value) Float64() float64 { return math.Float64frombits(v.varint) }

// Bytes returns the raw length-delimited byte region.
func (v Value) Bytes() []byte { return v.bytes }

// String copies the byte region into a new Go string — the
// upb_byteregion_strdup equivalent; a Go string conversion from []byte
// always copies, so the caller may freely retain it past this callback.
func (v Value) String() string { return string(v.bytes) }

// ValueFunc handles a scalar field value for message-state S.
type ValueFunc[S any] func(state S, v Value) error

// StartFunc handles the start of a submessage for state S.
type StartFunc[S any] func(state S) error

// EndFunc handles the end of a submessage for state S. Returning a
// non-nil error aborts the decode — the reader's equivalent of writing a
// non-OK status into status_out (spec.md §4.3).
type EndFunc[S any] func(state S) error

// FieldHandler binds one field number to either a scalar Value callback or
// a child MsgHandlers table for submessage recursion. Exactly one of Value
// or Submessage should be set.
type FieldHandler[S any] struct {
	Value      ValueFunc[S]
	Submessage *MsgHandlers[S]
}

// MsgHandlers is the static handler table for one descriptor message type:
// its start/end callbacks plus a table from field number to FieldHandler.
// DescriptorProto's table links NESTED_TYPE back to itself to support
// unbounded recursion (spec.md §4.5, §9) — construct it with NewMsgHandlers
// and register the self-link once its identity exists.
type MsgHandlers[S any] struct {
	Start  StartFunc[S]
	End    EndFunc[S]
	Fields map[Number]*FieldHandler[S]
}

// NewMsgHandlers allocates an empty handler table ready for field
// registration.
func NewMsgHandlers[S any](start StartFunc[S], end EndFunc[S]) *MsgHandlers[S] {
	return &MsgHandlers[S]{Start: start, End: end, Fields: make(map[Number]*FieldHandler[S])}
}

// OnValue registers a scalar field handler.
func (m *MsgHandlers[S]) OnValue(num Number, fn ValueFunc[S]) {
	m.Fields[num] = &FieldHandler[S]{Value: fn}
}

// OnSubmessage registers a submessage field, delegating to child.
func (m *MsgHandlers[S]) OnSubmessage(num Number, child *MsgHandlers[S]) {
	m.Fields[num] = &FieldHandler[S]{Submessage: child}
}

// Decode runs a single push-style pass over data, dispatching against root.
// state is threaded through unchanged to every callback — it is the
// reader's own mutable state (DefList, ScopeStack, in-progress builders).
func Decode[S any](data []byte, root *MsgHandlers[S], state S) error {
	return decodeMessage(data, root, state, 0)
}

func decodeMessage[S any](data []byte, h *MsgHandlers[S], state S, depth int) error {
	if depth > MaxDepth {
		return ErrDepthExceeded
	}
	if h.Start != nil {
		if err := h.Start(state); err != nil {
			return err
		}
	}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		fh := h.Fields[num]
		switch {
		case fh == nil:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			data = data[n:]

		case fh.Submessage != nil:
			b, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			data = data[n:]
			if err := decodeMessage(b, fh.Submessage, state, depth+1); err != nil {
				return err
			}

		default:
			val, n, err := consumeValue(typ, data)
			if err != nil {
				return err
			}
			data = data[n:]
			if fh.Value != nil {
				if err := fh.Value(state, val); err != nil {
					return err
				}
			}
		}
	}
	if h.End != nil {
		if err := h.End(state); err != nil {
			return err
		}
	}
	return nil
}

func consumeValue(typ protowire.Type, data []byte) (Value, int, error) {
	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return Value{}, 0, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		return Value{typ: typ, varint: v}, n, nil
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(data)
		if n < 0 {
			return Value{}, 0, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		return Value{typ: typ, varint: uint64(v)}, n, nil
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(data)
		if n < 0 {
			return Value{}, 0, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		return Value{typ: typ, varint: v}, n, nil
	case protowire.BytesType:
		b, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return Value{}, 0, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		return Value{typ: typ, bytes: b}, n, nil
	default:
		// Groups (start/end group wire types) are a non-goal (spec.md §1).
		return Value{}, 0, fmt.Errorf("%w: unsupported wire type %d", ErrMalformed, typ)
	}
}
