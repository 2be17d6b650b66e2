package metadata

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/joshuapare/pekit/overlay"
	"github.com/joshuapare/pekit/pkg/types"
)

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	KindNone    ValueKind = iota // no value (e.g. a null reference)
	KindLiteral                  // unsigned integer literal
	KindString                   // decoded text
	KindStruct                   // raw bytes of a nested structure
	KindRef                      // deferred reference to another row
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLiteral:
		return "literal"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the decoded content of a Cell. It holds exactly one variant.
type Value struct {
	kind ValueKind
	lit  uint64
	str  string
	data []byte
	ref  RowPointer
}

// Literal returns an integer literal value.
func Literal(v uint64) Value { return Value{kind: KindLiteral, lit: v} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Struct returns a nested structure value holding a copy of raw.
func Struct(raw []byte) Value {
	b := make([]byte, len(raw))
	copy(b, raw)
	return Value{kind: KindStruct, data: b}
}

// Ref returns a reference value.
func Ref(p RowPointer) Value { return Value{kind: KindRef, ref: p} }

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNone reports whether v holds no value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Literal returns the integer literal, if v holds one.
func (v Value) Literal() (uint64, bool) { return v.lit, v.kind == KindLiteral }

// Text returns the string, if v holds one.
func (v Value) Text() (string, bool) { return v.str, v.kind == KindString }

// StructBytes returns a copy of the nested structure bytes, if v holds them.
func (v Value) StructBytes() ([]byte, bool) {
	if v.kind != KindStruct {
		return nil, false
	}
	b := make([]byte, len(v.data))
	copy(b, v.data)
	return b, true
}

// Ref returns the row pointer, if v holds one.
func (v Value) Ref() (RowPointer, bool) { return v.ref, v.kind == KindRef }

// String formats v for display.
func (v Value) String() string {
	switch v.kind {
	case KindLiteral:
		return strconv.FormatUint(v.lit, 10)
	case KindString:
		return strconv.Quote(v.str)
	case KindStruct:
		return hex.EncodeToString(v.data)
	case KindRef:
		return v.ref.String()
	default:
		return "<none>"
	}
}

// StructOf overlays a nested structure value as a T. The bytes are taken to
// be in host order already.
func StructOf[T any](v Value) (T, error) {
	var zero T
	if v.kind != KindStruct {
		return zero, types.InvalidArgument("metadata: %s value is not a structure", v.kind)
	}
	return overlay.Decode[T](v.data)
}
