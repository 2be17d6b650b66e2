package endian

import (
	"encoding/binary"
	"reflect"

	"github.com/joshuapare/pekit/internal/buf"
	"github.com/joshuapare/pekit/pkg/types"
)

// SwapFunc converts the raw bytes of one value of type t, encoded in byte
// order from, into host byte order in place.
//
// Implementations must swap each field according to its own width; a flat
// reversal of the whole buffer is wrong for structures with mixed widths.
type SwapFunc func(t reflect.Type, b []byte, from Endianness) error

// SwapFields is the default SwapFunc. It walks t's fixed-size layout (as
// reported by encoding/binary) and reverses every multi-byte primitive when
// from differs from the host order. Blank padding fields are swapped like any
// other field of their width.
func SwapFields(t reflect.Type, b []byte, from Endianness) error {
	size, err := SizeOf(t)
	if err != nil {
		return err
	}
	if len(b) < size {
		return types.OutOfRange("endian: %s needs %d bytes, have %d", t, size, len(b))
	}
	if from.IsHost() {
		return nil
	}
	swapValue(t, b[:size])
	return nil
}

// SizeOf returns the encoded size of t, or an InvalidArgument error when t
// has no fixed size (slices, strings, maps, int/uint, pointers...).
func SizeOf(t reflect.Type) (int, error) {
	if t == nil {
		return 0, types.InvalidArgument("endian: nil type")
	}
	size := binary.Size(reflect.Zero(t).Interface())
	if size < 0 {
		return 0, types.InvalidArgument("endian: %s has no fixed binary layout", t)
	}
	return size, nil
}

// swapValue reverses every primitive of t inside b and returns the number of
// bytes t occupies.
func swapValue(t reflect.Type, b []byte) int {
	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		buf.Reverse(b[:2])
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		buf.Reverse(b[:4])
		return 4
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		buf.Reverse(b[:8])
		return 8
	case reflect.Complex64:
		buf.ReverseEach(b[:8], 4)
		return 8
	case reflect.Complex128:
		buf.ReverseEach(b[:16], 8)
		return 16
	case reflect.Array:
		elem := t.Elem()
		n := 0
		for range t.Len() {
			n += swapValue(elem, b[n:])
		}
		return n
	case reflect.Struct:
		n := 0
		for i := range t.NumField() {
			n += swapValue(t.Field(i).Type, b[n:])
		}
		return n
	default:
		// SizeOf already rejected every other kind.
		return 0
	}
}
