package overlay

import (
	"encoding/binary"
	"reflect"
	"unsafe"

	"github.com/joshuapare/pekit/endian"
	"github.com/joshuapare/pekit/pkg/types"
)

// layout describes how a fixed-size type maps onto bytes.
type layout struct {
	size int
	// direct is set when the Go memory layout equals the encoded layout, so
	// the value can be copied byte-for-byte.
	direct bool
}

func layoutOf(t reflect.Type) (layout, error) {
	size, err := endian.SizeOf(t)
	if err != nil {
		return layout{}, err
	}
	l := layout{size: size, direct: int(t.Size()) == size && plain(t)}
	if !l.direct {
		// encoding/binary cannot set unexported fields.
		if f, ok := unexported(t); ok {
			return layout{}, types.InvalidArgument("overlay: %s has unexported field %s and no direct layout", t, f)
		}
	}
	return l, nil
}

// unexported returns the first non-blank unexported field reachable from t.
func unexported(t reflect.Type) (string, bool) {
	switch t.Kind() {
	case reflect.Array:
		return unexported(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Name == "_" {
				continue
			}
			if !f.IsExported() {
				return f.Name, true
			}
			if name, ok := unexported(f.Type); ok {
				return f.Name + "." + name, true
			}
		}
	}
	return "", false
}

// plain reports whether every byte pattern is a valid value of t and t has
// no blank fields.
func plain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return plain(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Name == "_" || !plain(f.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Size returns the number of bytes a T occupies in an image.
func Size[T any]() (int, error) {
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return 0, err
	}
	return l.size, nil
}

// Decode materializes a T from the first Size[T]() bytes of src, which must
// already be in host byte order.
func Decode[T any](src []byte) (T, error) {
	var v T
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return v, err
	}
	if len(src) < l.size {
		return v, types.OutOfRange("overlay: %T needs %d bytes, have %d", v, l.size, len(src))
	}
	decodeInto(&v, l, src)
	return v, nil
}

func decodeInto[T any](v *T, l layout, src []byte) {
	if l.direct {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(v)), l.size), src[:l.size])
		return
	}
	// Size was validated above, so Decode cannot fail.
	_, _ = binary.Decode(src[:l.size], binary.NativeEndian, v)
}

// StructureToBytes encodes v with the layout ReadStruct reads, so that
// ReadStruct(New(StructureToBytes(v)), 0) == v.
func StructureToBytes[T any](v T) ([]byte, error) {
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	out := make([]byte, l.size)
	if l.direct {
		copy(out, unsafe.Slice((*byte)(unsafe.Pointer(&v)), l.size))
		return out, nil
	}
	if _, err := binary.Encode(out, binary.NativeEndian, v); err != nil {
		return nil, types.Wrap(types.ErrKindInvalidArgument, err, "overlay: encode %T", v)
	}
	return out, nil
}
