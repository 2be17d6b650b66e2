// Package image reads typed data from an addressable binary image.
//
// Two backings satisfy the same Accessor contract:
//
//   - StreamImage addresses raw file offsets in any seekable stream (a file
//     on disk or an in-memory byte slice). BaseAddress is always 0.
//   - MappedImage addresses RVAs inside a memory mapping of a loaded module,
//     translating each RVA to a position in the mapping before reading.
//
// Structures are read with StructAt, which fetches the raw bytes, swaps each
// field from the image's byte order into host order, and overlays the result:
//
//	img, err := image.Open("kernel32.dll", image.Options{})
//	if err != nil {
//	    return err
//	}
//	defer img.Close()
//
//	dos, err := image.StructAt[DOSHeader](img, 0)
package image

import (
	"reflect"

	"github.com/joshuapare/pekit/endian"
	"github.com/joshuapare/pekit/overlay"
)

// Accessor is an offset-addressable binary image.
//
// An Accessor is not safe for concurrent use: reads move a shared cursor.
type Accessor interface {
	// IsMapped reports whether offsets are RVAs into a mapped module.
	IsMapped() bool
	// BaseAddress is the notional load address; 0 for file-backed images.
	BaseAddress() int64
	// Length is the addressable size in bytes, or -1 when the backing
	// cannot report it.
	Length() int64
	// Endianness is the byte order multi-byte fields are stored in.
	Endianness() endian.Endianness
	// SetEndianness changes the byte order used by later reads.
	SetEndianness(endian.Endianness)

	// BytesAt returns exactly n bytes starting at offset.
	BytesAt(offset int64, n int) ([]byte, error)
	// HostBytesAt returns the bytes of one t at offset, converted field by
	// field into host byte order.
	HostBytesAt(offset int64, t reflect.Type) ([]byte, error)
	// AnsiStringAt decodes the NUL-terminated single-byte string at offset.
	AnsiStringAt(offset int64) (string, error)
	// UnicodeStringAt decodes the NUL-terminated UTF-16 string at offset,
	// using the image byte order.
	UnicodeStringAt(offset int64) (string, error)

	// Close releases the backing. Reads after Close fail with a State error.
	Close() error
}

// Options configures byte order handling for an image.
type Options struct {
	// Endianness is the byte order of the image. Defaults to Little.
	Endianness endian.Endianness
	// Swap converts raw structure bytes into host order. Defaults to
	// endian.SwapFields.
	Swap endian.SwapFunc
}

func (o Options) swap() endian.SwapFunc {
	if o.Swap != nil {
		return o.Swap
	}
	return endian.SwapFields
}

// StructAt reads a T at offset from a.
func StructAt[T any](a Accessor, offset int64) (T, error) {
	var zero T
	raw, err := a.HostBytesAt(offset, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return overlay.Decode[T](raw)
}

// hostBytes reads the bytes of one t through read and normalizes them.
func hostBytes(read func(int64, int) ([]byte, error), offset int64, t reflect.Type, order endian.Endianness, swap endian.SwapFunc) ([]byte, error) {
	size, err := endian.SizeOf(t)
	if err != nil {
		return nil, err
	}
	raw, err := read(offset, size)
	if err != nil {
		return nil, err
	}
	if err := swap(t, raw, order); err != nil {
		return nil, err
	}
	return raw, nil
}
