package overlay

import (
	"reflect"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/pekit/endian"
	"github.com/joshuapare/pekit/internal/buf"
	"github.com/joshuapare/pekit/pkg/types"
)

// Overlay is a read-only typed view over one owned byte buffer.
//
// The buffer is retained, not copied: callers hand over ownership and must
// not modify it while the Overlay is open. Close releases the buffer; it is
// idempotent, and every read after Close fails with a State error.
//
// An Overlay is not safe for concurrent use with Close.
type Overlay struct {
	buf    []byte
	closed bool
}

// New returns an Overlay that owns b.
func New(b []byte) *Overlay {
	return &Overlay{buf: b}
}

// Close releases the buffer. Calling Close more than once is a no-op.
func (o *Overlay) Close() error {
	if o == nil || o.closed {
		return nil
	}
	o.closed = true
	o.buf = nil
	return nil
}

// Len returns the total byte count of the buffer, or 0 once closed.
func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.buf)
}

func (o *Overlay) check() error {
	if o == nil || o.closed {
		return types.Released("overlay")
	}
	return nil
}

// window returns buf[off:off+n] after validating the range.
func (o *Overlay) window(off, n int) ([]byte, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	b, ok := buf.Slice(o.buf, off, n)
	if !ok {
		return nil, types.OutOfRange("overlay: range [%d,+%d) beyond length %d", off, n, len(o.buf))
	}
	return b, nil
}

// ByteAt returns the byte at index.
func (o *Overlay) ByteAt(index int) (byte, error) {
	b, err := o.window(index, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bytes returns a copy of buf[off:off+n].
func (o *Overlay) Bytes(off, n int) ([]byte, error) {
	b, err := o.window(off, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadStruct materializes a T from the Size[T]() bytes starting at off.
func ReadStruct[T any](o *Overlay, off int) (T, error) {
	var v T
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return v, err
	}
	src, err := o.window(off, l.size)
	if err != nil {
		return v, err
	}
	decodeInto(&v, l, src)
	return v, nil
}

// ReadStructAt reads a T at *cursor and advances the cursor past it. The
// cursor is left unchanged on error.
func ReadStructAt[T any](o *Overlay, cursor *int) (T, error) {
	v, err := ReadStruct[T](o, *cursor)
	if err != nil {
		return v, err
	}
	n, _ := Size[T]()
	*cursor += n
	return v, nil
}

// ReadWindowed materializes a T from the window [off, off+window).
//
// When the window is shorter than a T, the bytes of T past the window are
// zero. When it is longer, the trailing window-Size[T]() bytes are returned
// verbatim as extra; otherwise extra is nil.
func ReadWindowed[T any](o *Overlay, off, window int) (T, []byte, error) {
	var v T
	l, err := layoutOf(reflect.TypeFor[T]())
	if err != nil {
		return v, nil, err
	}
	src, err := o.window(off, window)
	if err != nil {
		return v, nil, err
	}

	work := make([]byte, l.size)
	n := copy(work, src)
	clear(work[n:])
	decodeInto(&v, l, work)

	var extra []byte
	if window > l.size {
		extra = make([]byte, window-l.size)
		copy(extra, src[l.size:])
	}
	return v, extra, nil
}

// StringUnicode decodes a NUL-terminated UTF-16 string (host byte order)
// starting at off. It returns the string and the bytes consumed including
// the terminator, (units+1)*2.
func (o *Overlay) StringUnicode(off int) (string, int, error) {
	if err := o.check(); err != nil {
		return "", 0, err
	}
	if off < 0 || off > len(o.buf) {
		return "", 0, types.OutOfRange("overlay: string offset %d beyond length %d", off, len(o.buf))
	}
	end := -1
	for i := off; i+1 < len(o.buf); i += 2 {
		if o.buf[i] == 0 && o.buf[i+1] == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return "", 0, types.OutOfRange("overlay: unterminated UTF-16 string at %d", off)
	}
	s, err := decodeUTF16(o.buf[off:end], endian.Host())
	if err != nil {
		return "", 0, err
	}
	return s, end - off + 2, nil
}

// StringUnicodeAt decodes a UTF-16 string at *cursor and advances the cursor
// past its terminator.
func (o *Overlay) StringUnicodeAt(cursor *int) (string, error) {
	s, n, err := o.StringUnicode(*cursor)
	if err != nil {
		return "", err
	}
	*cursor += n
	return s, nil
}

// StringAnsi decodes a NUL-terminated single-byte (Windows-1252) string
// starting at off. It returns the string and the bytes consumed including
// the terminator.
func (o *Overlay) StringAnsi(off int) (string, int, error) {
	if err := o.check(); err != nil {
		return "", 0, err
	}
	if off < 0 || off > len(o.buf) {
		return "", 0, types.OutOfRange("overlay: string offset %d beyond length %d", off, len(o.buf))
	}
	end := -1
	for i := off; i < len(o.buf); i++ {
		if o.buf[i] == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return "", 0, types.OutOfRange("overlay: unterminated string at %d", off)
	}
	s, err := DecodeAnsi(o.buf[off:end])
	if err != nil {
		return "", 0, err
	}
	return s, end - off + 1, nil
}

// StringAnsiAt decodes a single-byte string at *cursor and advances the
// cursor past its terminator.
func (o *Overlay) StringAnsiAt(cursor *int) (string, error) {
	s, n, err := o.StringAnsi(*cursor)
	if err != nil {
		return "", err
	}
	*cursor += n
	return s, nil
}

// DecodeAnsi converts single-byte Windows-1252 text to UTF-8.
func DecodeAnsi(b []byte) (string, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", types.Wrap(types.ErrKindCorrupt, err, "overlay: decode Windows-1252 string")
	}
	return string(decoded), nil
}

// DecodeUnicode converts UTF-16 text in byte order e to UTF-8.
func DecodeUnicode(b []byte, e endian.Endianness) (string, error) {
	return decodeUTF16(b, e)
}

func decodeUTF16(b []byte, e endian.Endianness) (string, error) {
	order := unicode.LittleEndian
	if e == endian.Big {
		order = unicode.BigEndian
	}
	decoded, err := unicode.UTF16(order, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", types.Wrap(types.ErrKindCorrupt, err, "overlay: decode UTF-16 string")
	}
	return string(decoded), nil
}
