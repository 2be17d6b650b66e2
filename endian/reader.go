package endian

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/joshuapare/pekit/internal/buf"
	"github.com/joshuapare/pekit/pkg/types"
)

// Reader reads primitives sequentially from a stream, normalizing each
// multi-byte value from the stream's byte order to host order.
type Reader interface {
	// Endianness returns the byte order the stream is encoded in.
	Endianness() Endianness
	// Position returns the number of bytes consumed from the start of the
	// stream (or the last Seek).
	Position() int64
	// Seek repositions the underlying stream. It fails with an
	// InvalidArgument error when the stream cannot seek.
	Seek(offset int64, whence int) (int64, error)

	ReadByte() (byte, error)
	ReadBytes(n int) ([]byte, error)
	ReadInt16() (int16, error)
	ReadUint16() (uint16, error)
	ReadInt32() (int32, error)
	ReadUint32() (uint32, error)
	ReadInt64() (int64, error)
	ReadUint64() (uint64, error)
	ReadFloat32() (float32, error)
	ReadFloat64() (float64, error)
	ReadDecimal() (Decimal, error)
}

// NewReader returns a Reader over r for data encoded in order. When order is
// the host order the returned reader never swaps; otherwise every value is
// byte-reversed before it is interpreted. Both produce identical values for
// the same input.
func NewReader(r io.Reader, order Endianness) (Reader, error) {
	if r == nil {
		return nil, types.InvalidArgument("endian: nil stream")
	}
	s := &stream{r: r, order: order}
	if order.IsHost() {
		return newPassThrough(s), nil
	}
	return newSwapping(s), nil
}

// stream tracks the position over the underlying reader and owns the scratch
// space for one primitive.
type stream struct {
	r       io.Reader
	order   Endianness
	pos     int64
	scratch [DecimalSize]byte
}

func (s *stream) Endianness() Endianness { return s.order }

func (s *stream) Position() int64 { return s.pos }

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := s.r.(io.Seeker)
	if !ok {
		return 0, types.InvalidArgument("endian: stream does not support seeking")
	}
	pos, err := seeker.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	s.pos = pos
	return pos, nil
}

// take reads exactly n bytes into the scratch buffer. The slice is only
// valid until the next read.
func (s *stream) take(n int) ([]byte, error) {
	b := s.scratch[:n]
	if _, err := io.ReadFull(s.r, b); err != nil {
		return nil, s.short(n, err)
	}
	s.pos += int64(n)
	return b, nil
}

func (s *stream) short(n int, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return types.Wrap(types.ErrKindOutOfRange, err, "endian: read %d bytes at %d", n, s.pos)
	}
	return err
}

func (s *stream) ReadByte() (byte, error) {
	b, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *stream) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, types.OutOfRange("endian: negative length %d", n)
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(s.r, out); err != nil {
		return nil, s.short(n, err)
	}
	s.pos += int64(n)
	return out, nil
}

// wordSource yields the bytes of one n-byte primitive in host order.
type wordSource interface {
	word(n int) ([]byte, error)
}

// primitives interprets host-order words from src.
type primitives struct {
	src wordSource
}

func (p primitives) ReadUint16() (uint16, error) {
	b, err := p.src.word(2)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint16(b), nil
}

func (p primitives) ReadInt16() (int16, error) {
	v, err := p.ReadUint16()
	return int16(v), err
}

func (p primitives) ReadUint32() (uint32, error) {
	b, err := p.src.word(4)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(b), nil
}

func (p primitives) ReadInt32() (int32, error) {
	v, err := p.ReadUint32()
	return int32(v), err
}

func (p primitives) ReadUint64() (uint64, error) {
	b, err := p.src.word(8)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(b), nil
}

func (p primitives) ReadInt64() (int64, error) {
	v, err := p.ReadUint64()
	return int64(v), err
}

func (p primitives) ReadFloat32() (float32, error) {
	v, err := p.ReadUint32()
	return math.Float32frombits(v), err
}

func (p primitives) ReadFloat64() (float64, error) {
	v, err := p.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadDecimal reads 16 bytes, swaps them as one value, then splits the
// lanes. Sign and scale in the flags lane survive the swap unchanged.
func (p primitives) ReadDecimal() (Decimal, error) {
	b, err := p.src.word(DecimalSize)
	if err != nil {
		return Decimal{}, err
	}
	return decimalFromHost(b), nil
}

// passThroughReader serves streams already in host order.
type passThroughReader struct {
	*stream
	primitives
}

func newPassThrough(s *stream) *passThroughReader {
	r := &passThroughReader{stream: s}
	r.primitives = primitives{src: r}
	return r
}

func (r *passThroughReader) word(n int) ([]byte, error) { return r.take(n) }

// swappingReader serves streams in the opposite byte order.
type swappingReader struct {
	*stream
	primitives
}

func newSwapping(s *stream) *swappingReader {
	r := &swappingReader{stream: s}
	r.primitives = primitives{src: r}
	return r
}

func (r *swappingReader) word(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	buf.Reverse(b)
	return b, nil
}
