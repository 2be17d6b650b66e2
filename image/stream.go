package image

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"reflect"

	"go.uber.org/zap"

	"github.com/joshuapare/pekit/endian"
	"github.com/joshuapare/pekit/internal/buf"
	"github.com/joshuapare/pekit/overlay"
	"github.com/joshuapare/pekit/pkg/types"
)

// StreamImage is an Accessor over a seekable byte stream. Offsets are raw
// stream positions.
type StreamImage struct {
	rs     io.ReadSeeker
	closer io.Closer
	length int64
	order  endian.Endianness
	swap   endian.SwapFunc
	closed bool
}

var _ Accessor = (*StreamImage)(nil)

// NewStream wraps stream, which must support both reading and seeking. If
// stream is also an io.Closer the image owns it and Close closes it.
func NewStream(stream io.Reader, opts Options) (*StreamImage, error) {
	if stream == nil {
		return nil, types.InvalidArgument("image: nil stream")
	}
	rs, ok := stream.(io.ReadSeeker)
	if !ok {
		return nil, types.InvalidArgument("image: stream %T does not support seeking", stream)
	}
	img := &StreamImage{
		rs:     rs,
		length: streamLength(rs),
		order:  opts.Endianness,
		swap:   opts.swap(),
	}
	if c, ok := stream.(io.Closer); ok {
		img.closer = c
	}
	return img, nil
}

// streamLength reports the size of rs, restoring its position, or -1 when
// the stream cannot report it.
func streamLength(rs io.ReadSeeker) int64 {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	if _, err := rs.Seek(cur, io.SeekStart); err != nil {
		return -1
	}
	return end
}

// Open opens the file at path for shared read access. It fails with a
// NotFound error when the path does not exist.
func Open(path string, opts Options) (*StreamImage, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.Wrap(types.ErrKindNotFound, err, "image: %s", path)
		}
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	img, err := NewStream(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	Logger().Debug("opened file image",
		zap.String("path", path),
		zap.Int64("length", img.length),
		zap.Stringer("endianness", img.order))
	return img, nil
}

// FromBytes returns an image reading directly from data, without copying. It
// fails with an InvalidArgument error when data is nil or empty.
func FromBytes(data []byte, opts Options) (*StreamImage, error) {
	if len(data) == 0 {
		return nil, types.InvalidArgument("image: empty byte image")
	}
	return NewStream(bytes.NewReader(data), opts)
}

// IsMapped is always false for stream images.
func (s *StreamImage) IsMapped() bool { return false }

// BaseAddress is always 0 for stream images.
func (s *StreamImage) BaseAddress() int64 { return 0 }

// Length returns the stream size, or -1 if it could not be determined.
func (s *StreamImage) Length() int64 { return s.length }

func (s *StreamImage) Endianness() endian.Endianness { return s.order }

func (s *StreamImage) SetEndianness(e endian.Endianness) { s.order = e }

func (s *StreamImage) check() error {
	if s.closed {
		return types.Released("image")
	}
	return nil
}

// BytesAt seeks to offset and reads exactly n bytes. The range is validated
// against the stream length before anything is read.
func (s *StreamImage) BytesAt(offset int64, n int) ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if s.length >= 0 {
		if err := buf.CheckRange(s.length, offset, int64(n)); err != nil {
			return nil, types.Wrap(types.ErrKindOutOfRange, err, "image: bytes at %d", offset)
		}
	} else if offset < 0 || n < 0 {
		return nil, types.OutOfRange("image: bytes at %d (+%d)", offset, n)
	}
	if _, err := s.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(s.rs, out); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, types.Wrap(types.ErrKindOutOfRange, err, "image: bytes at %d", offset)
		}
		return nil, err
	}
	return out, nil
}

// HostBytesAt reads one t at offset and swaps it into host byte order.
func (s *StreamImage) HostBytesAt(offset int64, t reflect.Type) ([]byte, error) {
	return hostBytes(s.BytesAt, offset, t, s.order, s.swap)
}

func (s *StreamImage) seekString(offset int64) (*bufio.Reader, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if offset < 0 || (s.length >= 0 && offset > s.length) {
		return nil, types.OutOfRange("image: string offset %d beyond length %d", offset, s.length)
	}
	if _, err := s.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	return bufio.NewReader(s.rs), nil
}

// AnsiStringAt reads bytes from offset up to (not including) the first zero
// byte and decodes them as Windows-1252. Reaching the end of the stream first
// is an OutOfRange error.
func (s *StreamImage) AnsiStringAt(offset int64) (string, error) {
	r, err := s.seekString(offset)
	if err != nil {
		return "", err
	}
	var acc []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", s.unterminated(offset, err)
		}
		if b == 0 {
			break
		}
		acc = append(acc, b)
	}
	return overlay.DecodeAnsi(acc)
}

// UnicodeStringAt reads 16-bit units from offset up to the first zero unit
// and decodes them as UTF-16 in the image byte order.
func (s *StreamImage) UnicodeStringAt(offset int64) (string, error) {
	r, err := s.seekString(offset)
	if err != nil {
		return "", err
	}
	var acc []byte
	var unit [2]byte
	for {
		if _, err := io.ReadFull(r, unit[:]); err != nil {
			return "", s.unterminated(offset, err)
		}
		if unit[0] == 0 && unit[1] == 0 {
			break
		}
		acc = append(acc, unit[:]...)
	}
	return overlay.DecodeUnicode(acc, s.order)
}

func (s *StreamImage) unterminated(offset int64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return types.Wrap(types.ErrKindOutOfRange, err, "image: unterminated string at %d", offset)
	}
	return err
}

// Close closes the owned stream exactly once.
func (s *StreamImage) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
