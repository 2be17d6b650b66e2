package image

import (
	"errors"
	"io/fs"
	"reflect"

	"go.uber.org/zap"

	"github.com/joshuapare/pekit/endian"
	"github.com/joshuapare/pekit/internal/buf"
	"github.com/joshuapare/pekit/internal/mmfile"
	"github.com/joshuapare/pekit/overlay"
	"github.com/joshuapare/pekit/pkg/types"
)

// MappedOptions configures a MappedImage.
type MappedOptions struct {
	Options
	// BaseAddress is the load address the module was mapped at.
	BaseAddress int64
	// Translator maps an RVA to a position inside the mapping. Defaults to
	// IdentityTranslator (the mapping is laid out as loaded).
	Translator Translator
}

// MappedImage is an Accessor over a mapped module. Offsets passed to its
// methods are RVAs.
type MappedImage struct {
	data    []byte
	release func() error
	base    int64
	tr      Translator
	order   endian.Endianness
	swap    endian.SwapFunc
	closed  bool
}

var _ Accessor = (*MappedImage)(nil)

// NewMapped wraps a region holding a loaded module. The region is retained,
// not copied, and must stay unchanged while the image is open.
func NewMapped(region []byte, opts MappedOptions) (*MappedImage, error) {
	if len(region) == 0 {
		return nil, types.InvalidArgument("image: empty mapped region")
	}
	return newMapped(region, nil, opts), nil
}

// OpenMapped maps the file at path read-only. Use a SectionTranslator when
// the file holds the on-disk layout rather than a memory dump.
func OpenMapped(path string, opts MappedOptions) (*MappedImage, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		if isNotExist(err) {
			return nil, types.Wrap(types.ErrKindNotFound, err, "image: %s", path)
		}
		return nil, err
	}
	if len(data) == 0 {
		_ = release()
		return nil, types.InvalidArgument("image: %s is empty", path)
	}
	m := newMapped(data, release, opts)
	Logger().Debug("mapped image",
		zap.String("path", path),
		zap.Int("length", len(data)),
		zap.Int64("base", m.base))
	return m, nil
}

func newMapped(data []byte, release func() error, opts MappedOptions) *MappedImage {
	tr := opts.Translator
	if tr == nil {
		tr = IdentityTranslator{}
	}
	return &MappedImage{
		data:    data,
		release: release,
		base:    opts.BaseAddress,
		tr:      tr,
		order:   opts.Endianness,
		swap:    opts.swap(),
	}
}

// IsMapped is always true for mapped images.
func (m *MappedImage) IsMapped() bool { return true }

// BaseAddress returns the load address of the module.
func (m *MappedImage) BaseAddress() int64 { return m.base }

// Length returns the size of the mapping.
func (m *MappedImage) Length() int64 { return int64(len(m.data)) }

func (m *MappedImage) Endianness() endian.Endianness { return m.order }

func (m *MappedImage) SetEndianness(e endian.Endianness) { m.order = e }

// VA returns the virtual address of rva: BaseAddress + rva.
func (m *MappedImage) VA(rva int64) int64 { return m.base + rva }

// resolve translates rva and validates n bytes at the result.
func (m *MappedImage) resolve(rva int64, n int) (int64, error) {
	if m.closed {
		return 0, types.Released("image")
	}
	pos, err := m.tr.Translate(rva)
	if err != nil {
		return 0, err
	}
	if err := buf.CheckRange(int64(len(m.data)), pos, int64(n)); err != nil {
		return 0, types.Wrap(types.ErrKindOutOfRange, err, "image: rva 0x%X (va 0x%X)", rva, m.VA(rva))
	}
	return pos, nil
}

// BytesAt returns a copy of n bytes at rva.
func (m *MappedImage) BytesAt(rva int64, n int) ([]byte, error) {
	pos, err := m.resolve(rva, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[pos:])
	return out, nil
}

// HostBytesAt reads one t at rva and swaps it into host byte order.
func (m *MappedImage) HostBytesAt(rva int64, t reflect.Type) ([]byte, error) {
	return hostBytes(m.BytesAt, rva, t, m.order, m.swap)
}

// AnsiStringAt decodes the single-byte string at rva.
func (m *MappedImage) AnsiStringAt(rva int64) (string, error) {
	pos, err := m.resolve(rva, 0)
	if err != nil {
		return "", err
	}
	s, _, err := overlay.StringAnsiFrom(m.data, int(pos))
	return s, err
}

// UnicodeStringAt decodes the UTF-16 string at rva in the image byte order.
func (m *MappedImage) UnicodeStringAt(rva int64) (string, error) {
	pos, err := m.resolve(rva, 0)
	if err != nil {
		return "", err
	}
	end := -1
	for i := int(pos); i+1 < len(m.data); i += 2 {
		if m.data[i] == 0 && m.data[i+1] == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return "", types.OutOfRange("image: unterminated UTF-16 string at rva 0x%X", rva)
	}
	return overlay.DecodeUnicode(m.data[pos:end], m.order)
}

// Close releases the mapping exactly once.
func (m *MappedImage) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.data = nil
	if m.release != nil {
		return m.release()
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
