package overlay

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pekit/pkg/types"
)

// sectionHeader has no padding, so it takes the direct copy path.
type sectionHeader struct {
	Name            [8]byte
	VirtualSize     uint32
	VirtualAddress  uint32
	SizeOfRawData   uint32
	PointerToRaw    uint32
	Relocations     uint32
	LineNumbers     uint32
	NumRelocations  uint16
	NumLineNumbers  uint16
	Characteristics uint32
}

// flagged carries a bool and a blank byte, so it goes through encoding/binary.
type flagged struct {
	Kind    uint16
	Enabled bool
	_       uint8
	Value   int32
}

// packed is smaller on disk than in memory (Go pads B to 4 bytes).
type packed struct {
	A uint8
	B uint32
}

type pair struct {
	A uint32
	B uint32
}

// tagged has unexported fields and padding, so no path can fill it.
type tagged struct {
	kind  uint8
	value uint32
}

// hidden has unexported fields but no padding, so it is copied directly.
type hidden struct {
	lo uint32
	hi uint32
}

// nestedTagged hides the unexported field one level down.
type nestedTagged struct {
	Flag bool
	Tag  [2]tagged
}

func TestLayoutSelection(t *testing.T) {
	for _, tc := range []struct {
		name   string
		size   int
		direct bool
		got    func() (layout, error)
	}{
		{"section", 40, true, func() (layout, error) { return layoutOf(typeOf[sectionHeader]()) }},
		{"flagged", 8, false, func() (layout, error) { return layoutOf(typeOf[flagged]()) }},
		{"packed", 5, false, func() (layout, error) { return layoutOf(typeOf[packed]()) }},
		{"uint64", 8, true, func() (layout, error) { return layoutOf(typeOf[uint64]()) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, err := tc.got()
			require.NoError(t, err)
			require.Equal(t, tc.size, l.size)
			require.Equal(t, tc.direct, l.direct)
		})
	}

	_, err := Size[[]byte]()
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = Size[int]()
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestStructureRoundTrip(t *testing.T) {
	sh := sectionHeader{
		Name:            [8]byte{'.', 't', 'e', 'x', 't'},
		VirtualSize:     0x1234,
		VirtualAddress:  0x1000,
		SizeOfRawData:   0x1400,
		PointerToRaw:    0x400,
		NumRelocations:  3,
		Characteristics: 0x60000020,
	}
	raw, err := StructureToBytes(sh)
	require.NoError(t, err)
	require.Len(t, raw, 40)
	got, err := ReadStruct[sectionHeader](New(raw), 0)
	require.NoError(t, err)
	require.Equal(t, sh, got)

	fl := flagged{Kind: 7, Enabled: true, Value: -9}
	raw, err = StructureToBytes(fl)
	require.NoError(t, err)
	require.Len(t, raw, 8)
	gotFl, err := ReadStructFrom[flagged](raw, 0)
	require.NoError(t, err)
	require.Equal(t, fl, gotFl)

	pk := packed{A: 0xFE, B: 0xCAFEBABE}
	raw, err = StructureToBytes(pk)
	require.NoError(t, err)
	require.Equal(t, byte(0xFE), raw[0])
	require.Equal(t, uint32(0xCAFEBABE), binary.NativeEndian.Uint32(raw[1:]))
	gotPk, err := ReadStructFrom[packed](raw, 0)
	require.NoError(t, err)
	require.Equal(t, pk, gotPk)
}

func TestUnexportedFields(t *testing.T) {
	_, err := StructureToBytes(tagged{kind: 7, value: 0x01020304})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	raw := []byte{7, 4, 3, 2, 1}
	_, err = ReadStruct[tagged](New(raw), 0)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, _, err = ReadWindowed[tagged](New(raw), 0, 3)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = Decode[tagged](raw)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = Size[nestedTagged]()
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	h := hidden{lo: 1, hi: 2}
	raw, err = StructureToBytes(h)
	require.NoError(t, err)
	got, err := ReadStruct[hidden](New(raw), 0)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestReadStructBounds(t *testing.T) {
	o := New(make([]byte, 10))
	_, err := ReadStruct[pair](o, 3)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	_, err = ReadStruct[pair](o, -1)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	_, err = ReadStruct[pair](o, 2)
	require.NoError(t, err)
}

func TestReadStructAtAdvancesCursor(t *testing.T) {
	raw := make([]byte, 0, 16)
	raw = binary.NativeEndian.AppendUint32(raw, 1)
	raw = binary.NativeEndian.AppendUint32(raw, 2)
	raw = binary.NativeEndian.AppendUint32(raw, 3)
	raw = binary.NativeEndian.AppendUint32(raw, 4)
	o := New(raw)

	cursor := 0
	first, err := ReadStructAt[pair](o, &cursor)
	require.NoError(t, err)
	require.Equal(t, pair{1, 2}, first)
	require.Equal(t, 8, cursor)

	second, err := ReadStructAt[pair](o, &cursor)
	require.NoError(t, err)
	require.Equal(t, pair{3, 4}, second)
	require.Equal(t, 16, cursor)

	_, err = ReadStructAt[pair](o, &cursor)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	require.Equal(t, 16, cursor)
}

func TestReadWindowed(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	t.Run("short window is zero padded", func(t *testing.T) {
		v, extra, err := ReadWindowedFrom[pair](src, 0, 6)
		require.NoError(t, err)
		require.Nil(t, extra)
		require.Equal(t, binary.NativeEndian.Uint32([]byte{1, 2, 3, 4}), v.A)
		require.Equal(t, binary.NativeEndian.Uint32([]byte{5, 6, 0, 0}), v.B)
	})

	t.Run("short window is zero padded through encoding/binary", func(t *testing.T) {
		v, extra, err := ReadWindowedFrom[packed]([]byte{0xFE, 1, 2, 0xAA, 0xBB}, 0, 3)
		require.NoError(t, err)
		require.Nil(t, extra)
		require.Equal(t, uint8(0xFE), v.A)
		require.Equal(t, binary.NativeEndian.Uint32([]byte{1, 2, 0, 0}), v.B)

		f, _, err := ReadWindowedFrom[flagged]([]byte{9, 0, 1, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, 0, 4)
		require.NoError(t, err)
		require.Equal(t, flagged{Kind: binary.NativeEndian.Uint16([]byte{9, 0}), Enabled: true}, f)
	})

	t.Run("exact window", func(t *testing.T) {
		v, extra, err := ReadWindowedFrom[pair](src, 2, 8)
		require.NoError(t, err)
		require.Nil(t, extra)
		require.Equal(t, binary.NativeEndian.Uint32([]byte{7, 8, 9, 10}), v.B)
	})

	t.Run("long window returns extra bytes", func(t *testing.T) {
		v, extra, err := ReadWindowedFrom[pair](src, 0, 10)
		require.NoError(t, err)
		require.Equal(t, []byte{9, 10}, extra)
		require.Equal(t, binary.NativeEndian.Uint32([]byte{5, 6, 7, 8}), v.B)
		extra[0] = 0xFF
		require.Equal(t, byte(9), src[8], "extra must not alias the buffer")
	})

	t.Run("window beyond buffer", func(t *testing.T) {
		_, _, err := ReadWindowedFrom[pair](src, 4, 7)
		require.ErrorIs(t, err, types.ErrOutOfRange)
		_, _, err = ReadWindowedFrom[pair](src, 0, -1)
		require.ErrorIs(t, err, types.ErrOutOfRange)
	})
}

func TestBytes(t *testing.T) {
	src := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	o := New(src)
	for off := 0; off <= len(src); off++ {
		for n := 0; off+n <= len(src); n++ {
			got, err := o.Bytes(off, n)
			require.NoError(t, err)
			require.Equal(t, src[off:off+n], got)
		}
	}
	got, _ := o.Bytes(0, 2)
	got[0] = 0xFF
	require.Equal(t, byte(0), src[0], "Bytes must copy")

	_, err := o.Bytes(7, 2)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	_, err = BytesFrom(src, 9, 0)
	require.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestByteAt(t *testing.T) {
	o := New([]byte{0xAA, 0xBB})
	b, err := o.ByteAt(1)
	require.NoError(t, err)
	require.Equal(t, byte(0xBB), b)
	_, err = o.ByteAt(2)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	require.Equal(t, 2, o.Len())
}

func TestStringAnsi(t *testing.T) {
	s, n, err := StringAnsiFrom([]byte{0x41, 0x42, 0x00}, 0)
	require.NoError(t, err)
	require.Equal(t, "AB", s)
	require.Equal(t, 3, n)

	o := New([]byte{'.', 't', 'e', 'x', 't', 0, 0xE9, 0})
	cursor := 0
	first, err := o.StringAnsiAt(&cursor)
	require.NoError(t, err)
	require.Equal(t, ".text", first)
	second, err := o.StringAnsiAt(&cursor)
	require.NoError(t, err)
	require.Equal(t, "é", second)
	require.Equal(t, 8, cursor)

	_, _, err = o.StringAnsi(9)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	_, _, err = StringAnsiFrom([]byte{'a', 'b'}, 0)
	require.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestStringUnicode(t *testing.T) {
	raw := binary.NativeEndian.AppendUint16(nil, 'A')
	raw = binary.NativeEndian.AppendUint16(raw, 0)
	s, n, err := StringUnicodeFrom(raw, 0)
	require.NoError(t, err)
	require.Equal(t, "A", s)
	require.Equal(t, 4, n)

	var wide []byte
	for _, u := range []uint16{'h', 0x00E9, 0xD83D, 0xDE00, 0, 'x', 0} {
		wide = binary.NativeEndian.AppendUint16(wide, u)
	}
	o := New(wide)
	cursor := 0
	first, err := o.StringUnicodeAt(&cursor)
	require.NoError(t, err)
	require.Equal(t, "hé😀", first)
	require.Equal(t, 10, cursor)
	second, err := o.StringUnicodeAt(&cursor)
	require.NoError(t, err)
	require.Equal(t, "x", second)

	_, _, err = o.StringUnicode(len(wide) + 1)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	_, _, err = StringUnicodeFrom([]byte{'a', 0, 'b'}, 0)
	require.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestCloseIsIdempotent(t *testing.T) {
	o := New([]byte{1, 2, 3, 4})
	require.NoError(t, o.Close())
	require.NoError(t, o.Close())

	_, err := o.ByteAt(0)
	require.ErrorIs(t, err, types.ErrState)
	_, err = ReadStruct[uint16](o, 0)
	require.ErrorIs(t, err, types.ErrState)
	_, _, err = o.StringAnsi(0)
	require.ErrorIs(t, err, types.ErrState)
	require.Equal(t, 0, o.Len())
}

func TestWithReleasesOnError(t *testing.T) {
	var kept *Overlay
	boom := errors.New("boom")
	err := With([]byte{1}, func(o *Overlay) error {
		kept = o
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, err = kept.ByteAt(0)
	require.ErrorIs(t, err, types.ErrState)
}

func TestDecode(t *testing.T) {
	raw := binary.NativeEndian.AppendUint32(nil, 0x11223344)
	v, err := Decode[uint32](raw)
	require.NoError(t, err)
	require.Equal(t, uint32(0x11223344), v)
	_, err = Decode[uint64](raw)
	require.ErrorIs(t, err, types.ErrOutOfRange)
}
