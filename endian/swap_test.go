package endian

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pekit/pkg/types"
)

type mixedHeader struct {
	Magic    uint16
	Count    uint32
	Pair     [2]uint16
	Flag     uint8
	_        uint8
	Stamp    int64
	Inner    innerRecord
	Fraction float32
}

type innerRecord struct {
	A uint16
	B int32
}

func TestSwapFieldsPerField(t *testing.T) {
	want := mixedHeader{
		Magic:    0x5A4D,
		Count:    0x01020304,
		Pair:     [2]uint16{0x1122, 0x3344},
		Flag:     0x7F,
		Stamp:    -5,
		Inner:    innerRecord{A: 0xAABB, B: -1234567},
		Fraction: 1.5,
	}
	other := Little
	if Host() == Little {
		other = Big
	}

	var w bytes.Buffer
	require.NoError(t, binary.Write(&w, other.ByteOrder(), want))
	raw := w.Bytes()

	typ := reflect.TypeOf(want)
	require.NoError(t, SwapFields(typ, raw, other))

	var got mixedHeader
	_, err := binary.Decode(raw, binary.NativeEndian, &got)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSwapFieldsHostIsNoop(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}
	require.NoError(t, SwapFields(reflect.TypeOf(uint32(0)), raw, Host()))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, raw)
}

func TestSwapFieldsErrors(t *testing.T) {
	err := SwapFields(reflect.TypeOf(""), []byte{0}, Big)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	err = SwapFields(reflect.TypeOf(uint64(0)), []byte{1, 2, 3}, Big)
	require.ErrorIs(t, err, types.ErrOutOfRange)

	_, err = SizeOf(nil)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	n, err := SizeOf(reflect.TypeOf(mixedHeader{}))
	require.NoError(t, err)
	require.Equal(t, 2+4+4+1+1+8+6+4, n)
}

func TestParseEndianness(t *testing.T) {
	e, err := Parse("be")
	require.NoError(t, err)
	require.Equal(t, Big, e)
	e, err = Parse("little")
	require.NoError(t, err)
	require.Equal(t, Little, e)
	_, err = Parse("middle")
	require.Error(t, err)
	require.Equal(t, "endianness(7)", Endianness(7).String())
}
