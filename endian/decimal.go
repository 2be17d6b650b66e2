package endian

import (
	"encoding/binary"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/joshuapare/pekit/internal/buf"
	"github.com/joshuapare/pekit/pkg/types"
)

// DecimalSize is the encoded size of a Decimal.
const DecimalSize = 16

const (
	decimalSignMask  = 0x80000000
	decimalScaleMask = 0x00FF0000
	decimalScaleBits = 16
	decimalMaxScale  = 28
)

// Decimal is a 128-bit scaled decimal: a 96-bit unsigned magnitude split
// across Lo, Mid and Hi, with the sign bit and the power-of-ten scale kept in
// Flags. It is read and written as four 32-bit lanes in the order
// Lo, Mid, Hi, Flags.
type Decimal struct {
	Lo    uint32
	Mid   uint32
	Hi    uint32
	Flags uint32
}

// Negative reports whether the sign bit is set.
func (d Decimal) Negative() bool { return d.Flags&decimalSignMask != 0 }

// Scale returns the power-of-ten divisor exponent (0..28).
func (d Decimal) Scale() int { return int(d.Flags&decimalScaleMask) >> decimalScaleBits }

// Decimal converts d into an arbitrary-precision decimal.
func (d Decimal) Decimal() decimal.Decimal {
	mag := new(big.Int).SetUint64(uint64(d.Hi))
	mag.Lsh(mag, 64)
	mag.Or(mag, new(big.Int).SetUint64(uint64(d.Mid)<<32|uint64(d.Lo)))
	if d.Negative() {
		mag.Neg(mag)
	}
	return decimal.NewFromBigInt(mag, -int32(d.Scale()))
}

// String formats d without loss of precision.
func (d Decimal) String() string { return d.Decimal().String() }

// NewDecimal converts v into its 128-bit representation. It fails with an
// OutOfRange error when v needs more than 96 bits of magnitude or more than
// 28 fractional digits.
func NewDecimal(v decimal.Decimal) (Decimal, error) {
	exp := v.Exponent()
	coef := v.Coefficient()
	if exp > 0 {
		coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		exp = 0
	}
	scale := -exp
	if scale > decimalMaxScale {
		return Decimal{}, types.OutOfRange("endian: decimal scale %d exceeds %d", scale, decimalMaxScale)
	}
	neg := coef.Sign() < 0
	mag := new(big.Int).Abs(coef)
	if mag.BitLen() > 96 {
		return Decimal{}, types.OutOfRange("endian: decimal magnitude needs %d bits", mag.BitLen())
	}
	var raw [12]byte
	mag.FillBytes(raw[:])
	d := Decimal{
		Hi:    binary.BigEndian.Uint32(raw[0:4]),
		Mid:   binary.BigEndian.Uint32(raw[4:8]),
		Lo:    binary.BigEndian.Uint32(raw[8:12]),
		Flags: uint32(scale) << decimalScaleBits,
	}
	if neg {
		d.Flags |= decimalSignMask
	}
	return d, nil
}

// AppendDecimal appends the 16-byte encoding of d in byte order e: the four
// lanes in host order, reversed as a whole when e is not the host order.
// On little-endian hosts the big-endian form is therefore the byte-for-byte
// reversal of the little-endian one.
func AppendDecimal(dst []byte, d Decimal, e Endianness) []byte {
	var raw [DecimalSize]byte
	binary.NativeEndian.PutUint32(raw[0:], d.Lo)
	binary.NativeEndian.PutUint32(raw[4:], d.Mid)
	binary.NativeEndian.PutUint32(raw[8:], d.Hi)
	binary.NativeEndian.PutUint32(raw[12:], d.Flags)
	if !e.IsHost() {
		buf.Reverse(raw[:])
	}
	return append(dst, raw[:]...)
}

// decimalFromHost rebuilds a Decimal from 16 bytes already in host order.
func decimalFromHost(b []byte) Decimal {
	return Decimal{
		Lo:    binary.NativeEndian.Uint32(b[0:]),
		Mid:   binary.NativeEndian.Uint32(b[4:]),
		Hi:    binary.NativeEndian.Uint32(b[8:]),
		Flags: binary.NativeEndian.Uint32(b[12:]),
	}
}
