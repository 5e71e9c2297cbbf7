package stream

import (
	"fmt"
	"math"
)

// GDSII encodes reals in eight bytes: a sign bit, a 7-bit excess-64
// exponent of base 16, and a 56-bit mantissa with no implicit leading
// bit. value = sign * mantissa/2^56 * 16^(exponent-64). A normalized
// nonzero value keeps the top four mantissa bits nonzero; zero is eight
// zero bytes.

// DecodeReal8 converts an 8-byte GDSII real field to a float64.
func DecodeReal8(b []byte) float64 {
	_ = b[7]
	neg := b[0]&0x80 != 0
	exp := int(b[0]&0x7F) - 64
	var mant uint64
	for _, c := range b[1:8] {
		mant = mant<<8 | uint64(c)
	}
	if mant == 0 {
		return 0
	}
	// mantissa/2^56 * 16^exp == mantissa * 2^(4*exp-56)
	v := math.Ldexp(float64(mant), 4*exp-56)
	if neg {
		return -v
	}
	return v
}

// DecodeReal4 converts the legacy 4-byte real field to a float64. Same
// layout as the 8-byte form with a 24-bit mantissa. Decoded for
// compatibility only; this codec never writes 4-byte reals.
func DecodeReal4(b []byte) float64 {
	_ = b[3]
	neg := b[0]&0x80 != 0
	exp := int(b[0]&0x7F) - 64
	mant := uint64(b[1])<<16 | uint64(b[2])<<8 | uint64(b[3])
	if mant == 0 {
		return 0
	}
	v := math.Ldexp(float64(mant), 4*exp-24)
	if neg {
		return -v
	}
	return v
}

// EncodeReal8 converts a float64 to the 8-byte GDSII real field. Values
// too large or too small for the 7-bit base-16 exponent fail with
// ErrRealOverflow. Conversion may round to base-16 mantissa granularity;
// values previously produced by DecodeReal8 round-trip exactly.
func EncodeReal8(f float64) ([8]byte, error) {
	var out [8]byte
	if f == 0 {
		return out, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return out, fmt.Errorf("%w: cannot encode %v", ErrRealOverflow, f)
	}
	neg := math.Signbit(f)
	frac, e2 := math.Frexp(math.Abs(f))
	// Pick the base-16 exponent so the mantissa lands in [2^52, 2^56),
	// keeping its top nibble nonzero.
	e16 := e2 / 4
	if e2 > 0 && e2%4 != 0 {
		e16++
	}
	mant := uint64(math.Round(math.Ldexp(frac, 56+e2-4*e16)))
	if mant >= 1<<56 {
		// Rounding carried past the mantissa width.
		mant >>= 4
		e16++
	}
	exp := e16 + 64
	if exp < 0 || exp > 127 {
		return out, fmt.Errorf("%w: exponent %d out of range for %v", ErrRealOverflow, e16, f)
	}
	out[0] = byte(exp)
	if neg {
		out[0] |= 0x80
	}
	for i := 7; i >= 1; i-- {
		out[i] = byte(mant)
		mant >>= 8
	}
	return out, nil
}
