// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package spfloat decodes IEEE-754 single-precision bit patterns into their
// sign, exponent and mantissa fields.
// Decoding is a total function over 32-bit patterns and never fails.
package spfloat

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/avdva/spfloat/internal/mathutil"
)

// Bits is a raw single precision bit pattern.
type Bits uint32

// Encode returns the bit pattern of f.
func Encode(f float32) Bits {
	return Bits(math.Float32bits(f))
}

// Float32 returns the float the pattern represents.
func (b Bits) Float32() float32 {
	return math.Float32frombits(uint32(b))
}

// Decode splits the pattern into fields and classifies it.
func (b Bits) Decode() Decoded {
	return Decode(b)
}

// String returns the canonical form of the pattern: 8 lowercase hex digits.
func (b Bits) String() string {
	return fmt.Sprintf("%08x", uint32(b))
}

// Category is a class of single precision values.
type Category uint8

const (
	// Normal values have an implicit leading bit.
	Normal Category = iota
	// Zero is a positive or a negative zero.
	Zero
	// Subnormal values have a zero exponent, a non-zero mantissa and no implicit bit.
	Subnormal
	// Infinity is a positive or a negative infinity.
	Infinity
	// NaN is not-a-number.
	NaN
)

var categoryNames = [...]string{
	Normal:    "normal",
	Zero:      "zero",
	Subnormal: "subnormal",
	Infinity:  "infinity",
	NaN:       "nan",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if int(c) >= len(categoryNames) {
		return nil, errors.Errorf("unknown category %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(data []byte) error {
	for i, name := range categoryNames {
		if name == string(data) {
			*c = Category(i)
			return nil
		}
	}
	return errors.Errorf("unknown category %q", data)
}

// Decoded holds the fields of a single precision value.
//
// Neg is the sign bit, Exponent is the stored (biased) exponent,
// Mantissa is the stored 23-bit fraction without the implicit bit.
type Decoded struct {
	Neg      bool
	Exponent uint8
	Mantissa uint32
	Category Category
}

// Decode splits b into fields and classifies it.
// Classification only looks at the fields, never at the float value.
func Decode(b Bits) Decoded {
	neg, e, m := split(b)
	return Decoded{
		Neg:      neg,
		Exponent: e,
		Mantissa: m,
		Category: classify(e, m),
	}
}

// FromFloat32 decodes the bit pattern of f.
func FromFloat32(f float32) Decoded {
	return Decode(Encode(f))
}

func classify(e uint8, m uint32) Category {
	switch e {
	case 0:
		if m == 0 {
			return Zero
		}
		return Subnormal
	case MaxExponent:
		if m == 0 {
			return Infinity
		}
		return NaN
	default:
		return Normal
	}
}

// Bits encodes the fields back into a bit pattern.
func (d Decoded) Bits() Bits {
	return combine(d.Neg, d.Exponent, d.Mantissa)
}

// Float32 returns the represented value.
func (d Decoded) Float32() float32 {
	return d.Bits().Float32()
}

// Sign returns -1 for negative values, including -0 and -Inf, and +1 otherwise.
func (d Decoded) Sign() int {
	if d.Neg {
		return -1
	}
	return 1
}

// IsFinite returns true for zeros, subnormal and normal values.
func (d Decoded) IsFinite() bool {
	return d.Category != Infinity && d.Category != NaN
}

// TrueExponent returns the unbiased exponent.
// For zeros and subnormals it is the exponent of the smallest normal value, -126.
// For infinities and NaNs the result has no meaning.
func (d Decoded) TrueExponent() int {
	if d.Exponent == 0 {
		return minExponent
	}
	return int(d.Exponent) - Bias
}

// Significand returns the mantissa with the implicit bit set for normal values.
// The value of a finite d is Sign() * Significand() * 2^(TrueExponent()-23).
func (d Decoded) Significand() uint32 {
	if d.Category == Normal {
		return mathutil.SetBit(d.Mantissa, mantBits)
	}
	return d.Mantissa
}
