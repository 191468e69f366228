package spfloat

import "github.com/avdva/spfloat/internal/mathutil"

// Single precision layout:
//   31 30     23 22                    0
//   s  eeeeeeee  mmmmmmmmmmmmmmmmmmmmmmm
const (
	signBit  = 31
	expBits  = 8
	mantBits = 23

	// Bias is subtracted from the stored exponent of a normal number.
	Bias = 1<<(expBits-1) - 1
	// MaxExponent is the stored exponent of infinities and NaNs.
	MaxExponent = 1<<expBits - 1

	// MantissaBits is the number of stored mantissa bits.
	MantissaBits = mantBits

	// minExponent is the true exponent of subnormal numbers.
	minExponent = 1 - Bias

	mantMask = 1<<mantBits - 1
)

func sign(b Bits) bool {
	return mathutil.TestBit(uint32(b), signBit)
}

func exp(b Bits) uint8 {
	return uint8(mathutil.Field(uint32(b), mantBits, expBits))
}

func mant(b Bits) uint32 {
	return uint32(b) & mantMask
}

func split(b Bits) (neg bool, exponent uint8, mantissa uint32) {
	return sign(b), exp(b), mant(b)
}

func combine(neg bool, exponent uint8, mantissa uint32) Bits {
	v := uint32(exponent)<<mantBits | mantissa&mantMask
	if neg {
		v = mathutil.SetBit(v, signBit)
	}
	return Bits(v)
}
