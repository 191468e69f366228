// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package exact converts finite single precision values into decimals
// without any rounding.
//
// A finite binary float is m * 2^e for integers m and e, so its decimal
// expansion always terminates. For negative e the division by 2^-e is
// repeated with more fractional digits until it leaves no remainder.
// The precision is passed with every call, nothing is shared between calls.
package exact

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/avdva/spfloat"
	"github.com/avdva/spfloat/internal/mathutil"
)

const (
	// DefaultInitialPrecision is the number of fractional digits of the first division attempt.
	DefaultInitialPrecision = 28
	// DefaultPrecisionStep is added to the precision after each inexact attempt.
	DefaultPrecisionStep = 1
	// DefaultMaxPrecision bounds the precision. 149 digits are enough for any single precision value.
	DefaultMaxPrecision = 200

	// a float64 fraction becomes an integer after at most 53 doublings.
	maxDecomposeSteps = 64
)

var (
	// ErrNonFinite is returned for infinities and NaNs.
	ErrNonFinite = errors.New("value is not finite")
	// ErrPrecisionOverflow is returned when the exact result needs more digits than allowed.
	ErrPrecisionOverflow = errors.New("precision limit exceeded")
)

type options struct {
	initial, step, max int32
	logger             log.Logger
}

func defaultOptions() options {
	return options{
		initial: DefaultInitialPrecision,
		step:    DefaultPrecisionStep,
		max:     DefaultMaxPrecision,
		logger:  log.NewNopLogger(),
	}
}

// Option changes conversion parameters for a single call.
type Option func(*options)

// WithPrecision sets the initial precision, its increment, and the upper bound,
// all in fractional decimal digits. Non-positive values keep the defaults.
func WithPrecision(initial, step, max int32) Option {
	return func(o *options) {
		if initial > 0 {
			o.initial = initial
		}
		if step > 0 {
			o.step = step
		}
		if max > 0 {
			o.max = max
		}
	}
}

// WithMaxPrecision only changes the upper bound of the precision.
func WithMaxPrecision(max int32) Option {
	return WithPrecision(0, 0, max)
}

// WithLogger sets a logger for precision retries.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Decimal is an exact decimal value of a finite single precision float.
// Unlike decimal.Decimal, it keeps the sign of zero.
type Decimal struct {
	neg bool
	d   decimal.Decimal
}

// Convert returns the exact decimal value of d.
// Returns ErrNonFinite for infinities and NaNs.
func Convert(d spfloat.Decoded, opts ...Option) (Decimal, error) {
	if !d.IsFinite() {
		return Decimal{}, errors.Wrapf(ErrNonFinite, "cannot convert %s", d.Category)
	}
	if d.Category == spfloat.Zero {
		return Decimal{neg: d.Neg}, nil
	}
	return fromFloat(float64(d.Float32()), d.Neg, opts)
}

// FromFloat32 returns the exact decimal value of f.
func FromFloat32(f float32, opts ...Option) (Decimal, error) {
	return Convert(spfloat.FromFloat32(f), opts...)
}

func fromFloat(f float64, neg bool, opts []Option) (Decimal, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m, e, err := decompose(f)
	if err != nil {
		return Decimal{}, err
	}
	d, err := expand(m, e, o)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{neg: neg, d: d}, nil
}

// decompose returns such integers m and e, that f == m * 2^e.
func decompose(f float64) (m int64, e int, err error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, 0, ErrNonFinite
	}
	frac, e := math.Frexp(f)
	for i := 0; frac != math.Trunc(frac); i++ {
		if i == maxDecomposeSteps {
			return 0, 0, errors.Errorf("%v: mantissa is not integral after %d steps", f, i)
		}
		frac *= 2
		e--
	}
	return int64(frac), e, nil
}

// expand calculates m * 2^e.
func expand(m int64, e int, o options) (decimal.Decimal, error) {
	if e >= 0 {
		return decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(m), uint(e)), 0), nil
	}
	num := decimal.NewFromInt(m)
	div := decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), uint(mathutil.AbsInt(e))), 0)
	for prec := o.initial; prec <= o.max; prec += o.step {
		q, r := num.QuoRem(div, prec)
		if r.IsZero() {
			return q, nil
		}
		level.Debug(o.logger).Log("msg", "inexact quotient, increasing precision", "mantissa", m, "exponent", e, "precision", prec)
	}
	return decimal.Decimal{}, errors.Wrapf(ErrPrecisionOverflow, "%d * 2^%d needs more than %d digits", m, e, o.max)
}

// Decimal returns the underlying decimal. A negative zero becomes zero.
func (d Decimal) Decimal() decimal.Decimal {
	return d.d
}

// Neg returns true for negative values, including -0.
func (d Decimal) Neg() bool {
	return d.neg
}

// IsZero returns true for both zeros.
func (d Decimal) IsZero() bool {
	return d.d.IsZero()
}

// Rat returns the value as a rational number.
func (d Decimal) Rat() *big.Rat {
	return d.d.Rat()
}

// String returns the value in positional notation without trailing zeros.
func (d Decimal) String() string {
	if d.d.IsZero() {
		if d.neg {
			return "-0"
		}
		return "0"
	}
	return d.d.String()
}

// Digits returns the number of digits after the decimal point.
func (d Decimal) Digits() int {
	s := d.String()
	if pos := strings.IndexByte(s, '.'); pos >= 0 {
		return len(s) - pos - 1
	}
	return 0
}

// Float32 rounds the value to the nearest single precision float.
// For a value returned by Convert it is the original float.
func (d Decimal) Float32() float32 {
	// String only yields "0", "-0" or a plain decimal, and any magnitude of a
	// Decimal fits single precision, so ParseFloat cannot fail.
	f, _ := strconv.ParseFloat(d.String(), 32)
	return float32(f)
}
