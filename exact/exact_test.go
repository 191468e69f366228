// Copyright 2020 Aleksandr Demakin. All rights reserved.

package exact

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	of "github.com/robaho/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdva/spfloat"
)

const (
	minSubnormal = "0.00000000000000000000000000000000000000000000140129846432481707092372958328991613128026194187651577175706828388979108268586060148663818836212158203125"
	maxSubnormal = "0.00000000000000000000000000000000000001175494210692441075487029444849287348827052428745893333857174530571588870475618904265502351336181163787841796875"
	minNormal    = "0.000000000000000000000000000000000000011754943508222875079687365372222456778186655567720875215087517062784172594547271728515625"
)

func TestConvert(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		bits   spfloat.Bits
		s      string
		digits int
	}{
		{0x00000000, "0", 0},
		{0x80000000, "-0", 0},
		{0x3f800000, "1", 0},
		{0xbf800000, "-1", 0},
		{0x41200000, "10", 0},
		{0xc0200000, "-2.5", 1},
		{0x3dcccccd, "0.100000001490116119384765625", 27},
		{0x3eaaaaab, "0.3333333432674407958984375", 25},
		{0x00000001, minSubnormal, 149},
		{0x80000001, "-" + minSubnormal, 149},
		{0x007fffff, maxSubnormal, 149},
		{0x00800000, minNormal, 126},
		{0x7f7fffff, "340282346638528859811704183484516925440", 0},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			d, err := Convert(test.bits.Decode())
			if a.NoError(err) {
				a.Equal(test.s, d.String())
				a.Equal(test.digits, d.Digits())
				a.Equal(test.bits, spfloat.Encode(d.Float32()))
				a.Equal(test.bits.Decode().Neg, d.Neg())
			}
		})
	}
}

func TestConvertNonFinite(t *testing.T) {
	a := assert.New(t)
	for _, b := range []spfloat.Bits{0x7f800000, 0xff800000, 0x7fc00000, 0xffffffff, 0x7f800001} {
		_, err := Convert(b.Decode())
		a.True(errors.Is(err, ErrNonFinite), b.String())
	}
	_, err := FromFloat32(float32(math.Inf(-1)))
	a.True(errors.Is(err, ErrNonFinite))
	_, _, err = decompose(math.NaN())
	a.True(errors.Is(err, ErrNonFinite))
}

func TestRat(t *testing.T) {
	a := assert.New(t)
	d, err := FromFloat32(-2.5)
	require.NoError(t, err)
	a.Equal(0, big.NewRat(-5, 2).Cmp(d.Rat()))

	d, err = Convert(spfloat.Decode(0x00000001))
	require.NoError(t, err)
	a.Equal(0, new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 149)).Cmp(d.Rat()))
}

func TestDecompose(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		bits spfloat.Bits
		m    int64
		e    int
	}{
		{0x3f800000, 1, 0},
		{0xc0200000, -5, -1},
		{0x00000001, 1, -149},
		{0x007fffff, 0x7fffff, -149},
		{0x7f7fffff, 0xffffff, 104},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			m, e, err := decompose(float64(test.bits.Float32()))
			if a.NoError(err) {
				a.Equal(test.m, m)
				a.Equal(test.e, e)
			}
		})
	}
}

// the mantissa returned by decompose is the significand without trailing zero bits.
func TestDecomposeMatchesFields(t *testing.T) {
	a := assert.New(t)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 10000; i++ {
		d := spfloat.Decode(spfloat.Bits(r.Uint32()))
		if !d.IsFinite() || d.Category == spfloat.Zero {
			continue
		}
		m, e := int64(d.Significand()), d.TrueExponent()-spfloat.MantissaBits
		for m%2 == 0 {
			m /= 2
			e++
		}
		if d.Neg {
			m = -m
		}
		gotM, gotE, err := decompose(float64(d.Float32()))
		if !a.NoError(err) {
			break
		}
		if !a.Equal(m, gotM, d.Bits().String()) || !a.Equal(e, gotE, d.Bits().String()) {
			break
		}
	}
}

func TestRoundTrip(t *testing.T) {
	a := assert.New(t)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 5000; i++ {
		b := spfloat.Bits(r.Uint32())
		d, err := Convert(b.Decode())
		if !b.Decode().IsFinite() {
			a.True(errors.Is(err, ErrNonFinite))
			continue
		}
		if !a.NoError(err, b.String()) {
			break
		}
		want := new(big.Rat).SetFloat64(float64(b.Float32()))
		if !a.Equal(0, want.Cmp(d.Rat()), b.String()) {
			break
		}
		if !a.Equal(b, spfloat.Encode(d.Float32()), b.String()) {
			break
		}
	}
}

func TestEveryExponent(t *testing.T) {
	a := assert.New(t)
	for e := uint32(0); e < spfloat.MaxExponent; e++ {
		for _, m := range []uint32{0, 1, 0x400000, 0x7fffff} {
			b := spfloat.Bits(e<<spfloat.MantissaBits | m)
			d, err := Convert(b.Decode())
			if !a.NoError(err, b.String()) {
				return
			}
			a.LessOrEqual(d.Digits(), 149)
			a.Equal(b, spfloat.Encode(d.Float32()))
		}
	}
}

func TestPrecisionOverflow(t *testing.T) {
	a := assert.New(t)
	_, err := Convert(spfloat.Decode(0x00000001), WithPrecision(1, 1, 100))
	a.True(errors.Is(err, ErrPrecisionOverflow))

	d, err := Convert(spfloat.Decode(0x00000001), WithMaxPrecision(149))
	if a.NoError(err) {
		a.Equal(minSubnormal, d.String())
	}
	_, err = Convert(spfloat.Decode(0x00000001), WithMaxPrecision(148))
	a.True(errors.Is(err, ErrPrecisionOverflow))

	d, err = Convert(spfloat.Decode(0x00000001), WithPrecision(10, 50, 0))
	if a.NoError(err) {
		a.Equal(minSubnormal, d.String())
	}
}

func TestLogger(t *testing.T) {
	a := assert.New(t)
	var buf bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowDebug())
	_, err := Convert(spfloat.Decode(0x00000001), WithPrecision(147, 1, 0), WithLogger(logger))
	require.NoError(t, err)
	a.Contains(buf.String(), "inexact quotient")
	a.Contains(buf.String(), "precision=147")
	a.Contains(buf.String(), "precision=148")
	a.NotContains(buf.String(), "precision=149")

	buf.Reset()
	_, err = Convert(spfloat.Decode(0x3f800000), WithLogger(logger))
	require.NoError(t, err)
	a.Empty(buf.String())
}

func TestAgainstFixed(t *testing.T) {
	a := assert.New(t)
	for _, f := range []float32{2.5, -1.75, 0.125, 1024, 0.0078125, -0.5, 3} {
		d, err := FromFloat32(f)
		if a.NoError(err) {
			// fixed.NewS loses the sign of "-0.x", so magnitudes are compared.
			abs := float32(math.Abs(float64(f)))
			a.True(of.NewS(strings.TrimPrefix(d.String(), "-")).Equal(of.NewF(float64(abs))), d.String())
			a.Equal(f < 0, d.Neg(), d.String())
		}
	}
}

func TestZeroValueFloat32(t *testing.T) {
	a := assert.New(t)
	var d Decimal
	a.Equal("0", d.String())
	a.Equal(float32(0), d.Float32())
	a.Equal(spfloat.Bits(0x80000000), spfloat.Encode(Decimal{neg: true}.Float32()))
}

func TestConcurrent(t *testing.T) {
	a := assert.New(t)
	done := make(chan string)
	for i := 0; i < 8; i++ {
		go func(i int) {
			opts := []Option{WithPrecision(int32(1+i), int32(1+i), 0)}
			d, err := Convert(spfloat.Decode(0x00000001), opts...)
			if err != nil {
				done <- err.Error()
				return
			}
			done <- d.String()
		}(i)
	}
	for i := 0; i < 8; i++ {
		a.Equal(minSubnormal, <-done)
	}
}
