package spfloat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grafana/regexp"
	"github.com/pkg/errors"
)

const hexDigits = 8

var (
	// ErrInvalidInput is returned for values that are neither a hex pattern nor a decimal literal.
	ErrInvalidInput = errors.New("invalid input format")

	hexPattern = regexp.MustCompile(`^[ 0-9a-fA-F]{8,}$`)
)

type posError struct {
	pos int
	err string
}

func newPosError(err string, pos int) *posError {
	return &posError{err: err, pos: pos}
}

func (pe posError) Error() string {
	return pe.err + fmt.Sprintf(" at pos %d: %v", pe.pos, ErrInvalidInput)
}

// Unwrap makes every positioned error an ErrInvalidInput.
func (pe *posError) Unwrap() error {
	return ErrInvalidInput
}

// Parse returns the pattern for a hex string or a decimal literal.
// A string of hex digits and spaces with exactly 8 digits is a hex pattern,
// everything else is parsed as a decimal and rounded to single precision.
func Parse(s string) (Bits, error) {
	if hexPattern.MatchString(s) {
		if b, err := ParseHex(s); err == nil {
			return b, nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errors.Wrapf(ErrInvalidInput, "value %q is out of single precision range", s)
		}
		return 0, errors.Wrapf(ErrInvalidInput, "value %q is neither a valid hex string nor a valid float", s)
	}
	return Encode(float32(f)), nil
}

// ParseHex parses 8 hex digits, case-insensitive, spaces are ignored.
func ParseHex(s string) (Bits, error) {
	var (
		v     uint32
		count int
	)
	for i, r := range s {
		var digit uint32
		switch {
		case r == ' ':
			continue
		case '0' <= r && r <= '9':
			digit = uint32(r - '0')
		case 'a' <= r && r <= 'f':
			digit = uint32(r-'a') + 10
		case 'A' <= r && r <= 'F':
			digit = uint32(r-'A') + 10
		default:
			return 0, errors.WithStack(newPosError(fmt.Sprintf("unexpected symbol %q", r), i+1))
		}
		if count == hexDigits {
			return 0, errors.WithStack(newPosError("too many hex digits", i+1))
		}
		v = v<<4 | digit
		count++
	}
	if count != hexDigits {
		return 0, errors.Wrapf(ErrInvalidInput, "expected %d hex digits, got %d", hexDigits, count)
	}
	return Bits(v), nil
}
