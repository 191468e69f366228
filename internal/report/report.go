// Package report formats decoded single precision values for display.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/grafana/regexp"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/avdva/spfloat"
	"github.com/avdva/spfloat/exact"
)

// DefaultFormat is the default printf format of float values.
const DefaultFormat = "%.6e"

// Mode selects what is printed for a value.
type Mode int

const (
	// ModeDetailed prints every field of a value.
	ModeDetailed Mode = iota
	// ModeDecimal prints the exact decimal only.
	ModeDecimal
	// ModeFloat prints the formatted float only.
	ModeFloat
	// ModeHex prints the canonical hex pattern only.
	ModeHex
	// ModeJSON prints a JSON object per value.
	ModeJSON
)

// notRepresentable is printed in ModeDecimal for infinities and NaNs.
const notRepresentable = "---"

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	verbPattern = regexp.MustCompile(`%[-+# 0]*[0-9]*(\.[0-9]*)?[a-zA-Z]`)
	floatVerbs  = "eEfFgGbxXv"
)

// ValidateFormat checks that format is a printf format with a single float verb.
func ValidateFormat(format string) error {
	verbs := verbPattern.FindAllString(strings.ReplaceAll(format, "%%", ""), -1)
	if len(verbs) != 1 {
		return errors.Errorf("format %q must contain exactly one verb, got %d", format, len(verbs))
	}
	verb := verbs[0][len(verbs[0])-1:]
	if !strings.Contains(floatVerbs, verb) {
		return errors.Errorf("format %q: %%%s is not a float verb", format, verb)
	}
	return nil
}

// Options configures a Printer.
type Options struct {
	Mode      Mode
	Format    string
	NoDecimal bool
	NoColor   bool
	// Convert are passed to every exact conversion.
	Convert []exact.Option
}

// Printer writes reports to an io.Writer.
// It is not safe for concurrent use.
type Printer struct {
	w     io.Writer
	opts  Options
	label *color.Color
	// first write error of the current detailed report.
	err error
}

// NewPrinter returns a new printer. An empty format is replaced with DefaultFormat.
func NewPrinter(w io.Writer, opts Options) *Printer {
	if len(opts.Format) == 0 {
		opts.Format = DefaultFormat
	}
	label := color.New(color.Bold)
	if opts.NoColor {
		label.DisableColor()
	}
	return &Printer{w: w, opts: opts, label: label}
}

// Print writes the report for b according to the printer's mode.
func (p *Printer) Print(b spfloat.Bits) error {
	switch p.opts.Mode {
	case ModeFloat:
		_, err := fmt.Fprintln(p.w, p.formatFloat(b))
		return err
	case ModeHex:
		_, err := fmt.Fprintln(p.w, b.String())
		return err
	case ModeDecimal:
		return p.printDecimal(b)
	case ModeJSON:
		return p.printJSON(b)
	default:
		return p.printDetailed(b)
	}
}

func (p *Printer) formatFloat(b spfloat.Bits) string {
	return fmt.Sprintf(p.opts.Format, float64(b.Float32()))
}

func (p *Printer) printDecimal(b spfloat.Bits) error {
	d := b.Decode()
	if !d.IsFinite() {
		_, err := fmt.Fprintln(p.w, notRepresentable)
		return err
	}
	dec, err := exact.Convert(d, p.opts.Convert...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, dec.String())
	return err
}

func signString(d spfloat.Decoded) string {
	if d.Neg {
		return "-1"
	}
	return "+1"
}

func (p *Printer) line(name, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	if _, p.err = p.label.Fprintf(p.w, "%-13s", name); p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, " = "+format+"\n", args...)
}

func (p *Printer) printDetailed(b spfloat.Bits) error {
	p.err = nil
	if err := p.writeDetailed(b); err != nil {
		return err
	}
	return p.err
}

func (p *Printer) writeDetailed(b spfloat.Bits) error {
	d := b.Decode()
	sign := signString(d)

	if _, err := fmt.Fprintln(p.w); err != nil {
		return err
	}
	p.line("Bytes", "0x%s", b)
	p.line("Float", "%s", p.formatFloat(b))
	p.line("Sign", "%s", sign)
	switch d.Category {
	case spfloat.Zero, spfloat.Subnormal:
		p.line("Exponent", "0x%x (Special: Zero/Subnormal)", d.Exponent)
		p.line("Mantissa", "0x%x", d.Mantissa)
		if p.opts.NoDecimal {
			return nil
		}
		if d.Category == spfloat.Zero {
			p.line("Exact Decimal", "%c0", sign[0])
			return nil
		}
		dec, err := exact.Convert(d, p.opts.Convert...)
		if err != nil {
			return err
		}
		p.line("Exact Decimal", "%s (subnormal)", dec)
	case spfloat.Infinity, spfloat.NaN:
		p.line("Exponent", "0x%x (Special: NaN/Infinity)", d.Exponent)
		p.line("Mantissa", "0x%x", d.Mantissa)
		if p.opts.NoDecimal {
			return nil
		}
		if d.Category == spfloat.Infinity {
			p.line("Exact Decimal", "%cInfinity", sign[0])
		} else {
			p.line("Exact Decimal", "NaN")
		}
	default:
		p.line("Exponent", "0x%x = %d (bias %d)", d.Exponent, d.Exponent, spfloat.Bias)
		p.line("Mantissa", "0x%x", d.Mantissa)
		if p.opts.NoDecimal {
			return nil
		}
		dec, err := exact.Convert(d, p.opts.Convert...)
		if err != nil {
			return err
		}
		p.line("Exact Decimal", "%c 2^(%d) * [0x%x * 2^(-%d)]", sign[0], d.TrueExponent(), d.Significand(), spfloat.MantissaBits)
		p.line("", "%s", dec)
	}
	return nil
}

type jsonReport struct {
	Bits         string           `json:"bits"`
	Sign         int              `json:"sign"`
	Exponent     uint8            `json:"exponent"`
	TrueExponent *int             `json:"trueExponent,omitempty"`
	Mantissa     uint32           `json:"mantissa"`
	Category     spfloat.Category `json:"category"`
	Float        string           `json:"float"`
	Decimal      string           `json:"decimal,omitempty"`
}

func (p *Printer) printJSON(b spfloat.Bits) error {
	d := b.Decode()
	r := jsonReport{
		Bits:     b.String(),
		Sign:     d.Sign(),
		Exponent: d.Exponent,
		Mantissa: d.Mantissa,
		Category: d.Category,
		Float:    p.formatFloat(b),
	}
	if d.IsFinite() {
		e := d.TrueExponent()
		r.TrueExponent = &e
		if !p.opts.NoDecimal {
			dec, err := exact.Convert(d, p.opts.Convert...)
			if err != nil {
				return err
			}
			r.Decimal = dec.String()
		}
	}
	return json.NewEncoder(p.w).Encode(r)
}
