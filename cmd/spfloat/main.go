// Command spfloat takes 8-digit hex strings or float values and prints
// detailed information about the single precision float they represent.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/avdva/spfloat"
	"github.com/avdva/spfloat/exact"
	"github.com/avdva/spfloat/internal/report"
)

const (
	exitOK = iota
	exitUsage
	exitInternal
)

type config struct {
	values       []string
	noDecimal    bool
	decimal      bool
	float        bool
	hex          bool
	json         bool
	format       string
	maxPrecision int32
	logLevel     string
	noColor      bool
}

func (c *config) register(app *kingpin.Application) {
	app.Flag("no-decimal", "Skip printing the exact represented decimal.").BoolVar(&c.noDecimal)
	app.Flag("decimal", "Only print the exact represented decimal.").BoolVar(&c.decimal)
	app.Flag("float", "Only print the represented float.").BoolVar(&c.float)
	app.Flag("hex", "Only print the 8-digit hex representation.").BoolVar(&c.hex)
	app.Flag("json", "Print a JSON object for every value.").BoolVar(&c.json)
	app.Flag("format", "Format to use when printing floats.").Default(report.DefaultFormat).StringVar(&c.format)
	app.Flag("max-precision", "Maximum number of fractional digits of an exact decimal.").
		Default("200").Int32Var(&c.maxPrecision)
	app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("warn").EnumVar(&c.logLevel, "debug", "info", "warn", "error")
	app.Flag("no-color", "Disable colored output.").BoolVar(&c.noColor)
	app.Arg("values", "8-digit hex strings or decimal values.").Required().StringsVar(&c.values)
}

func (c *config) mode() report.Mode {
	switch {
	case c.float:
		return report.ModeFloat
	case c.hex:
		return report.ModeHex
	case c.decimal:
		return report.ModeDecimal
	case c.json:
		return report.ModeJSON
	default:
		return report.ModeDetailed
	}
}

func newLogger(w io.Writer, lvl string) log.Logger {
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowWarn()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	return level.NewFilter(logger, opt)
}

func newApp(cfg *config, stderr io.Writer) *kingpin.Application {
	app := kingpin.New("spfloat", "Take 8-digit hex strings or float values and print detailed "+
		"information about the single precision float they represent.")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	cfg.register(app)
	return app
}

func run(args []string, stdout, stderr io.Writer) int {
	var cfg config
	app := newApp(&cfg, stderr)
	if _, err := app.Parse(args); err != nil {
		app.Errorf("%s, try --help", err)
		return exitUsage
	}
	logger := newLogger(stderr, cfg.logLevel)
	if err := report.ValidateFormat(cfg.format); err != nil {
		app.Errorf("%s", err)
		return exitUsage
	}

	bits := make([]spfloat.Bits, 0, len(cfg.values))
	for _, v := range cfg.values {
		b, err := spfloat.Parse(v)
		if err != nil {
			app.Errorf("%s", err)
			return exitUsage
		}
		bits = append(bits, b)
	}

	printer := report.NewPrinter(stdout, report.Options{
		Mode:      cfg.mode(),
		Format:    cfg.format,
		NoDecimal: cfg.noDecimal,
		NoColor:   cfg.noColor,
		Convert: []exact.Option{
			exact.WithMaxPrecision(cfg.maxPrecision),
			exact.WithLogger(log.With(logger, "component", "exact")),
		},
	})
	for _, b := range bits {
		level.Debug(logger).Log("msg", "decoding", "bits", b)
		if err := printer.Print(b); err != nil {
			level.Error(logger).Log("msg", "failed to print value", "bits", b, "err", err)
			return exitInternal
		}
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
