// Package dispatch connects a page of input controls to the conversion
// engine. The Controller reads the input text and rounding selection from a
// Page, picks one of six generators, and writes the generated text back to
// the page's output field for the requested format.
package dispatch

import (
	"strings"

	"github.com/f3rmion/tabconv/internal/convert"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/sirupsen/logrus"
)

// Module is the conversion engine as seen by the controller.
// *convert.Engine satisfies it.
type Module interface {
	GenLaTeX(text string) convert.Handle
	GenCSV(text string) convert.Handle
	GenLaTeXRounded(text string, decimals int) convert.Handle
	GenCSVRounded(text string, decimals int) convert.Handle
	GenLaTeXSigFigs(text string, sigFigs int) convert.Handle
	GenCSVSigFigs(text string, sigFigs int) convert.Handle
	String(h convert.Handle) (string, error)
	Free(h convert.Handle) error
}

// Page is the set of controls a conversion reads from and writes to.
type Page interface {
	// InputText returns the raw tabular source.
	InputText() string
	// SelectedRoundMode returns the value of the active rounding control,
	// or false if none is active.
	SelectedRoundMode() (string, bool)
	DecimalsText() string
	SigFigsText() string
	// SetOutput replaces the content of the output field for f.
	SetOutput(f Format, text string)
}

// Result describes one completed conversion.
type Result struct {
	Format Format
	Mode   RoundMode
	// Param is the decimals or significant-figures count, 0 for RoundNone.
	Param  int
	Input  string
	Output string
	// Err is set when the generated text could not be read back.
	Err error
}

// family holds the three generators for one output format.
type family struct {
	plain   func(string) convert.Handle
	rounded func(string, int) convert.Handle
	sigFigs func(string, int) convert.Handle
}

// Controller dispatches conversions. It keeps no state between calls.
type Controller struct {
	module    Module
	families  map[Format]family
	logger    logrus.FieldLogger
	observers []func(Result)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for conversion events.
func WithLogger(logger logrus.FieldLogger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithObserver registers fn to be called after every completed conversion.
func WithObserver(fn func(Result)) ControllerOption {
	return func(c *Controller) {
		c.observers = append(c.observers, fn)
	}
}

// New binds a controller to m.
func New(m Module, opts ...ControllerOption) *Controller {
	c := &Controller{
		module: m,
		families: map[Format]family{
			FormatLaTeX: {plain: m.GenLaTeX, rounded: m.GenLaTeXRounded, sigFigs: m.GenLaTeXSigFigs},
			FormatCSV:   {plain: m.GenCSV, rounded: m.GenCSVRounded, sigFigs: m.GenCSVSigFigs},
		},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateLaTeX converts the page input to LaTeX.
func (c *Controller) GenerateLaTeX(p Page) {
	c.Generate(p, FormatLaTeX)
}

// GenerateCSV converts the page input to CSV.
func (c *Controller) GenerateCSV(p Page) {
	c.Generate(p, FormatCSV)
}

// Generate converts the page input to f and writes the result to the
// page's output field for f. Blank input is a no-op.
func (c *Controller) Generate(p Page, f Format) {
	text := strings.TrimSpace(p.InputText())
	if text == "" {
		return
	}

	fam, ok := c.families[f]
	if !ok {
		return
	}

	mode := RoundNone
	if v, selected := p.SelectedRoundMode(); selected {
		mode = ParseRoundMode(v)
	}

	res := Result{Format: f, Mode: mode, Input: text}

	var h convert.Handle
	switch mode {
	case RoundDecimal:
		res.Param = ParseParam(p.DecimalsText(), DefaultDecimals)
		h = fam.rounded(text, res.Param)
	case RoundSigFigs:
		res.Param = ParseParam(p.SigFigsText(), DefaultSigFigs)
		h = fam.sigFigs(text, res.Param)
	default:
		h = fam.plain(text)
	}

	res.Output, res.Err = c.take(h)
	if res.Err != nil {
		logging.LogError(c.logger, "reading generated text", res.Err, logrus.Fields{
			"format": f.String(),
			"mode":   string(mode),
		})
	}

	p.SetOutput(f, res.Output)

	c.logger.WithFields(logrus.Fields{
		"format":    f.String(),
		"mode":      string(mode),
		"param":     res.Param,
		"input_len": len(text),
	}).Debug("conversion complete")

	for _, fn := range c.observers {
		fn(res)
	}
}

// take copies the text out of h and releases h, in that order. The release
// runs even when the copy fails.
func (c *Controller) take(h convert.Handle) (s string, err error) {
	defer func() {
		if ferr := c.module.Free(h); ferr != nil {
			logging.LogError(c.logger, "releasing generated text", ferr, logrus.Fields{
				"handle": uint32(h),
			})
		}
	}()
	return c.module.String(h)
}
