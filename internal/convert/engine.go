// Package convert implements the table conversion engine.
//
// Every generator returns a Handle that owns the generated text. Callers
// read the text with String and must release the handle exactly once with
// Free. Live reports how many handles are still outstanding.
package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/f3rmion/tabconv/internal/numfmt"
	"github.com/f3rmion/tabconv/internal/table"
)

// Handle identifies a generated string owned by the caller.
type Handle uint32

// NullHandle never refers to a generated string.
const NullHandle Handle = 0

var (
	// ErrNullHandle is returned when NullHandle is read or released.
	ErrNullHandle = errors.New("convert: null handle")
	// ErrUnknownHandle is returned for handles that were never issued or
	// have already been released.
	ErrUnknownHandle = errors.New("convert: unknown or released handle")
)

// Option configures an Engine.
type Option func(*Engine) error

// WithColumnAlign sets the tabular column specifier used for every column.
func WithColumnAlign(align string) Option {
	return func(e *Engine) error {
		switch align {
		case "l", "c", "r":
			e.align = align[0]
			return nil
		default:
			return fmt.Errorf("invalid column alignment %q (want l, c or r)", align)
		}
	}
}

// Engine generates LaTeX and CSV text from tabular input.
type Engine struct {
	align byte

	mu      sync.Mutex
	next    Handle
	strings map[Handle]string
}

// Load initializes an Engine. It fails if ctx is already done or an option
// is invalid.
func Load(ctx context.Context, opts ...Option) (*Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading engine: %w", err)
	}

	e := &Engine{
		align:   'c',
		strings: make(map[Handle]string),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("loading engine: %w", err)
		}
	}
	return e, nil
}

// GenLaTeX converts text to a tabular environment.
func (e *Engine) GenLaTeX(text string) Handle {
	return e.store(renderLaTeX(table.Parse(text), e.align))
}

// GenCSV converts text to CSV.
func (e *Engine) GenCSV(text string) Handle {
	return e.store(renderCSV(table.Parse(text)))
}

// GenLaTeXRounded converts text to LaTeX with numeric cells rounded to
// decimals places.
func (e *Engine) GenLaTeXRounded(text string, decimals int) Handle {
	t := table.Parse(text).Map(func(c string) string { return numfmt.RoundDecimals(c, decimals) })
	return e.store(renderLaTeX(t, e.align))
}

// GenCSVRounded converts text to CSV with numeric cells rounded to
// decimals places.
func (e *Engine) GenCSVRounded(text string, decimals int) Handle {
	t := table.Parse(text).Map(func(c string) string { return numfmt.RoundDecimals(c, decimals) })
	return e.store(renderCSV(t))
}

// GenLaTeXSigFigs converts text to LaTeX with numeric cells rounded to
// sigFigs significant figures.
func (e *Engine) GenLaTeXSigFigs(text string, sigFigs int) Handle {
	t := table.Parse(text).Map(func(c string) string { return numfmt.RoundSigFigs(c, sigFigs) })
	return e.store(renderLaTeX(t, e.align))
}

// GenCSVSigFigs converts text to CSV with numeric cells rounded to sigFigs
// significant figures.
func (e *Engine) GenCSVSigFigs(text string, sigFigs int) Handle {
	t := table.Parse(text).Map(func(c string) string { return numfmt.RoundSigFigs(c, sigFigs) })
	return e.store(renderCSV(t))
}

// String returns the text owned by h without releasing it.
func (e *Engine) String(h Handle) (string, error) {
	if h == NullHandle {
		return "", ErrNullHandle
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.strings[h]
	if !ok {
		return "", ErrUnknownHandle
	}
	return s, nil
}

// Free releases h. Releasing a handle twice returns ErrUnknownHandle.
func (e *Engine) Free(h Handle) error {
	if h == NullHandle {
		return ErrNullHandle
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.strings[h]; !ok {
		return ErrUnknownHandle
	}
	delete(e.strings, h)
	return nil
}

// Live returns the number of handles that have not been released.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.strings)
}

func (e *Engine) store(s string) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Skip the null handle and any slot still in use after wraparound.
	for {
		e.next++
		if e.next == NullHandle {
			continue
		}
		if _, used := e.strings[e.next]; !used {
			break
		}
	}
	e.strings[e.next] = s
	return e.next
}
