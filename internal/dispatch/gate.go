package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/f3rmion/tabconv/internal/convert"
)

// Handler runs one conversion against a page.
type Handler func(Page)

// Registrar attaches conversion handlers to a surface's two triggers.
type Registrar interface {
	Bind(latex, csv Handler)
}

// LoadFunc initializes the conversion engine.
type LoadFunc func(ctx context.Context) (Module, error)

// EngineLoader returns a LoadFunc that loads a *convert.Engine with opts.
func EngineLoader(opts ...convert.Option) LoadFunc {
	return func(ctx context.Context) (Module, error) {
		e, err := convert.Load(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Gate holds a surface inert until the engine is ready. It opens at most
// once; handlers are bound when it opens and never before.
type Gate struct {
	opts []ControllerOption

	once sync.Once
	done chan struct{}
	ctrl *Controller
}

// NewGate returns a closed gate. opts are applied to the controller built
// when the gate opens.
func NewGate(opts ...ControllerOption) *Gate {
	return &Gate{
		opts: opts,
		done: make(chan struct{}),
	}
}

// Open builds the controller for m and binds its handlers to r. Only the
// first call has any effect; it returns true for that call.
func (g *Gate) Open(m Module, r Registrar) bool {
	opened := false
	g.once.Do(func() {
		g.ctrl = New(m, g.opts...)
		r.Bind(g.ctrl.GenerateLaTeX, g.ctrl.GenerateCSV)
		opened = true
		close(g.done)
	})
	return opened
}

// Ready reports whether the gate has opened.
func (g *Gate) Ready() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Done is closed when the gate opens.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Controller returns the bound controller, or nil before the gate opens.
func (g *Gate) Controller() *Controller {
	if !g.Ready() {
		return nil
	}
	return g.ctrl
}

// Attach waits for load and opens g with the loaded module. If load fails
// nothing is bound and the surface stays inert.
func (g *Gate) Attach(ctx context.Context, load LoadFunc, r Registrar) error {
	m, err := load(ctx)
	if err != nil {
		return fmt.Errorf("initializing converter: %w", err)
	}
	g.Open(m, r)
	return nil
}
