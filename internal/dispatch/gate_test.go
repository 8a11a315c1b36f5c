package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/f3rmion/tabconv/internal/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRegistrar struct {
	binds int
	latex Handler
	csv   Handler
}

func (r *recordingRegistrar) Bind(latex, csv Handler) {
	r.binds++
	r.latex, r.csv = latex, csv
}

func TestGateOpensOnce(t *testing.T) {
	g := NewGate()
	r := &recordingRegistrar{}

	assert.False(t, g.Ready())
	assert.Nil(t, g.Controller())
	assert.Zero(t, r.binds)

	assert.True(t, g.Open(newMockModule(), r))
	assert.False(t, g.Open(newMockModule(), r))

	assert.True(t, g.Ready())
	assert.NotNil(t, g.Controller())
	assert.Equal(t, 1, r.binds)

	select {
	case <-g.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestGateBoundHandlersConvert(t *testing.T) {
	m := newMockModule()
	r := &recordingRegistrar{}
	NewGate().Open(m, r)

	p := newPage("a,b")
	r.latex(p)
	r.csv(p)

	assert.Equal(t, "latex(a,b)", p.outputs[FormatLaTeX])
	assert.Equal(t, "csv(a,b)", p.outputs[FormatCSV])
}

func TestAttach(t *testing.T) {
	t.Run("binds after load", func(t *testing.T) {
		g := NewGate()
		r := &recordingRegistrar{}

		err := g.Attach(context.Background(), func(context.Context) (Module, error) {
			assert.Zero(t, r.binds, "handlers must not be bound before load completes")
			return newMockModule(), nil
		}, r)

		require.NoError(t, err)
		assert.Equal(t, 1, r.binds)
		assert.True(t, g.Ready())
	})

	t.Run("load failure stays inert", func(t *testing.T) {
		g := NewGate()
		r := &recordingRegistrar{}

		err := g.Attach(context.Background(), func(context.Context) (Module, error) {
			return nil, errors.New("no engine")
		}, r)

		assert.Error(t, err)
		assert.Zero(t, r.binds)
		assert.False(t, g.Ready())
	})
}

func TestGateAppliesOptions(t *testing.T) {
	var results []Result
	g := NewGate(WithObserver(func(res Result) { results = append(results, res) }))
	r := &recordingRegistrar{}
	g.Open(newMockModule(), r)

	r.csv(newPage("x"))

	require.Len(t, results, 1)
	assert.Equal(t, FormatCSV, results[0].Format)
}

func TestEngineLoader(t *testing.T) {
	t.Run("loads engine", func(t *testing.T) {
		m, err := EngineLoader(convert.WithColumnAlign("l"))(context.Background())
		require.NoError(t, err)
		require.NotNil(t, m)

		p := newPage("a,b")
		New(m).GenerateLaTeX(p)
		assert.Contains(t, p.outputs[FormatLaTeX], `\begin{tabular}{ll}`)
	})

	t.Run("bad option", func(t *testing.T) {
		m, err := EngineLoader(convert.WithColumnAlign("x"))(context.Background())
		assert.Error(t, err)
		assert.Nil(t, m)
	})
}
