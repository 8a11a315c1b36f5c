package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := Load(context.Background(), opts...)
	require.NoError(t, err)
	return e
}

// take reads and releases h the way callers are expected to.
func take(t *testing.T, e *Engine, h Handle) string {
	t.Helper()
	s, err := e.String(h)
	require.NoError(t, err)
	require.NoError(t, e.Free(h))
	return s
}

func TestGenerators(t *testing.T) {
	e := newEngine(t)

	t.Run("plain latex", func(t *testing.T) {
		got := take(t, e, e.GenLaTeX("a,b\n1,2"))
		want := "\\begin{tabular}{cc}\n\\hline\na & b \\\\\n1 & 2 \\\\\n\\hline\n\\end{tabular}"
		assert.Equal(t, want, got)
	})

	t.Run("latex escapes specials after rounding", func(t *testing.T) {
		got := take(t, e, e.GenLaTeXRounded("50%,a_b\n1.234,{x}", 1))
		want := "\\begin{tabular}{cc}\n\\hline\n50\\% & a\\_b \\\\\n1.2 & \\{x\\} \\\\\n\\hline\n\\end{tabular}"
		assert.Equal(t, want, got)
	})

	t.Run("latex sig figs", func(t *testing.T) {
		got := take(t, e, e.GenLaTeXSigFigs("3.14159", 3))
		assert.Equal(t, "\\begin{tabular}{c}\n\\hline\n3.14 \\\\\n\\hline\n\\end{tabular}", got)
	})

	t.Run("plain csv normalizes tabs and padding", func(t *testing.T) {
		assert.Equal(t, "a,b\n1,2", take(t, e, e.GenCSV(" a\t b \n\n1\t2\n")))
	})

	t.Run("csv rounded", func(t *testing.T) {
		assert.Equal(t, "1.23,2.00", take(t, e, e.GenCSVRounded("1.23456,2", 2)))
	})

	t.Run("csv sig figs", func(t *testing.T) {
		assert.Equal(t, "12000,x", take(t, e, e.GenCSVSigFigs("12345,x", 2)))
	})

	t.Run("empty table", func(t *testing.T) {
		assert.Equal(t, "", take(t, e, e.GenLaTeX("\n \n")))
		assert.Equal(t, "", take(t, e, e.GenCSV("")))
	})

	assert.Equal(t, 0, e.Live())
}

func TestColumnAlign(t *testing.T) {
	e := newEngine(t, WithColumnAlign("l"))
	assert.Contains(t, take(t, e, e.GenLaTeX("a,b,c")), `\begin{tabular}{lll}`)

	_, err := Load(context.Background(), WithColumnAlign("x"))
	assert.Error(t, err)
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleLifecycle(t *testing.T) {
	e := newEngine(t)

	h := e.GenCSV("a")
	assert.NotEqual(t, NullHandle, h)
	assert.Equal(t, 1, e.Live())

	s, err := e.String(h)
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	again, err := e.String(h)
	require.NoError(t, err)
	assert.Equal(t, s, again, "reading must not consume the handle")

	require.NoError(t, e.Free(h))
	assert.Equal(t, 0, e.Live())

	_, err = e.String(h)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.ErrorIs(t, e.Free(h), ErrUnknownHandle)

	_, err = e.String(NullHandle)
	assert.ErrorIs(t, err, ErrNullHandle)
	assert.ErrorIs(t, e.Free(NullHandle), ErrNullHandle)
}

func TestHandlesAreDistinct(t *testing.T) {
	e := newEngine(t)

	h1 := e.GenCSV("a")
	h2 := e.GenCSV("b")
	assert.NotEqual(t, h1, h2)

	assert.Equal(t, "b", take(t, e, h2))
	assert.Equal(t, "a", take(t, e, h1))
}

func TestEscapeLaTeX(t *testing.T) {
	assert.Equal(t, `\&\%\$\#\_\{\}`, EscapeLaTeX("&%$#_{}"))
	assert.Equal(t, "plain", EscapeLaTeX("plain"))
}
