package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/f3rmion/tabconv/internal/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call records one generator invocation on mockModule.
type call struct {
	op    string
	text  string
	param int
	// hasParam is false for the plain generators.
	hasParam bool
}

// mockModule hands out handles whose text names the generator that made
// them, and counts reads and releases.
type mockModule struct {
	calls    []call
	live     map[convert.Handle]string
	next     convert.Handle
	reads    int
	releases int

	// readAfterFree is incremented when String is called on a released handle.
	readAfterFree int
	released      map[convert.Handle]bool

	// nullHandles makes every generator return convert.NullHandle.
	nullHandles bool
}

func newMockModule() *mockModule {
	return &mockModule{
		live:     make(map[convert.Handle]string),
		released: make(map[convert.Handle]bool),
	}
}

func (m *mockModule) issue(c call) convert.Handle {
	m.calls = append(m.calls, c)
	if m.nullHandles {
		return convert.NullHandle
	}
	m.next++
	if c.hasParam {
		m.live[m.next] = fmt.Sprintf("%s(%s,%d)", c.op, c.text, c.param)
	} else {
		m.live[m.next] = fmt.Sprintf("%s(%s)", c.op, c.text)
	}
	return m.next
}

func (m *mockModule) GenLaTeX(text string) convert.Handle {
	return m.issue(call{op: "latex", text: text})
}

func (m *mockModule) GenCSV(text string) convert.Handle {
	return m.issue(call{op: "csv", text: text})
}

func (m *mockModule) GenLaTeXRounded(text string, d int) convert.Handle {
	return m.issue(call{op: "latex_rounded", text: text, param: d, hasParam: true})
}

func (m *mockModule) GenCSVRounded(text string, d int) convert.Handle {
	return m.issue(call{op: "csv_rounded", text: text, param: d, hasParam: true})
}

func (m *mockModule) GenLaTeXSigFigs(text string, n int) convert.Handle {
	return m.issue(call{op: "latex_sig_figs", text: text, param: n, hasParam: true})
}

func (m *mockModule) GenCSVSigFigs(text string, n int) convert.Handle {
	return m.issue(call{op: "csv_sig_figs", text: text, param: n, hasParam: true})
}

func (m *mockModule) String(h convert.Handle) (string, error) {
	m.reads++
	if m.released[h] {
		m.readAfterFree++
	}
	s, ok := m.live[h]
	if !ok {
		return "", convert.ErrUnknownHandle
	}
	return s, nil
}

func (m *mockModule) Free(h convert.Handle) error {
	m.releases++
	if _, ok := m.live[h]; !ok {
		return convert.ErrUnknownHandle
	}
	delete(m.live, h)
	m.released[h] = true
	return nil
}

// fakePage is an in-memory Page.
type fakePage struct {
	input    string
	mode     string
	selected bool
	decimals string
	sigFigs  string

	outputs map[Format]string
	writes  int
}

func newPage(input string) *fakePage {
	return &fakePage{
		input:    input,
		mode:     string(RoundNone),
		selected: true,
		outputs: map[Format]string{
			FormatLaTeX: "old latex",
			FormatCSV:   "old csv",
		},
	}
}

func (p *fakePage) InputText() string                 { return p.input }
func (p *fakePage) SelectedRoundMode() (string, bool) { return p.mode, p.selected }
func (p *fakePage) DecimalsText() string              { return p.decimals }
func (p *fakePage) SigFigsText() string               { return p.sigFigs }

func (p *fakePage) SetOutput(f Format, text string) {
	p.outputs[f] = text
	p.writes++
}

func TestEmptyInputIsNoOp(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t \r\n"} {
		for _, f := range []Format{FormatLaTeX, FormatCSV} {
			m := newMockModule()
			p := newPage(input)

			New(m).Generate(p, f)

			assert.Empty(t, m.calls, "input %q", input)
			assert.Zero(t, p.writes)
			assert.Equal(t, "old latex", p.outputs[FormatLaTeX])
			assert.Equal(t, "old csv", p.outputs[FormatCSV])
		}
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		mode     string
		selected bool
		decimals string
		sigFigs  string
		want     call
	}{
		{"latex none", FormatLaTeX, "none", true, "5", "5", call{op: "latex", text: "x"}},
		{"csv none", FormatCSV, "none", true, "5", "5", call{op: "csv", text: "x"}},
		{"nothing selected", FormatCSV, "decimal", false, "5", "5", call{op: "csv", text: "x"}},
		{"unknown mode", FormatLaTeX, "bogus", true, "5", "5", call{op: "latex", text: "x"}},
		{"latex decimal", FormatLaTeX, "decimal", true, "3", "", call{op: "latex_rounded", text: "x", param: 3, hasParam: true}},
		{"csv decimal", FormatCSV, "decimal", true, "3", "", call{op: "csv_rounded", text: "x", param: 3, hasParam: true}},
		{"decimal unparseable", FormatCSV, "decimal", true, "abc", "", call{op: "csv_rounded", text: "x", param: 0, hasParam: true}},
		{"decimal trailing garbage", FormatCSV, "decimal", true, "4px", "", call{op: "csv_rounded", text: "x", param: 4, hasParam: true}},
		{"latex sig figs", FormatLaTeX, "sig-figs", true, "", "4", call{op: "latex_sig_figs", text: "x", param: 4, hasParam: true}},
		{"csv sig figs", FormatCSV, "sig-figs", true, "", "4", call{op: "csv_sig_figs", text: "x", param: 4, hasParam: true}},
		{"sig figs unparseable", FormatLaTeX, "sig-figs", true, "", "abc", call{op: "latex_sig_figs", text: "x", param: 1, hasParam: true}},
		{"sig figs zero", FormatCSV, "sig-figs", true, "", "0", call{op: "csv_sig_figs", text: "x", param: 1, hasParam: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockModule()
			p := newPage("  x \n")
			p.mode, p.selected = tt.mode, tt.selected
			p.decimals, p.sigFigs = tt.decimals, tt.sigFigs

			New(m).Generate(p, tt.format)

			require.Len(t, m.calls, 1)
			assert.Equal(t, tt.want, m.calls[0])
		})
	}
}

func TestScenarioPlainLaTeX(t *testing.T) {
	m := newMockModule()
	p := newPage("a,b\n1,2")

	New(m).GenerateLaTeX(p)

	require.Len(t, m.calls, 1)
	assert.Equal(t, call{op: "latex", text: "a,b\n1,2"}, m.calls[0])
	assert.Equal(t, "latex(a,b\n1,2)", p.outputs[FormatLaTeX])
	assert.Equal(t, "old csv", p.outputs[FormatCSV])
	assert.Equal(t, 1, p.writes)
}

func TestScenarioDecimalCSV(t *testing.T) {
	m := newMockModule()
	p := newPage("1.23456,2")
	p.mode = string(RoundDecimal)
	p.decimals = "2"

	New(m).GenerateCSV(p)

	require.Len(t, m.calls, 1)
	assert.Equal(t, call{op: "csv_rounded", text: "1.23456,2", param: 2, hasParam: true}, m.calls[0])
	assert.Equal(t, "old latex", p.outputs[FormatLaTeX])
}

func TestEveryCallReleasesExactlyOneHandle(t *testing.T) {
	m := newMockModule()
	c := New(m)
	p := newPage("a,b")

	for i, mode := range []RoundMode{RoundNone, RoundDecimal, RoundSigFigs} {
		p.mode = string(mode)
		c.GenerateLaTeX(p)
		c.GenerateCSV(p)

		assert.Equal(t, 2*(i+1), m.releases)
		assert.Equal(t, 2*(i+1), m.reads)
	}

	assert.Empty(t, m.live, "no handle may be leaked")
	assert.Zero(t, m.readAfterFree, "no handle may be read after release")
}

func TestNullHandleStillReleasedAndOutputCleared(t *testing.T) {
	m := newMockModule()
	m.nullHandles = true
	p := newPage("a")

	var got []Result
	New(m, WithObserver(func(r Result) { got = append(got, r) })).GenerateCSV(p)

	assert.Equal(t, 1, m.releases)
	assert.Equal(t, "", p.outputs[FormatCSV])
	require.Len(t, got, 1)
	assert.Error(t, got[0].Err)
}

func TestObserverReceivesResult(t *testing.T) {
	m := newMockModule()
	p := newPage(" 1,2 ")
	p.mode = string(RoundSigFigs)
	p.sigFigs = "3"

	var got []Result
	New(m, WithObserver(func(r Result) { got = append(got, r) })).GenerateLaTeX(p)

	require.Len(t, got, 1)
	assert.Equal(t, Result{
		Format: FormatLaTeX,
		Mode:   RoundSigFigs,
		Param:  3,
		Input:  "1,2",
		Output: "latex_sig_figs(1,2,3)",
	}, got[0])
}

func TestWithRealEngine(t *testing.T) {
	e, err := convert.Load(context.Background())
	require.NoError(t, err)

	p := newPage("1.23456,2")
	p.mode = string(RoundDecimal)
	p.decimals = "2"

	New(e).GenerateCSV(p)

	assert.Equal(t, "1.23,2.00", p.outputs[FormatCSV])
	assert.Zero(t, e.Live())
}

func TestReleaseErrorIsNotSurfaced(t *testing.T) {
	m := &doubleFreeModule{mockModule: newMockModule()}
	p := newPage("a")

	assert.NotPanics(t, func() { New(m).GenerateCSV(p) })
	assert.Equal(t, "csv(a)", p.outputs[FormatCSV])
}

// doubleFreeModule fails every release.
type doubleFreeModule struct {
	*mockModule
}

func (m *doubleFreeModule) Free(convert.Handle) error {
	m.releases++
	return errors.New("already released")
}
