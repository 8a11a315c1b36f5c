// Package views provides the individual views for the unified TUI.
package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tabconv/internal/clipboard"
	"github.com/f3rmion/tabconv/internal/config"
	"github.com/f3rmion/tabconv/internal/dispatch"
	"github.com/mattn/go-runewidth"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8dadc")).
			Bold(true).
			Width(12)

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color("#ffe66d"))

	radioStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee")).
			Padding(0, 1)

	radioActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#4ecdc4")).
				Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee")).
			Background(lipgloss.Color("#3d5a80")).
			Padding(0, 2).
			MarginRight(2)

	buttonFocusedStyle = buttonStyle.
				Bold(true).
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#ffe66d"))

	buttonInertStyle = buttonStyle.
				Foreground(lipgloss.Color("#666666")).
				Background(lipgloss.Color("#2d3436"))

	outputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3d5a80")).
			Padding(0, 1)

	outputTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Bold(true)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe66d")).
			Bold(true).
			Italic(true)

	copiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			Bold(true)
)

type copiedClearMsg struct{}

func clearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return copiedClearMsg{}
	})
}

// focusArea identifies a control in the convert form, in tab order.
type focusArea int

const (
	focusInput focusArea = iota
	focusMode
	focusDecimals
	focusSigFigs
	focusLaTeX
	focusCSV
	focusCount
)

// ConvertModel is the conversion page: one input area, the rounding
// controls, two trigger buttons and two output panes. The buttons do
// nothing until Bind attaches handlers.
type ConvertModel struct {
	input    textarea.Model
	decimals textinput.Model
	sigFigs  textinput.Model

	// mode indexes dispatch.RoundModes; -1 means no control is selected.
	mode  int
	focus focusArea

	latexOut string
	csvOut   string
	last     dispatch.Format
	hasLast  bool

	onLaTeX dispatch.Handler
	onCSV   dispatch.Handler
	loadErr error

	copied  bool
	copyErr error

	width  int
	height int
}

// NewConvertModel creates the convert view with the rounding controls set
// from cfg.
func NewConvertModel(cfg *config.Config) ConvertModel {
	if cfg == nil {
		cfg = config.Default()
	}

	ta := textarea.New()
	ta.Placeholder = "Paste comma- or tab-separated rows..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.MaxWidth = 0
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.Focus()

	dec := newNumberInput("0")
	dec.SetValue(cfg.Rounding.Decimals)

	sig := newNumberInput("1")
	sig.SetValue(cfg.Rounding.SigFigs)

	m := ConvertModel{
		input:    ta,
		decimals: dec,
		sigFigs:  sig,
		mode:     -1,
	}
	for i, mode := range dispatch.RoundModes {
		if string(mode) == cfg.Rounding.Mode {
			m.mode = i
		}
	}
	if m.mode < 0 {
		m.mode = 0
	}
	return m
}

func newNumberInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 12
	ti.Width = 8
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))
	return ti
}

// SetSize updates the view dimensions.
func (m *ConvertModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	w := width - 4
	if w < 20 {
		w = 20
	}
	m.input.SetWidth(w)

	h := height/4 - 1
	if h < 3 {
		h = 3
	}
	m.input.SetHeight(h)
}

// Bind attaches the conversion handlers to the two buttons.
func (m *ConvertModel) Bind(latex, csv dispatch.Handler) {
	m.onLaTeX = latex
	m.onCSV = csv
	m.loadErr = nil
}

// Ready reports whether the buttons have handlers.
func (m ConvertModel) Ready() bool {
	return m.onLaTeX != nil && m.onCSV != nil
}

// SetLoadError records that the converter could not be initialized. The
// buttons stay inert.
func (m *ConvertModel) SetLoadError(err error) {
	m.loadErr = err
}

// SetInput replaces the input text.
func (m *ConvertModel) SetInput(text string) {
	m.input.SetValue(strings.ReplaceAll(text, "\t", tabMark))
}

// tabMark stands in for a tab inside the textarea, which expands real tabs
// to spaces.
const (
	tabRune = '\uE009'
	tabMark = string(tabRune)
)

// InputText returns the input area content with tabs restored.
func (m *ConvertModel) InputText() string {
	return strings.ReplaceAll(m.input.Value(), tabMark, "\t")
}

// markTabs rewrites tabs in typed or pasted runes to tabMark.
func markTabs(msg tea.KeyMsg) tea.KeyMsg {
	if msg.Type != tea.KeyRunes {
		return msg
	}
	runes := make([]rune, len(msg.Runes))
	for i, r := range msg.Runes {
		if r == '\t' {
			r = tabRune
		}
		runes[i] = r
	}
	msg.Runes = runes
	return msg
}

// SelectedRoundMode returns the active rounding control.
func (m *ConvertModel) SelectedRoundMode() (string, bool) {
	if m.mode < 0 || m.mode >= len(dispatch.RoundModes) {
		return "", false
	}
	return string(dispatch.RoundModes[m.mode]), true
}

// DecimalsText returns the decimals field content.
func (m *ConvertModel) DecimalsText() string {
	return m.decimals.Value()
}

// SigFigsText returns the significant-figures field content.
func (m *ConvertModel) SigFigsText() string {
	return m.sigFigs.Value()
}

// SetOutput replaces the output pane for f.
func (m *ConvertModel) SetOutput(f dispatch.Format, text string) {
	switch f {
	case dispatch.FormatLaTeX:
		m.latexOut = text
	case dispatch.FormatCSV:
		m.csvOut = text
	default:
		return
	}
	m.last = f
	m.hasLast = true
}

// Output returns the current content of the output pane for f.
func (m ConvertModel) Output(f dispatch.Format) string {
	if f == dispatch.FormatCSV {
		return m.csvOut
	}
	return m.latexOut
}

// Update handles messages.
func (m ConvertModel) Update(msg tea.Msg) (ConvertModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return m, m.setFocus((m.focus + 1) % focusCount)
		case "shift+tab":
			return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
		case "f5", "ctrl+l":
			m.trigger(dispatch.FormatLaTeX)
			return m, nil
		case "f6", "ctrl+e":
			m.trigger(dispatch.FormatCSV)
			return m, nil
		case "ctrl+y":
			return m, m.copyLast()
		}

		switch m.focus {
		case focusMode:
			switch msg.String() {
			case "left", "h":
				m.mode = (m.mode + len(dispatch.RoundModes) - 1) % len(dispatch.RoundModes)
			case "right", "l", " ":
				m.mode = (m.mode + 1) % len(dispatch.RoundModes)
			}
			return m, nil
		case focusLaTeX, focusCSV:
			switch msg.String() {
			case "enter", " ":
				if m.focus == focusLaTeX {
					m.trigger(dispatch.FormatLaTeX)
				} else {
					m.trigger(dispatch.FormatCSV)
				}
			case "left", "right":
				if m.focus == focusLaTeX {
					m.focus = focusCSV
				} else {
					m.focus = focusLaTeX
				}
			}
			return m, nil
		}

	case copiedClearMsg:
		m.copied = false
		m.copyErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusInput:
		if k, ok := msg.(tea.KeyMsg); ok {
			msg = markTabs(k)
		}
		m.input, cmd = m.input.Update(msg)
	case focusDecimals:
		m.decimals, cmd = m.decimals.Update(msg)
	case focusSigFigs:
		m.sigFigs, cmd = m.sigFigs.Update(msg)
	}
	return m, cmd
}

// trigger runs the handler bound to the button for f, if any.
func (m *ConvertModel) trigger(f dispatch.Format) {
	h := m.onLaTeX
	if f == dispatch.FormatCSV {
		h = m.onCSV
	}
	if h == nil {
		return
	}
	h(m)
}

func (m *ConvertModel) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.input.Blur()
	m.decimals.Blur()
	m.sigFigs.Blur()

	switch f {
	case focusInput:
		return m.input.Focus()
	case focusDecimals:
		return m.decimals.Focus()
	case focusSigFigs:
		return m.sigFigs.Focus()
	}
	return nil
}

func (m *ConvertModel) copyLast() tea.Cmd {
	if !m.hasLast {
		return nil
	}
	if err := clipboard.Write(m.Output(m.last)); err != nil {
		m.copyErr = err
	} else {
		m.copied = true
	}
	return clearCopiedAfter(2 * time.Second)
}

// View renders the convert view.
func (m ConvertModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Table → LaTeX / CSV"))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(m.label("Rounding", focusMode))
	b.WriteString(m.renderModes())
	b.WriteString("\n")
	b.WriteString(m.label("Decimals", focusDecimals))
	b.WriteString(m.decimals.View())
	b.WriteString("\n")
	b.WriteString(m.label("Sig. figs", focusSigFigs))
	b.WriteString(m.sigFigs.View())
	b.WriteString("\n\n")

	b.WriteString(m.renderButtons())
	b.WriteString("\n")

	switch {
	case m.loadErr != nil:
		b.WriteString(errorStyle.Render("Converter unavailable: " + m.loadErr.Error()))
		b.WriteString("\n")
	case !m.Ready():
		b.WriteString(loadingStyle.Render("Loading converter..."))
		b.WriteString("\n")
	}
	if m.copied {
		b.WriteString(copiedStyle.Render("Copied to clipboard"))
		b.WriteString("\n")
	} else if m.copyErr != nil {
		b.WriteString(errorStyle.Render(m.copyErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderOutputs())
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("tab: next field • ←/→: change mode • enter: press button • ctrl+l/f5: LaTeX • ctrl+e/f6: CSV • ctrl+y: copy"))

	return b.String()
}

func (m ConvertModel) label(text string, area focusArea) string {
	if m.focus == area {
		return focusedLabelStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (m ConvertModel) renderModes() string {
	var parts []string
	for i, mode := range dispatch.RoundModes {
		mark := "( )"
		style := radioStyle
		if i == m.mode {
			mark = "(•)"
			style = radioActiveStyle
		}
		parts = append(parts, style.Render(mark+" "+string(mode)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m ConvertModel) renderButtons() string {
	render := func(text string, area focusArea) string {
		switch {
		case !m.Ready():
			return buttonInertStyle.Render(text)
		case m.focus == area:
			return buttonFocusedStyle.Render(text)
		default:
			return buttonStyle.Render(text)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		render("LaTeX", focusLaTeX),
		render("CSV", focusCSV),
	)
}

func (m ConvertModel) renderOutputs() string {
	paneWidth := m.width/2 - 4
	if paneWidth < 20 {
		paneWidth = 20
	}
	lines := m.height/3 - 2
	if lines < 3 {
		lines = 3
	}

	pane := func(title, text string) string {
		body := clip(text, paneWidth-4, lines)
		return outputBoxStyle.
			Width(paneWidth).
			Render(outputTitleStyle.Render(title) + "\n" + body)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		pane("LaTeX", m.latexOut),
		pane("CSV", m.csvOut),
	)
}

// clip limits text to maxLines lines of at most width cells each.
func clip(text string, width, maxLines int) string {
	if text == "" {
		return helpStyle.Render("(empty)")
	}
	lines := strings.Split(text, "\n")
	more := 0
	if len(lines) > maxLines {
		more = len(lines) - maxLines
		lines = lines[:maxLines]
	}
	for i, l := range lines {
		lines[i] = runewidth.Truncate(l, width, "…")
	}
	out := strings.Join(lines, "\n")
	if more > 0 {
		out += "\n" + helpStyle.Render(fmt.Sprintf("… %d more lines (ctrl+y copies all)", more))
	}
	return out
}
