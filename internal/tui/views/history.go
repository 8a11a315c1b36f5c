package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tabconv/internal/clipboard"
	"github.com/f3rmion/tabconv/internal/history"
	"github.com/mattn/go-runewidth"
)

// historyLimit is how many entries the history view loads.
const historyLimit = 200

// HistorySource lists recorded conversions.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// HistoryLoadedMsg carries the result of a history query.
type HistoryLoadedMsg struct {
	Entries []history.Entry
	Err     error
}

// RestoreInputMsg asks the app to put Input back into the convert view.
type RestoreInputMsg struct {
	Input string
}

// HistoryModel lists past conversions, newest first.
type HistoryModel struct {
	source HistorySource

	entries  []history.Entry
	selected int
	offset   int
	loaded   bool
	err      error

	copied  bool
	copyErr error

	width  int
	height int
}

// NewHistoryModel creates the history view. A nil source means history is
// disabled.
func NewHistoryModel(source HistorySource) HistoryModel {
	return HistoryModel{source: source}
}

// SetSize updates the view dimensions.
func (m *HistoryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Refresh returns a command that reloads the entries.
func (m HistoryModel) Refresh() tea.Cmd {
	if m.source == nil {
		return nil
	}
	src := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := src.Recent(ctx, historyLimit)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

// Selected returns the highlighted entry.
func (m HistoryModel) Selected() (history.Entry, bool) {
	if m.selected < 0 || m.selected >= len(m.entries) {
		return history.Entry{}, false
	}
	return m.entries[m.selected], true
}

// Update handles messages.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryLoadedMsg:
		m.loaded = true
		m.err = msg.Err
		m.entries = msg.Entries
		m.selected = min(m.selected, max(0, len(m.entries)-1))
		m.offset = 0
		return m, nil

	case copiedClearMsg:
		m.copied = false
		m.copyErr = nil
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.move(1)
		case "k", "up":
			m.move(-1)
		case "g":
			m.move(-len(m.entries))
		case "G":
			m.move(len(m.entries))
		case "r":
			return m, m.Refresh()
		case "enter":
			if e, ok := m.Selected(); ok {
				return m, func() tea.Msg { return RestoreInputMsg{Input: e.Input} }
			}
		case "y":
			e, ok := m.Selected()
			if !ok {
				return m, nil
			}
			if err := clipboard.Write(e.Output); err != nil {
				m.copyErr = err
			} else {
				m.copied = true
			}
			return m, clearCopiedAfter(2 * time.Second)
		}
	}
	return m, nil
}

func (m *HistoryModel) move(delta int) {
	if len(m.entries) == 0 {
		return
	}
	m.selected = max(0, min(len(m.entries)-1, m.selected+delta))

	rows := m.listRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
}

func (m HistoryModel) listRows() int {
	return max(3, m.height/2-4)
}

// View renders the history view.
func (m HistoryModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Conversion History"))
	b.WriteString("\n\n")

	switch {
	case m.source == nil:
		b.WriteString(helpStyle.Render("History is disabled (history.enabled: false)"))
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		return b.String()
	case !m.loaded:
		b.WriteString(loadingStyle.Render("Loading history..."))
		return b.String()
	case len(m.entries) == 0:
		b.WriteString(helpStyle.Render("No conversions yet"))
		return b.String()
	}

	width := max(20, m.width-4)
	end := min(len(m.entries), m.offset+m.listRows())
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		line := fmt.Sprintf("%s  %-5s %-8s %s",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Format, modeLabel(e), firstLine(e.Input))
		line = runewidth.Truncate(line, width-2, "…")

		if i == m.selected {
			b.WriteString("> " + fpSelectedStyle.Render(line))
		} else {
			b.WriteString("  " + fpFileStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(ruleStyle.Render(strings.Repeat("─", min(width, 60))))
	b.WriteString("\n")
	if e, ok := m.Selected(); ok {
		b.WriteString(outputTitleStyle.Render("Output"))
		b.WriteString("\n")
		b.WriteString(clip(e.Output, width, max(3, m.height/2-6)))
		b.WriteString("\n")
	}

	if m.copied {
		b.WriteString(copiedStyle.Render("Copied to clipboard"))
		b.WriteString("\n")
	} else if m.copyErr != nil {
		b.WriteString(errorStyle.Render(m.copyErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("j/k: navigate • enter: restore input • y: copy output • r: reload"))
	return b.String()
}

func modeLabel(e history.Entry) string {
	switch e.Mode {
	case "decimal":
		return fmt.Sprintf("%d dp", e.Param)
	case "sig-figs":
		return fmt.Sprintf("%d sf", e.Param)
	}
	return e.Mode
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
