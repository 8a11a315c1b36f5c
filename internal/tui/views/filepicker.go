package views

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TableExtensions are the file types offered by the file picker.
var TableExtensions = []string{".csv", ".tsv", ".txt"}

// FileSelectedMsg is sent when a file is selected
type FileSelectedMsg struct {
	Path string
}

// File picker styles
var (
	fpPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	fpDirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ecdc4")).
			Bold(true)

	fpFileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	fpSelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Background(lipgloss.Color("#2d3436"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3d5a80"))
)

// FileEntry represents a file or directory
type FileEntry struct {
	Name  string
	IsDir bool
	Path  string
}

// FilePickerModel browses the filesystem for table files.
type FilePickerModel struct {
	dir      string
	entries  []FileEntry
	selected int
	offset   int

	extensions []string
	showHidden bool

	err error

	width  int
	height int
}

// NewFilePickerModel creates a picker rooted at startDir, or at the working
// directory when startDir is empty.
func NewFilePickerModel(startDir string) FilePickerModel {
	if startDir == "" {
		startDir, _ = os.Getwd()
	}
	if startDir == "" {
		startDir, _ = os.UserHomeDir()
	}
	if startDir == "" {
		startDir = "/"
	}

	m := FilePickerModel{
		dir:        startDir,
		extensions: TableExtensions,
	}
	m.readDir()
	return m
}

// SetSize updates the view dimensions.
func (m *FilePickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Dir returns the directory being listed.
func (m FilePickerModel) Dir() string {
	return m.dir
}

// Entries returns the current listing.
func (m FilePickerModel) Entries() []FileEntry {
	return m.entries
}

func (m *FilePickerModel) chdir(dir string) {
	m.dir = dir
	m.readDir()
}

func (m *FilePickerModel) readDir() {
	m.entries = nil
	m.selected = 0
	m.offset = 0
	m.err = nil

	list, err := os.ReadDir(m.dir)
	if err != nil {
		m.err = err
		return
	}

	if parent := filepath.Dir(m.dir); parent != m.dir {
		m.entries = append(m.entries, FileEntry{Name: "..", IsDir: true, Path: parent})
	}

	var dirs, files []FileEntry
	for _, de := range list {
		name := de.Name()
		if !m.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		fe := FileEntry{Name: name, IsDir: de.IsDir(), Path: filepath.Join(m.dir, name)}
		switch {
		case fe.IsDir:
			dirs = append(dirs, fe)
		case m.accepts(name):
			files = append(files, fe)
		}
	}

	byName := func(s []FileEntry) {
		sort.Slice(s, func(i, j int) bool {
			return strings.ToLower(s[i].Name) < strings.ToLower(s[j].Name)
		})
	}
	byName(dirs)
	byName(files)

	m.entries = append(m.entries, dirs...)
	m.entries = append(m.entries, files...)
}

func (m *FilePickerModel) accepts(name string) bool {
	if len(m.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range m.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Update handles messages.
func (m FilePickerModel) Update(msg tea.Msg) (FilePickerModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "ctrl+d":
		m.move(m.visibleRows() / 2)
	case "ctrl+u":
		m.move(-m.visibleRows() / 2)
	case "g":
		m.move(-len(m.entries))
	case "G":
		m.move(len(m.entries))
	case "enter", "l", "right":
		if m.selected >= len(m.entries) {
			return m, nil
		}
		entry := m.entries[m.selected]
		if entry.IsDir {
			m.chdir(entry.Path)
			return m, nil
		}
		return m, func() tea.Msg {
			return FileSelectedMsg{Path: entry.Path}
		}
	case "backspace", "h":
		if parent := filepath.Dir(m.dir); parent != m.dir {
			m.chdir(parent)
		}
	case "~":
		if home, _ := os.UserHomeDir(); home != "" {
			m.chdir(home)
		}
	case ".":
		m.showHidden = !m.showHidden
		m.readDir()
	}
	return m, nil
}

func (m *FilePickerModel) move(delta int) {
	if len(m.entries) == 0 {
		return
	}
	m.selected = max(0, min(len(m.entries)-1, m.selected+delta))

	rows := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
}

func (m FilePickerModel) visibleRows() int {
	return max(5, m.height-8)
}

// View renders the file picker.
func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Open Table File"))
	b.WriteString("\n")
	b.WriteString(fpPathStyle.Render(m.dir))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	rule := ruleStyle.Render(strings.Repeat("─", max(0, min(m.width-4, 60))))
	b.WriteString(rule)
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(helpStyle.Render("  (no " + strings.Join(m.extensions, "/") + " files found)"))
		b.WriteString("\n")
	}

	end := min(len(m.entries), m.offset+m.visibleRows())
	for i := m.offset; i < end; i++ {
		entry := m.entries[i]

		line := "[FILE] " + entry.Name
		style := fpFileStyle
		if entry.IsDir {
			line = "[DIR]  " + entry.Name
			style = fpDirStyle
		}

		prefix := "  "
		if i == m.selected {
			prefix = "> "
			style = fpSelectedStyle
		}
		b.WriteString(prefix + style.Render(line) + "\n")
	}

	if len(m.entries) > m.visibleRows() {
		b.WriteString(helpStyle.Render("↕ scroll"))
		b.WriteString("\n")
	}

	b.WriteString(rule)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: open • backspace: parent • ~: home • .: hidden files • esc: menu"))

	return b.String()
}
