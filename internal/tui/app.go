package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tabconv/internal/config"
	"github.com/f3rmion/tabconv/internal/convert"
	"github.com/f3rmion/tabconv/internal/dispatch"
	"github.com/f3rmion/tabconv/internal/history"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/f3rmion/tabconv/internal/tui/views"
	"github.com/sirupsen/logrus"
)

// maxFileBytes bounds files opened from the file picker.
const maxFileBytes = 4 << 20

// ViewType represents the current active view
type ViewType int

const (
	ViewConvert ViewType = iota
	ViewHistory
	ViewFilePicker
	ViewSettings
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     ViewType
	Shortcut string
}

// ViewSwitchMsg requests a view change
type ViewSwitchMsg struct {
	View ViewType
}

// EngineLoadedMsg reports the end of converter initialization.
type EngineLoadedMsg struct {
	Module dispatch.Module
	Err    error
}

// FileLoadedMsg carries the content of a file chosen in the picker.
type FileLoadedMsg struct {
	Path    string
	Content string
	Err     error
}

// Options configures the app.
type Options struct {
	Config    *config.Config
	ConfigDir string

	// History is nil when history is disabled.
	History *history.Store
	Logger  logrus.FieldLogger

	// Load initializes the converter. Defaults to a convert.Engine using
	// the configured column alignment.
	Load dispatch.LoadFunc

	// Input pre-fills the convert view.
	Input string
}

// AppModel is the main TUI model
type AppModel struct {
	config    *config.Config
	configDir string
	logger    logrus.FieldLogger

	load    dispatch.LoadFunc
	gate    *dispatch.Gate
	loadErr error

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	convertView    views.ConvertModel
	historyView    views.HistoryModel
	filePickerView views.FilePickerModel
	settingsView   views.SettingsModel

	notice string

	// Help overlay
	showHelp bool
}

// NewApp creates the TUI application. The converter is loaded by Init;
// until it is ready the convert buttons do nothing.
func NewApp(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	load := opts.Load
	if load == nil {
		load = dispatch.EngineLoader(convert.WithColumnAlign(cfg.LaTeX.Align))
	}

	gateOpts := []dispatch.ControllerOption{dispatch.WithLogger(logger)}
	var source views.HistorySource
	if opts.History != nil {
		gateOpts = append(gateOpts, dispatch.WithObserver(history.Observer(opts.History, logger)))
		source = opts.History
	}

	m := AppModel{
		config:       cfg,
		configDir:    opts.ConfigDir,
		logger:       logger,
		load:         load,
		gate:         dispatch.NewGate(gateOpts...),
		sidebarWidth: 20,
		currentView:  ViewConvert,
		menuItems: []MenuItem{
			{Label: "Convert", View: ViewConvert, Shortcut: "1"},
			{Label: "History", View: ViewHistory, Shortcut: "2"},
			{Label: "Open File", View: ViewFilePicker, Shortcut: "3"},
			{Label: "Settings", View: ViewSettings, Shortcut: "4"},
		},

		convertView:    views.NewConvertModel(cfg),
		historyView:    views.NewHistoryModel(source),
		filePickerView: views.NewFilePickerModel(""),
		settingsView:   views.NewSettingsModel(cfg, opts.ConfigDir),
	}
	if opts.Input != "" {
		m.convertView.SetInput(opts.Input)
	}
	return m
}

// Init starts the cursor blink and loads the converter.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadEngine())
}

func (m AppModel) loadEngine() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		mod, err := load(context.Background())
		return EngineLoadedMsg{Module: mod, Err: err}
	}
}

// Ready reports whether the convert buttons are live.
func (m AppModel) Ready() bool {
	return m.gate.Ready()
}

// Convert returns the convert view.
func (m AppModel) Convert() views.ConvertModel {
	return m.convertView
}

// CurrentView returns the view shown in the content area.
func (m AppModel) CurrentView() ViewType {
	return m.currentView
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.sidebarActive {
				return m, tea.Quit
			}
			m.sidebarActive = true
			return m, nil
		}

		// The convert view takes text, so shortcuts only apply from the
		// sidebar there.
		if m.sidebarActive || m.currentView != ViewConvert {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			case "1", "2", "3", "4":
				return m.switchTo(m.menuItems[msg.String()[0]-'1'].View)
			}
		}

		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
			case "enter", "l", "right", "tab":
				return m.switchTo(m.menuItems[m.selectedMenu].View)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2

		m.convertView.SetSize(contentWidth, contentHeight)
		m.historyView.SetSize(contentWidth, contentHeight)
		m.filePickerView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		return m, nil

	case EngineLoadedMsg:
		if msg.Err != nil {
			m.loadErr = msg.Err
			m.convertView.SetLoadError(msg.Err)
			logging.LogError(m.logger, "converter failed to load", msg.Err, logrus.Fields{"component": "tui"})
			return m, nil
		}
		m.gate.Open(msg.Module, &m.convertView)
		logging.LogOperation(m.logger, "converter_ready", logrus.Fields{"component": "tui"})
		return m, nil

	case ViewSwitchMsg:
		return m.switchTo(msg.View)

	case views.FileSelectedMsg:
		return m, loadFile(msg.Path)

	case FileLoadedMsg:
		if msg.Err != nil {
			m.notice = msg.Err.Error()
			logging.LogError(m.logger, "opening table file", msg.Err, logrus.Fields{"path": msg.Path})
			return m, nil
		}
		m.convertView.SetInput(msg.Content)
		m.notice = "Loaded " + filepath.Base(msg.Path)
		return m.switchTo(ViewConvert)

	case views.RestoreInputMsg:
		m.convertView.SetInput(msg.Input)
		return m.switchTo(ViewConvert)

	case views.HistoryLoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd
	}

	if m.sidebarActive {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewConvert:
		m.convertView, cmd = m.convertView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewFilePicker:
		m.filePickerView, cmd = m.filePickerView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, cmd
}

func (m AppModel) switchTo(v ViewType) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.sidebarActive = false
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
			break
		}
	}
	if v == ViewHistory {
		return m, m.historyView.Refresh()
	}
	return m, nil
}

func loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := os.Stat(path)
		if err != nil {
			return FileLoadedMsg{Path: path, Err: err}
		}
		if info.Size() > maxFileBytes {
			return FileLoadedMsg{Path: path, Err: fmt.Errorf("%s is larger than %d bytes", filepath.Base(path), maxFileBytes)}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return FileLoadedMsg{Path: path, Err: err}
		}
		return FileLoadedMsg{Path: path, Content: string(data)}
	}
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.currentView {
	case ViewConvert:
		content = m.convertView.View()
	case ViewHistory:
		content = m.historyView.View()
	case ViewFilePicker:
		content = m.filePickerView.View()
	case ViewSettings:
		content = m.settingsView.View()
	}

	mainContent := ContentStyle.
		Width(m.width - m.sidebarWidth - 4).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), mainContent)
}

func (m AppModel) renderSidebar() string {
	items := []string{SidebarTitleStyle.Render(" tabconv "), ""}

	for i, item := range m.menuItems {
		style := SidebarItemStyle
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		}
		items = append(items, style.Render(item.Shortcut+". "+item.Label))
	}

	items = append(items, "")
	switch {
	case m.loadErr != nil:
		items = append(items, StatusErrorStyle.Render("● engine failed"))
	case m.gate.Ready():
		items = append(items, StatusReadyStyle.Render("● ready"))
	default:
		items = append(items, StatusPendingStyle.Render("○ loading"))
	}
	if m.notice != "" {
		items = append(items, SidebarHelpStyle.Width(m.sidebarWidth-2).Render(m.notice))
	}

	if pad := m.height - len(items) - 6; pad > 0 {
		for range pad {
			items = append(items, "")
		}
	}

	items = append(items, SidebarHelpStyle.Render("esc Menu  ? Help"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (m AppModel) renderHelp() string {
	key := func(k, desc string) string {
		return HelpKeyStyle.Render(k) + HelpDescStyle.Render(desc) + "\n"
	}

	text := HelpTitleStyle.Render("tabconv") + "\n\n"

	text += HelpSectionStyle.Render("Global Keys") + "\n"
	text += key("esc", "Focus menu (again to quit)")
	text += key("1-4", "Switch views (from menu)")
	text += key("?", "Show this help")
	text += key("q / ctrl+c", "Quit")

	text += HelpSectionStyle.Render("Convert") + "\n"
	text += key("tab", "Next field")
	text += key("←/→", "Change rounding mode")
	text += key("enter", "Press focused button")
	text += key("f5 / ctrl+l", "Generate LaTeX")
	text += key("f6 / ctrl+e", "Generate CSV")
	text += key("ctrl+y", "Copy last output")

	text += HelpSectionStyle.Render("History") + "\n"
	text += key("enter", "Restore input")
	text += key("y", "Copy output")

	text += HelpSectionStyle.Render("Open File") + "\n"
	text += key("enter", "Open file / enter dir")
	text += key("backspace", "Parent directory")

	text += "\n" + lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Render("Press any key to close")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpBoxStyle.Render(text))
}
