package views

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tabconv/internal/config"
)

var (
	settingsTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888")).
				Padding(0, 2)

	settingsTabActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffe66d")).
				Background(lipgloss.Color("#2d3436")).
				Padding(0, 2)

	settingsKeyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8dadc")).
				Width(18)

	settingsValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee"))
)

var settingsTabs = []string{"Conversion", "Storage", "Server"}

// SettingsModel shows the effective configuration.
type SettingsModel struct {
	config    *config.Config
	configDir string

	tab int

	width  int
	height int
}

// NewSettingsModel creates a new settings model.
func NewSettingsModel(cfg *config.Config, configDir string) SettingsModel {
	if cfg == nil {
		cfg = config.Default()
	}
	return SettingsModel{
		config:    cfg,
		configDir: configDir,
	}
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % len(settingsTabs)
		case "shift+tab", "left", "h":
			m.tab = (m.tab + len(settingsTabs) - 1) % len(settingsTabs)
		}
	}
	return m, nil
}

// View renders the settings view.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Configuration"))
	b.WriteString("\n")
	b.WriteString(fpPathStyle.Render("Config: " + filepath.Join(m.configDir, config.FileName)))
	b.WriteString("\n\n")

	var tabs []string
	for i, t := range settingsTabs {
		style := settingsTabStyle
		if i == m.tab {
			style = settingsTabActiveStyle
		}
		tabs = append(tabs, style.Render(t))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", max(0, min(m.width-4, 60)))))
	b.WriteString("\n\n")

	c := m.config
	switch m.tab {
	case 0:
		b.WriteString(row("rounding.mode", c.Rounding.Mode))
		b.WriteString(row("rounding.decimals", c.Rounding.Decimals))
		b.WriteString(row("rounding.sig_figs", c.Rounding.SigFigs))
		b.WriteString(row("latex.align", c.LaTeX.Align))
	case 1:
		b.WriteString(row("history.enabled", fmt.Sprint(c.History.Enabled)))
		b.WriteString(row("history.path", c.HistoryPath(m.configDir)))
		b.WriteString(row("log.level", c.Log.Level))
		b.WriteString(row("log.file", c.LogPath(m.configDir)))
	case 2:
		b.WriteString(row("server.addr", c.Server.Addr))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Edit the file or set TABCONV_* variables; run 'tabconv init' to create it"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/←→: switch tabs"))

	return b.String()
}

func row(key, value string) string {
	if value == "" {
		value = "(unset)"
	}
	return settingsKeyStyle.Render(key) + settingsValueStyle.Render(value) + "\n"
}
