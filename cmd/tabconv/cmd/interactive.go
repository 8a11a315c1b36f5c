package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/f3rmion/tabconv/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive [file]",
	Aliases: []string{"i", "ui"},
	Short:   "Launch interactive TUI",
	Long: `Launch the interactive terminal UI.

Paste or type rows into the input area, pick a rounding mode and press the
LaTeX or CSV button. An optional file pre-fills the input.

Controls:
  tab       Next field
  ←/→       Change rounding mode
  ctrl+l    Generate LaTeX
  ctrl+e    Generate CSV
  ctrl+y    Copy last output
  esc       Menu`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// runTUI launches the TUI. The terminal belongs to bubbletea, so logs go to
// the configured log file.
func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if viper.GetBool("verbose") {
		level = "debug"
	}
	logger, closer, err := logging.NewFile(cfg.LogPath(getConfigDir()), level)
	if err != nil {
		logger = logging.Discard()
	} else {
		defer logging.SafeClose(closer, logger, "close log file")
	}

	var input string
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading input file: %w", err)
		}
		input = string(data)
	}

	opts := tui.Options{
		Config:    cfg,
		ConfigDir: getConfigDir(),
		Logger:    logger,
		Input:     input,
	}
	if store := openHistory(cfg, logger); store != nil {
		defer logging.SafeClose(store, logger, "close history")
		opts.History = store
	}

	logging.LogOperation(logger, "tui_start", logrus.Fields{"config_dir": getConfigDir()})

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
