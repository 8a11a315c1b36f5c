// Package cmd contains all CLI commands for tabconv.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/f3rmion/tabconv/internal/config"
	"github.com/f3rmion/tabconv/internal/history"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tabconv",
	Short: "Convert comma- or tab-separated tables to LaTeX and CSV",
	Long: `tabconv turns pasted tabular text into a LaTeX tabular environment or
normalized CSV, optionally rounding numeric cells to a number of decimal
places or significant figures.

Rows are separated by newlines. A row containing a tab is split on tabs,
otherwise on commas.

Running 'tabconv' without arguments launches the interactive TUI.`,
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is $HOME/.config/tabconv)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig loads .env and resolves the config directory.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: could not read .env:", err)
	}

	if cfgDir != "" {
		viper.Set("config_dir", cfgDir)
		return
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
		os.Exit(1)
	}
	viper.Set("config_dir", dir)
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// loadConfig reads config.yaml and TABCONV_* variables into the global viper.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper(), getConfigDir())
}

// newLogger logs to stderr at the configured level, or debug with --verbose.
func newLogger(cfg *config.Config) *logrus.Logger {
	level := cfg.Log.Level
	if viper.GetBool("verbose") {
		level = "debug"
	}
	return logging.New(os.Stderr, level)
}

// openHistory opens the history store, or returns nil when history is
// disabled or cannot be opened.
func openHistory(cfg *config.Config, logger logrus.FieldLogger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	path := cfg.HistoryPath(getConfigDir())
	store, err := history.Open(path)
	if err != nil {
		logging.LogError(logger, "history unavailable", err, logrus.Fields{"path": path})
		return nil
	}
	return store
}
