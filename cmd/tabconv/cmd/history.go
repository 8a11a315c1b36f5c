package cmd

import (
	"fmt"
	"strings"

	"github.com/f3rmion/tabconv/internal/history"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear recorded conversions",
	Long: `List the most recent conversions recorded by the TUI, the latex/csv
commands and the HTTP server, newest first.

Examples:
  tabconv history
  tabconv history --limit 5
  tabconv history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "number of entries to show")
	historyCmd.Flags().Bool("clear", false, "delete all recorded conversions")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	path := cfg.HistoryPath(getConfigDir())
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer logging.SafeClose(store, logger, "close history")

	ctx := contextOrBackground(cmd.Context())
	out := cmd.OutOrStdout()

	if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
		n, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d entries from %s\n", n, path)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No conversions recorded.")
		if !cfg.History.Enabled {
			fmt.Fprintln(out, "History is disabled; set history.enabled: true to record conversions.")
		}
		return nil
	}

	stamp := color.New(color.FgHiBlack)
	format := color.New(color.FgCyan, color.Bold)
	mode := color.New(color.FgYellow)

	for _, e := range entries {
		stamp.Fprint(out, e.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprint(out, "  ")
		format.Fprintf(out, "%-5s", e.Format)
		fmt.Fprint(out, "  ")
		mode.Fprintf(out, "%-12s", describeMode(e))
		fmt.Fprintf(out, "  %s\n", summarize(e.Input, 50))
	}
	return nil
}

func describeMode(e history.Entry) string {
	switch e.Mode {
	case "decimal":
		return fmt.Sprintf("decimal(%d)", e.Param)
	case "sig-figs":
		return fmt.Sprintf("sig-figs(%d)", e.Param)
	}
	return e.Mode
}

// summarize returns the first line of s, cut to n runes.
func summarize(s string, n int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " …"
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
