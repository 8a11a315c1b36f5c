package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/f3rmion/tabconv/internal/clipboard"
	"github.com/f3rmion/tabconv/internal/config"
	"github.com/f3rmion/tabconv/internal/convert"
	"github.com/f3rmion/tabconv/internal/dispatch"
	"github.com/f3rmion/tabconv/internal/history"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var latexCmd = &cobra.Command{
	Use:   "latex [file]",
	Short: "Convert a table to a LaTeX tabular environment",
	Long: `Convert rows read from a file (or stdin) to a LaTeX tabular environment.

Examples:
  tabconv latex data.csv
  pbpaste | tabconv latex --round decimal --decimals 2
  tabconv latex --round sig-figs --sig-figs 3 --copy results.tsv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args, dispatch.FormatLaTeX)
	},
}

var csvCmd = &cobra.Command{
	Use:   "csv [file]",
	Short: "Convert a table to comma-separated values",
	Long: `Convert rows read from a file (or stdin) to CSV. Tab-separated rows are
re-joined with commas.

Examples:
  tabconv csv data.tsv
  tabconv csv --round decimal --decimals 1 < data.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args, dispatch.FormatCSV)
	},
}

func init() {
	for _, c := range []*cobra.Command{latexCmd, csvCmd} {
		rootCmd.AddCommand(c)
		addConvertFlags(c)
	}
}

func addConvertFlags(c *cobra.Command) {
	c.Flags().String("round", "", "rounding mode: none, decimal or sig-figs (default from config)")
	c.Flags().String("decimals", "", "decimal places for --round decimal (default from config)")
	c.Flags().String("sig-figs", "", "significant figures for --round sig-figs (default from config)")
	c.Flags().Bool("copy", false, "also copy the output to the clipboard")
}

// cliPage is the command line's page: flags and input in, outputs captured.
type cliPage struct {
	input    string
	mode     string
	decimals string
	sigFigs  string
	outputs  map[dispatch.Format]string
}

// newCLIPage fills the rounding controls from cfg, overridden by any flag
// the user set.
func newCLIPage(cmd *cobra.Command, cfg *config.Config, input string) *cliPage {
	p := &cliPage{
		input:    input,
		mode:     cfg.Rounding.Mode,
		decimals: cfg.Rounding.Decimals,
		sigFigs:  cfg.Rounding.SigFigs,
		outputs:  make(map[dispatch.Format]string),
	}
	if cmd.Flags().Changed("round") {
		p.mode, _ = cmd.Flags().GetString("round")
	}
	if cmd.Flags().Changed("decimals") {
		p.decimals, _ = cmd.Flags().GetString("decimals")
	}
	if cmd.Flags().Changed("sig-figs") {
		p.sigFigs, _ = cmd.Flags().GetString("sig-figs")
	}
	return p
}

func (p *cliPage) InputText() string                 { return p.input }
func (p *cliPage) SelectedRoundMode() (string, bool) { return p.mode, p.mode != "" }
func (p *cliPage) DecimalsText() string              { return p.decimals }
func (p *cliPage) SigFigsText() string               { return p.sigFigs }

func (p *cliPage) SetOutput(f dispatch.Format, text string) {
	p.outputs[f] = text
}

// cliTriggers receives the handlers when the gate opens.
type cliTriggers struct {
	latex, csv dispatch.Handler
}

func (t *cliTriggers) Bind(latex, csv dispatch.Handler) {
	t.latex, t.csv = latex, csv
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func runConvert(cmd *cobra.Command, args []string, f dispatch.Format) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	page := newCLIPage(cmd, cfg, input)
	if err := dispatch.CheckParam(page.mode, page.decimals, page.sigFigs); err != nil {
		return err
	}

	opts := []dispatch.ControllerOption{dispatch.WithLogger(logger)}
	if store := openHistory(cfg, logger); store != nil {
		defer logging.SafeClose(store, logger, "close history")
		opts = append(opts, dispatch.WithObserver(history.Observer(store, logger)))
	}

	triggers := &cliTriggers{}
	gate := dispatch.NewGate(opts...)
	load := dispatch.EngineLoader(convert.WithColumnAlign(cfg.LaTeX.Align))
	if err := gate.Attach(contextOrBackground(cmd.Context()), load, triggers); err != nil {
		return err
	}

	if f == dispatch.FormatLaTeX {
		triggers.latex(page)
	} else {
		triggers.csv(page)
	}

	out, ok := page.outputs[f]
	if !ok {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if copyOut, _ := cmd.Flags().GetBool("copy"); copyOut {
		if err := clipboard.Write(out); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
	}
	return nil
}

// contextOrBackground returns ctx, or a background context when cobra ran
// without one.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
