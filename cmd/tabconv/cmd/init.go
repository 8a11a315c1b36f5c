package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/tabconv/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tabconv configuration",
	Long: `Write a default config.yaml to your config directory.

The file sets the initial rounding controls, the LaTeX column alignment,
history storage, logging and the HTTP listen address. Every key can also be
set with a TABCONV_ environment variable, e.g. TABCONV_ROUNDING_MODE=decimal.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := filepath.Join(getConfigDir(), config.FileName)

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Edit rounding defaults and latex.align to taste")
	fmt.Fprintln(out, "  2. Run 'tabconv' for the interactive UI")
	fmt.Fprintln(out, "  3. Run 'tabconv latex <file>' or 'tabconv csv <file>' from scripts")
	return nil
}
