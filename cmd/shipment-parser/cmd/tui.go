package cmd

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"shipment-parser/internal/parser"
	"shipment-parser/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"ui"},
	Short:   "Paste, review and export shipments interactively",
	Long: `Open a full-screen workbench. Paste the page text, press ctrl+s to
parse it, review the package table and press ctrl+e to export it to the
output directory. Press f1 for all key bindings.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration(cmd)
	if err != nil {
		return err
	}

	// Logs would tear the alternate screen, so only debug output is kept.
	logger := newLogger(cfg, cmd.ErrOrStderr(), slog.LevelError+4)

	model := tui.New(tui.Options{
		Parser:    parser.New(cfg.ParserConfig(logger)),
		OutputDir: cfg.OutputDir,
		NoColor:   cfg.NoColor,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run workbench: %w", err)
	}
	return nil
}
