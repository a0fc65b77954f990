package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	cliapi "shipment-parser/internal/cli"
	"shipment-parser/internal/config"
	"shipment-parser/internal/export"
	"shipment-parser/internal/parser"
	"shipment-parser/internal/summary"
)

var (
	writeXLSX  bool
	outputPath string
	showRaw    bool
	serverURL  string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse pasted shipment text from a file or stdin",
	Long: `Parse the text of a consolidated-shipping page and print one row per
package. Without a file argument, or with "-", the text is read from stdin.

With --server the text is sent to a running "shipment-parser serve"
instead of being parsed locally.`,
	Example: `  pbpaste | shipment-parser parse
  shipment-parser parse page.txt --xlsx
  shipment-parser parse page.txt -o shipments.xlsx --format json
  shipment-parser parse page.txt --server http://localhost:8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&writeXLSX, "xlsx", false, "Export the records to an xlsx workbook in the output directory")
	parseCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Export the records to this xlsx file")
	parseCmd.Flags().BoolVar(&showRaw, "show-raw", false, "Print the pasted text before the records")
	parseCmd.Flags().StringVarP(&serverURL, "server", "s", "", "Parse on a running server at this address")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = serverURL
	}

	formatter := cliapi.NewOutputFormatterWithColor(cfg.Format, cfg.Quiet, cfg.NoColor)
	logger := newLogger(cfg, cmd.ErrOrStderr(), slog.LevelError)

	text, err := readInput(cmd, args, cfg.MaxInputBytes)
	if err != nil {
		return err
	}

	var result *parser.Result
	var client *cliapi.Client
	if cfg.ServerURL != "" {
		if err := parser.ValidateInput(text, cfg.MaxInputBytes); err != nil {
			return friendlyError(err)
		}
		client = cliapi.NewClientWithTimeout(cfg.ServerURL, cfg.RequestTimeout).WithAPIKey(cfg.APIKey)
		result, err = parseRemote(client, text, cfg)
	} else {
		result, err = parser.New(cfg.ParserConfig(logger)).Parse(text)
	}
	if err != nil {
		return friendlyError(err)
	}

	if showRaw {
		formatter.PrintRaw(text)
	}
	if err := formatter.PrintRecords(result); err != nil {
		return err
	}
	for _, w := range result.Warnings {
		formatter.PrintWarning(w)
	}
	formatter.PrintSummary(summary.Summarize(result.Records))

	if !writeXLSX && outputPath == "" {
		return nil
	}

	path := outputPath
	if path == "" {
		path = filepath.Join(cfg.OutputDir, export.DefaultFilename(time.Now()))
	}
	if client != nil {
		err = exportRemote(client, text, path)
	} else {
		err = export.SaveXLSX(path, result.Records)
	}
	if err != nil {
		return err
	}

	formatter.PrintSuccess(fmt.Sprintf("已匯出至 %s", path))
	return nil
}

// readInput reads the named file, or stdin for "-" and no argument. At most
// one byte over the limit is read so oversized input is still rejected.
func readInput(cmd *cobra.Command, args []string, maxBytes int) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func parseRemote(client *cliapi.Client, text string, cfg *config.Config) (*parser.Result, error) {
	if !cfg.Quiet {
		spinner := cliapi.NewProgressSpinner("Parsing on "+cfg.ServerURL, cfg.NoColor)
		spinner.Start()
		defer spinner.Stop()
	}
	return client.Parse(text)
}

func exportRemote(client *cliapi.Client, text, path string) error {
	data, err := client.Export(text)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
