package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"shipment-parser/internal/config"
	"shipment-parser/internal/parser"
)

// Version information
const Version = "1.0.0"

// Messages for the failures a user can fix by changing the pasted text
const (
	msgEmptyInput = "請先貼上集運資料"
	msgNoRecords  = "未能解析任何包裹資料，請確認格式是否正確"
	msgTooLarge   = "貼上的資料過大"
)

var (
	configFile   string
	format       string
	quiet        bool
	noColor      bool
	debug        bool
	fixturesFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shipment-parser",
	Short: "Extract package records from pasted consolidated-shipping pages",
	Long: `Shipment Parser turns the text copied from a consolidated-shipping
(集運) web page into one row per small package: shipment ID, package count,
status, courier, tracking number, weight, product name and dimensions.

Records can be printed as a table or JSON, exported to an xlsx workbook,
reviewed in an interactive workbench, or served over HTTP.

CONFIGURATION:
    Settings are read from shipment-parser.yaml (current directory,
    ./config or $HOME), a .env file and SHIPMENT_PARSER_* environment
    variables, in increasing order of precedence. Flags override all of them.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return fang.Execute(context.Background(), rootCmd)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is shipment-parser.yaml)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (tracking numbers only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&fixturesFile, "fixtures", "", "YAML file of reference shipments")
}

// loadConfiguration loads configuration and applies the flags the user set
func loadConfiguration(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadWithFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("quiet") {
		cfg.Quiet = quiet
	}
	if flags.Changed("no-color") {
		cfg.NoColor = noColor
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if cfg.Format != "table" && cfg.Format != "json" {
		return nil, errors.New("invalid format: " + cfg.Format + " (must be one of: table, json)")
	}
	if fixturesFile != "" {
		fixtures, err := config.LoadFixtures(fixturesFile)
		if err != nil {
			return nil, err
		}
		cfg.Fixtures = append(cfg.Fixtures, fixtures...)
	}

	return cfg, nil
}

// newLogger writes structured logs to w. Interactive commands only surface
// errors unless debug output was requested.
func newLogger(cfg *config.Config, w io.Writer, level slog.Level) *slog.Logger {
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// inputError wraps pipeline failures the user can fix with a readable message
type inputError struct {
	message string
	err     error
}

func (e *inputError) Error() string { return e.message }
func (e *inputError) Unwrap() error { return e.err }

// friendlyError replaces pipeline input errors with their user-facing message
func friendlyError(err error) error {
	switch {
	case errors.Is(err, parser.ErrNoRecords):
		return &inputError{message: msgNoRecords, err: err}
	case errors.Is(err, parser.ErrEmptyInput):
		return &inputError{message: msgEmptyInput, err: err}
	case errors.Is(err, parser.ErrInputTooLarge):
		return &inputError{message: msgTooLarge, err: err}
	default:
		return err
	}
}
