package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"shipment-parser/internal/cache"
	"shipment-parser/internal/parser"
	"shipment-parser/internal/ratelimit"
	"shipment-parser/internal/server"
)

var (
	serveHost string
	servePort string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser over HTTP",
	Long: `Start an HTTP server exposing the parser:

    GET  /api/health   strategies and cache statistics
    POST /api/parse    records, warnings and summary as JSON
    POST /api/export   the records as an xlsx workbook

Both POST routes accept raw text or {"text": "..."} and require a bearer
token when server.api_key is configured. With server.rate_limit set, each
client may send one POST per interval.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Address to listen on (default from config)")
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.ServerHost = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.ServerPort = servePort
	}

	logger := newLogger(cfg, os.Stdout, cfg.LogLevel())
	logger.Info("Starting shipment parser server",
		"version", Version,
		"address", cfg.Address(),
		"fixtures", len(cfg.Fixtures),
		"cache_disabled", cfg.GetDisableCache(),
		"auth", cfg.APIKey != "",
		"rate_limit", cfg.GetRateLimitInterval())

	resultCache := cache.NewManager(cfg.GetDisableCache(), cfg.GetCacheTTL(), logger)
	defer resultCache.Close()

	opts := server.Options{
		Parser:        parser.New(cfg.ParserConfig(logger)),
		Cache:         resultCache,
		MaxInputBytes: cfg.MaxInputBytes,
		APIKey:        cfg.APIKey,
		Logger:        logger,
	}
	if !cfg.GetDisableRateLimit() {
		opts.RateLimiter = ratelimit.New(cfg)
	}
	handler := server.NewRouter(opts)

	srv := server.New(cfg.Address(), handler)
	if err := server.HandleSignals(cmd.Context(), srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error("Server error", "error", err)
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}
