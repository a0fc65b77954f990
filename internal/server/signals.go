package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// SignalHandler manages graceful shutdown of the HTTP server
type SignalHandler struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) *SignalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalHandler{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// WaitForShutdown blocks until ctx is cancelled or serveErr delivers, then
// shuts the server down within the timeout.
func (sh *SignalHandler) WaitForShutdown(ctx context.Context, serveErr <-chan error) error {
	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		sh.logger.Info("initiating graceful shutdown", "cause", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sh.shutdownTimeout)
	defer cancel()

	if err := sh.server.Shutdown(shutdownCtx); err != nil {
		sh.logger.Error("server forced to shut down", "error", err)
		return err
	}
	sh.logger.Info("server gracefully shut down")
	return nil
}

// HandleSignals starts the server and shuts it down on SIGINT or SIGTERM
func HandleSignals(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := NewSignalHandler(server, shutdownTimeout, logger)
	return handler.WaitForShutdown(ctx, Serve(server, handler.logger))
}

// Serve runs ListenAndServe in a goroutine. The returned channel delivers a
// start-up failure; it stays silent after a normal shutdown.
func Serve(server *http.Server, logger *slog.Logger) <-chan error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	return serveErr
}

// Notes about signal handling:
//
// SIGINT and SIGTERM are handled gracefully; SIGKILL and SIGSTOP cannot be
// caught, so a killed server exits without draining connections.
