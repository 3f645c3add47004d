// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/prefs"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/tools"
)

// NewLogger builds the process logger. Output goes to stderr, which keeps
// stdout free for the MCP transport, and additionally to a rotated file
// when one is configured. The returned closer releases the file.
func NewLogger(cfg ApplicationConfig, stderr io.Writer) (*slog.Logger, io.Closer) {
	var closer io.Closer = io.NopCloser(nil)
	w := stderr
	if cfg.Log.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
		w = io.MultiWriter(stderr, file)
		closer = file
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), closer
	}
	return slog.New(slog.NewTextHandler(w, opts)), closer
}

// NewHandler opens the configured vault and returns the tool handler
// serving it. The vault directory is created when missing.
func NewHandler(cfg *Config, logger *slog.Logger) (*tools.Handler, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return tools.NewHandler(store,
		tools.WithLogger(logger),
		tools.WithEngineOptions(cfg.EngineOptions()...),
		tools.WithPreferencesOptions(prefs.WithSystemFolder(cfg.Vault.SystemFolder)),
	), nil
}

// Run serves the vault over MCP until the client disconnects or the
// process receives SIGINT or SIGTERM.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev", in: os.Stdin, out: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		var closer io.Closer
		logger, closer = NewLogger(cfg.App, os.Stderr)
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("system_folder", cfg.Vault.SystemFolder),
		slog.Any("excluded_folders", cfg.Vault.ExcludedFolders),
		slog.Int("default_limit", cfg.Limits.Default),
		slog.Int("max_limit", cfg.Limits.Max),
		slog.String("log_level", cfg.App.LogLevel.String()))

	handler, err := NewHandler(cfg, logger)
	if err != nil {
		return err
	}
	srv := mcpserver.New(handler, app.version, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return srv.Serve(gCtx, app.in, app.out)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
