// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/starford/simplenotes/internal/export"
	"github.com/starford/simplenotes/internal/mcpserver"
	"github.com/starford/simplenotes/internal/notestore"
	"github.com/starford/simplenotes/internal/session"
	"github.com/starford/simplenotes/internal/storage"
	"github.com/starford/simplenotes/internal/tui"
)

// components are shared by every shell.
type components struct {
	logger   *slog.Logger
	file     *storage.File
	exporter *export.Exporter
	exports  *storage.Dir
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{mode: ModeTUI, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	if err := cfg.ResolvePaths(); err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}

	logOut, closeLog, err := logOutput(app.mode, cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", string(app.mode)),
		slog.String("notes_file", cfg.Notes.File),
		slog.String("export_dir", cfg.Export.Dir),
		slog.Bool("watch", cfg.Notes.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	file, err := storage.NewFile(cfg.Notes.File)
	if err != nil {
		return fmt.Errorf("init notes file: %w", err)
	}
	exports, err := storage.NewDir(cfg.Export.Dir)
	if err != nil {
		return fmt.Errorf("init export dir: %w", err)
	}

	c := components{
		logger:   logger,
		file:     file,
		exporter: export.New(logger),
		exports:  exports,
	}

	switch app.mode {
	case ModeTUI:
		err = runTUI(ctx, cfg, c)
	case ModeServe:
		err = runServer(ctx, cfg, c)
	case ModeMCP:
		err = runMCP(cfg, c, app.version)
	default:
		err = fmt.Errorf("unknown mode %q", app.mode)
	}
	if err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped")
	return nil
}

// logOutput picks the log destination. The terminal UI owns stdout and the
// MCP shell speaks its protocol there, so neither may log to it.
func logOutput(mode Mode, logFile string) (io.Writer, func(), error) {
	switch mode {
	case ModeTUI:
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	case ModeMCP:
		return os.Stderr, func() {}, nil
	default:
		return os.Stdout, func() {}, nil
	}
}

func runTUI(ctx context.Context, cfg *Config, c components) error {
	store := notestore.Load(c.file, notestore.WithLogger(c.logger))
	sess := session.New(store)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.New(sess, c.exporter, cfg.Export.Dir),
		tea.WithAltScreen(),
		tea.WithContext(runCtx))

	g, gCtx := errgroup.WithContext(runCtx)

	if cfg.Notes.Watch {
		g.Go(func() error {
			watchNotes(gCtx, store, c.logger, func(_, path string) {
				p.Send(tui.ChangedOnDiskMsg{Path: path})
			})
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal UI: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// watchNotes runs the foreign-write watcher. A watcher that cannot start is
// not fatal; the shells work without it.
func watchNotes(ctx context.Context, store *notestore.Store, logger *slog.Logger, cb notestore.EventCallback) {
	if err := notestore.Watch(ctx, store, logger, cb); err != nil {
		logger.Warn("watcher disabled", slog.String("error", err.Error()))
	}
}

func runMCP(cfg *Config, c components, version string) error {
	store := notestore.Load(c.file, notestore.WithLogger(c.logger))
	srv := mcpserver.New(store, c.exporter, c.exports, version)

	c.logger.Info("MCP server starting on stdio", slog.String("notes_file", cfg.Notes.File))
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}
