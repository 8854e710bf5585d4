package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"callroot/internal/config"
	"callroot/internal/paths"
	"callroot/internal/slogutil"
	"callroot/internal/storage"
	"callroot/internal/workspace"
)

// env is the per-command environment: resolved root, config and logger
type env struct {
	root    string
	cfg     *config.Config
	logger  *slog.Logger
	closers []func() error
}

// newEnv resolves the workspace root, loads configuration and builds the logger
func newEnv() (*env, error) {
	root, err := resolveRoot(rootFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	e := &env{root: root, cfg: cfg}
	if err := e.initLogger(); err != nil {
		return nil, err
	}
	return e, nil
}

func resolveRoot(flag string) (string, error) {
	if flag == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	return filepath.Abs(flag)
}

// logLevel gives CLI flags precedence over logging.level in config
func logLevel(cfg *config.Config, verbose int, quiet bool) slog.Level {
	if verbose > 0 || quiet {
		return slogutil.LevelFromVerbosity(verbose, quiet)
	}
	return slogutil.LevelFromString(cfg.Logging.Level)
}

func (e *env) initLogger() error {
	level := logLevel(e.cfg, verboseFlag, quietFlag)
	stderr := slogutil.NewHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	logFile := logFileFlag
	if logFile == "" {
		logFile = paths.ResolveAgainst(e.root, e.cfg.Logging.File)
	}
	if logFile == "" {
		e.logger = slog.New(stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	// The file always gets at least info so it stays useful when stderr is quiet.
	fileLevel := level
	if fileLevel > slog.LevelInfo {
		fileLevel = slog.LevelInfo
	}
	fileLogger, f, err := slogutil.NewFileLogger(logFile, fileLevel)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	e.closers = append(e.closers, f.Close)
	e.logger = slogutil.NewTeeLogger(stderr, fileLogger.Handler())
	return nil
}

func (e *env) manifestPath() string {
	return paths.ResolveAgainst(e.root, e.cfg.Workspace.Manifest)
}

func (e *env) databasePath() string {
	return paths.ResolveAgainst(e.root, e.cfg.Storage.Path)
}

// loadManifest reads the workspace manifest
func (e *env) loadManifest() (*workspace.Manifest, error) {
	return workspace.LoadManifest(e.manifestPath())
}

// openWorkspace loads the manifest and resolves every project
func (e *env) openWorkspace() (*workspace.Workspace, error) {
	return workspace.Open(e.root, e.manifestPath(), workspace.Options{
		DefaultIndexPath: e.cfg.Index.DefaultPath,
		Logger:           e.logger,
	})
}

// openRedirects opens the redirect database, closing it with the env
func (e *env) openRedirects() (*storage.RedirectRepository, error) {
	db, err := storage.Open(e.databasePath(), e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e.closers = append(e.closers, db.Close)
	return storage.NewRedirectRepository(db), nil
}

// Close releases resources in reverse order of acquisition
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && e.logger != nil {
			e.logger.Warn("Failed to release resource", "error", err.Error())
		}
	}
	e.closers = nil
}
