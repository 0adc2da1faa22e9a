package slogutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sarifsort/internal/config"
	"sarifsort/internal/paths"
)

// LoggerFactory builds the CLI logger. Console output always goes to
// stderr so stdout stays reserved for SARIF; when logging.file is set, a
// second (optionally rotating) file sink receives the same records.
type LoggerFactory struct {
	root     string
	config   *config.Config
	cliLevel *slog.Level
	stderr   io.Writer
	closers  []io.Closer
}

// NewLoggerFactory creates a factory. cliLevel is nil when no -v or -q flag
// was given.
func NewLoggerFactory(root string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		root:     root,
		config:   cfg,
		cliLevel: cliLevel,
		stderr:   os.Stderr,
	}
}

// Logger returns the configured logger. A file sink that cannot be opened
// is reported on the console logger and skipped.
func (f *LoggerFactory) Logger() *slog.Logger {
	level := f.effectiveLevel()
	console := NewTextHandler(f.stderr, &slog.HandlerOptions{Level: level})
	if f.config.Logging.File == "" {
		return slog.New(console)
	}

	path := paths.LogPath(f.root, f.config.Logging.File)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger := slog.New(console)
		logger.Warn("Log file disabled", "path", path, "error", err)
		return logger
	}
	fileLogger, closer, err := NewFileLoggerWithRotation(path, f.fileLevel(), f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	if err != nil {
		logger := slog.New(console)
		logger.Warn("Log file disabled", "path", path, "error", err)
		return logger
	}
	f.closers = append(f.closers, closer)
	return slog.New(NewTeeHandler(console, fileLogger.Handler()))
}

// effectiveLevel is the console level: CLI flag > logging.level > warn.
func (f *LoggerFactory) effectiveLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelWarn
}

// fileLevel ignores -q so a quiet run still leaves a trail in the file.
func (f *LoggerFactory) fileLevel() slog.Level {
	if f.cliLevel != nil && *f.cliLevel != LevelSilent {
		return *f.cliLevel
	}
	return LevelFromString(f.config.Logging.Level)
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
