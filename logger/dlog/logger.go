package dlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

const logFileName = "disma.json"

var multiLogger = slog.New(NewHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

type Config struct {
	Level slog.Level
	// LogDir enables a JSON log file next to the terminal output.
	LogDir string
	Color  bool
	Writer io.Writer
}

// Setup replaces the package logger. The returned closer releases the log file
// and is never nil.
func Setup(cfg Config) (io.Closer, error) {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var pretty *Handler
	if cfg.Color {
		pretty = New(opts, WithDestinationWriter(writer), WithColor())
	} else {
		pretty = New(opts, WithDestinationWriter(writer))
	}

	if cfg.LogDir == "" {
		multiLogger = slog.New(pretty)
		return nopCloser{}, nil
	}

	file, err := openLogFile(cfg.LogDir)
	if err != nil {
		return nil, err
	}
	multiLogger = slog.New(slogmulti.Fanout(
		pretty,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: cfg.Level, AddSource: true}),
	))
	return file, nil
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}
	path := filepath.Join(dir, logFileName)
	if _, err := archive(path); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func Logger() *slog.Logger {
	return multiLogger
}

func With(args ...any) *slog.Logger {
	return multiLogger.With(args...)
}

func Info(msg string, args ...any) {
	multiLogger.Info(msg, args...)
}
func Error(msg string, args ...any) {
	multiLogger.Error(msg, args...)
}
func Warn(msg string, args ...any) {
	multiLogger.Warn(msg, args...)
}
func Debug(msg string, args ...any) {
	multiLogger.Debug(msg, args...)
}
