// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging builds the slog loggers used by lineage binaries.
//
// Console output goes to the given writer (stderr for the CLI) as text or
// JSON. When LogDir is set, every record is also appended as JSON to
// {service}_{date}.log in that directory:
//
//	┌──────────────────────────────────────┐
//	│               Logger                 │
//	│  ┌──────────────┐  ┌──────────────┐  │
//	│  │   console    │  │   log file   │  │
//	│  │ (text/json)  │  │   (json)     │  │
//	│  └──────────────┘  └──────────────┘  │
//	└──────────────────────────────────────┘
//
// # Basic Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Service: "lineage"}, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//	slog.SetDefault(logger.Slog())
//
// # Thread Safety
//
// Logger is safe for concurrent use.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalidLevel is returned for a level name slog does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// Config controls logger construction.
type Config struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format is the console format: text or json.
	Format string `yaml:"format" validate:"oneof=text json"`

	// LogDir enables JSON file logging when non-empty. A leading ~ is
	// expanded to the home directory.
	LogDir string `yaml:"log_dir"`

	// Service is added to every record and names the log file.
	Service string `yaml:"-"`
}

// DefaultConfig returns info-level text logging to the console only.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText, Service: "lineage"}
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return level, nil
}

// Logger wraps a slog.Logger and owns its optional log file.
type Logger struct {
	slog *slog.Logger
	file *os.File
	mu   sync.Mutex
}

// New builds a Logger writing to console and, if configured, a file.
//
// Inputs:
//
//	config - Level and format. Empty fields take DefaultConfig values.
//	console - Destination for console output. nil uses os.Stderr.
//
// Outputs:
//
//	*Logger - Call Close to flush the file.
//	error - ErrInvalidLevel, or a failure to create the log file.
func New(config Config, console io.Writer) (*Logger, error) {
	defaults := DefaultConfig()
	if config.Level == "" {
		config.Level = defaults.Level
	}
	if config.Format == "" {
		config.Format = defaults.Format
	}
	if console == nil {
		console = os.Stderr
	}

	level, err := ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var consoleHandler slog.Handler
	switch config.Format {
	case FormatJSON:
		consoleHandler = slog.NewJSONHandler(console, opts)
	case FormatText:
		consoleHandler = slog.NewTextHandler(console, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", config.Format)
	}

	logger := &Logger{}
	handler := consoleHandler

	if config.LogDir != "" {
		file, err := openLogFile(config)
		if err != nil {
			return nil, err
		}
		logger.file = file
		handler = &multiHandler{handlers: []slog.Handler{consoleHandler, slog.NewJSONHandler(file, opts)}}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}
	logger.slog = slog.New(handler)
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// LogFile returns the path of the log file, or "" when file logging is off.
func (l *Logger) LogFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close syncs and closes the log file. Safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func openLogFile(config Config) (*os.File, error) {
	dir := expandPath(config.LogDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	service := config.Service
	if service == "" {
		service = "lineage"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
