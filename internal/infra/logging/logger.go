// Package logging provides file-based activity logging for chores.
// Entries go to a global log file (<data>/logs/chores.log) and, when a
// household is given, to that household's file (<data>/logs/household-<id>.log).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/chores/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes leveled entries to append-only files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	globalFile     *os.File
	householdFiles map[string]*os.File
	mirror         *slog.Logger
	now            func() time.Time
	dataDir        string
	mu             sync.Mutex
	level          slog.Level
}

// Option configures a Logger.
type Option func(*Logger)

// WithMirror also sends warnings and errors to an slog.Logger (typically stderr).
func WithMirror(l *slog.Logger) Option {
	return func(lg *Logger) { lg.mirror = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(lg *Logger) { lg.now = now }
}

// New creates a new Logger that writes below dataDir.
// If dataDir is empty, file logging is disabled.
func New(dataDir string, level slog.Level, opts ...Option) *Logger {
	l := &Logger{
		dataDir:        dataDir,
		level:          level,
		householdFiles: make(map[string]*os.File),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	//nolint:gosec // Log file readable by owner and group
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// fileFor returns the open file for a household, or the global file for "".
// Callers must hold l.mu.
func (l *Logger) fileFor(householdID string) (*os.File, error) {
	if householdID == "" {
		if l.globalFile == nil {
			f, err := l.openAppend(domain.GlobalLogPath(l.dataDir))
			if err != nil {
				return nil, err
			}
			l.globalFile = f
		}
		return l.globalFile, nil
	}
	if f, ok := l.householdFiles[householdID]; ok {
		return f, nil
	}
	f, err := l.openAppend(domain.HouseholdLogPath(l.dataDir, householdID))
	if err != nil {
		return nil, err
	}
	l.householdFiles[householdID] = f
	return f, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.householdFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.householdFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2024-06-11 09:32:51] [INFO] [household-home] [sweep] message
func formatLog(t time.Time, level slog.Level, householdID, category, msg string) string {
	scope := "global"
	if householdID != "" {
		scope = "household-" + householdID
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		scope,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes an entry to the global log and, if householdID is set, to the household log.
func (l *Logger) log(level slog.Level, householdID, category, msg string) {
	if level < l.level {
		return
	}

	if l.mirror != nil && level >= slog.LevelWarn {
		l.mirror.Log(context.Background(), level, msg, "household", householdID, "category", category)
	}

	if l.dataDir == "" {
		return
	}

	entry := formatLog(l.now(), level, householdID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gf, err := l.fileFor(""); err == nil {
		_, _ = io.WriteString(gf, entry)
	}
	if householdID != "" {
		if hf, err := l.fileFor(householdID); err == nil {
			_, _ = io.WriteString(hf, entry)
		}
	}
}

// Info logs an info message.
func (l *Logger) Info(householdID, category, msg string) {
	l.log(slog.LevelInfo, householdID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(householdID, category, msg string) {
	l.log(slog.LevelDebug, householdID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(householdID, category, msg string) {
	l.log(slog.LevelWarn, householdID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(householdID, category, msg string) {
	l.log(slog.LevelError, householdID, category, msg)
}
