// Package logger is a small leveled wrapper around the standard logger.
// The TUI owns the terminal, so output normally goes to a file.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var (
	currentLevel = INFO
	mu           sync.RWMutex
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
}

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// SetLevel sets the current log level
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = ParseLevel(level)
}

// SetOutput redirects all log output.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// OpenFile points the logger at path and returns the file so the caller can
// close it on exit.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f, nil
}

func enabled(level Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel <= level
}

// Debug logs debug messages (verbose details)
func Debug(format string, v ...interface{}) {
	if enabled(DEBUG) {
		_ = log.Output(2, fmt.Sprintf("[DEBUG] "+format, v...))
	}
}

// Info logs informational messages
func Info(format string, v ...interface{}) {
	if enabled(INFO) {
		_ = log.Output(2, fmt.Sprintf(format, v...))
	}
}

// Warn logs warning messages
func Warn(format string, v ...interface{}) {
	if enabled(WARN) {
		_ = log.Output(2, fmt.Sprintf("[WARN] "+format, v...))
	}
}

// Error logs error messages
func Error(format string, v ...interface{}) {
	if enabled(ERROR) {
		_ = log.Output(2, fmt.Sprintf("[ERROR] "+format, v...))
	}
}

// Fatal logs a fatal error and exits
func Fatal(format string, v ...interface{}) {
	_ = log.Output(2, fmt.Sprintf("[FATAL] "+format, v...))
	os.Exit(1)
}
