// Package logger provides leveled logging for vhostfrag.
//
// Log output goes to stderr, separate from rendered configuration and
// user-facing messages on stdout, so `vhostfrag render > site.conf` stays clean
// even with --verbose.
//
// # Log Levels
//
// Four log levels are supported, in order of severity:
//   - Debug: every fragment intake, drop and flush of an assembly run
//   - Info: per-vhost progress
//   - Warn: recoverable problems (a vhost skipped, a rollback step failed)
//   - Error: failures that stop an operation
//
// # Initialization
//
//	logger.Init(verbose)             // verbose=true enables Debug level
//	level, err := logger.ParseLevel("info")
//	logger.SetLevel(level)
//
// By default only Warn and Error messages are shown.
//
// # Structured Fields
//
// Assembly logs carry the run ID of their registry so lines from parallel runs
// can be told apart. The registry binds it once with With:
//
//	log := logger.With(logger.Fields{"run": reg.RunID()})
//	log.Debug("fragment registered", logger.Fields{
//	    "target": "15-default-80",
//	    "order":  170,
//	})
//
// # Output Format
//
//	[DEBUG] 2026-02-03 10:30:45 fragment registered order=170 run=4f1c... target=15-default-80
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Fields holds structured key-value pairs appended to a log line.
type Fields map[string]interface{}

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level: %q", s)
	}
}

// Logger handles leveled logging with thread-safe output.
type Logger struct {
	level  Level
	output io.Writer
	mu     sync.Mutex
}

// Global logger instance.
var std = &Logger{
	level:  LevelWarn, // Default: only warnings and errors
	output: os.Stderr,
}

// Init initializes the global logger with the specified verbosity.
// When verbose is true, Debug and Info levels are enabled.
// When verbose is false, only Warn and Error are shown.
func Init(verbose bool) {
	std.mu.Lock()
	defer std.mu.Unlock()

	if verbose {
		std.level = LevelDebug
	} else {
		std.level = LevelWarn
	}
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

// SetOutput sets the output destination for the global logger.
// A nil writer restores os.Stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	std.output = w
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// log writes a formatted message at the specified level.
func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(l.output, "[%s] %s %s\n", level.String(), timestamp, msg)
}

// logFields writes a message with structured key-value fields.
func (l *Logger) logFields(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	// Sort field keys for consistent output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fieldParts []string
	for _, k := range keys {
		fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	fieldsStr := ""
	if len(fieldParts) > 0 {
		fieldsStr = " " + strings.Join(fieldParts, " ")
	}

	_, _ = fmt.Fprintf(l.output, "[%s] %s %s%s\n", level.String(), timestamp, msg, fieldsStr)
}

// Debug logs a debug message.
// Only shown when verbose mode is enabled.
func Debug(format string, args ...interface{}) {
	std.log(LevelDebug, format, args...)
}

// Info logs an informational message.
// Only shown when verbose mode is enabled.
func Info(format string, args ...interface{}) {
	std.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
// Always shown regardless of verbose mode.
func Warn(format string, args ...interface{}) {
	std.log(LevelWarn, format, args...)
}

// Error logs an error message.
// Always shown regardless of verbose mode.
func Error(format string, args ...interface{}) {
	std.log(LevelError, format, args...)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields Fields) {
	std.logFields(LevelDebug, msg, fields)
}

// Entry is a logger bound to fields that are added to every line it writes.
// An assembly run binds its run ID once and passes the Entry along.
type Entry struct {
	fields Fields
}

// With returns an Entry carrying fields.
func With(fields Fields) *Entry {
	return (&Entry{}).With(fields)
}

// With returns a copy of e carrying fields in addition to its own.
// Keys in fields replace keys of the same name.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{fields: merged}
}

// Fields returns a copy of the bound fields.
func (e *Entry) Fields() Fields {
	return e.With(nil).fields
}

// Debug logs msg with the bound fields and fields at Debug level.
func (e *Entry) Debug(msg string, fields Fields) {
	std.logFields(LevelDebug, msg, e.With(fields).fields)
}

// Info logs msg with the bound fields and fields at Info level.
func (e *Entry) Info(msg string, fields Fields) {
	std.logFields(LevelInfo, msg, e.With(fields).fields)
}

// Warn logs msg with the bound fields and fields at Warn level.
func (e *Entry) Warn(msg string, fields Fields) {
	std.logFields(LevelWarn, msg, e.With(fields).fields)
}
