// Package logging provides the leveled logger used across the keyboard
// core. Severities follow the error-handling design: Bug for invariant
// violations, Warning for non-fatal transient conditions, Surprise for
// unexpected but plausible environment conditions.
package logging

import (
	"fmt"
	"io"
	"os"
)

// Severity orders the log levels from least to most alarming.
type Severity int

const (
	Debug Severity = iota
	Surprise
	Warning
	Bug
)

func (s Severity) prefix() string {
	switch s {
	case Debug:
		return "[DEBUG]"
	case Surprise:
		return "[SURPRISE]"
	case Warning:
		return "[WARN]"
	case Bug:
		return "[BUG]"
	default:
		return "[LOG]"
	}
}

// Logger writes bracket-prefixed lines to stdout/stderr. Debug output is
// gated by debugEnabled; Warning/Bug/Surprise always print, matching the
// reducer's debug-mode toggle which only controls verbosity, not whether
// faults get reported.
type Logger struct {
	debugEnabled bool
	out          io.Writer
	errOut       io.Writer
}

// New creates a Logger. debugEnabled controls whether Debug() emits
// anything; it is flipped at runtime by the Debug DBus service.
func New(debugEnabled bool) *Logger {
	return &Logger{
		debugEnabled: debugEnabled,
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
}

// SetDebugEnabled toggles debug verbosity. Called by the loop kernel when
// it folds a Debug(Enable|Disable) event.
func (l *Logger) SetDebugEnabled(enabled bool) {
	l.debugEnabled = enabled
}

// DebugEnabled reports the current debug verbosity.
func (l *Logger) DebugEnabled() bool {
	return l.debugEnabled
}

// Debug logs a debug message when debug verbosity is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.debugEnabled {
		fmt.Fprintf(l.out, Debug.prefix()+" "+format+"\n", args...)
	}
}

// Bug logs an invariant violation. The caller is expected to continue with
// the previous, last-known-good state rather than propagate the error.
func (l *Logger) Bug(format string, args ...interface{}) {
	fmt.Fprintf(l.errOut, Bug.prefix()+" "+format+"\n", args...)
}

// Warning logs a non-fatal transient condition, such as a send to a
// channel whose receiver has gone away.
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.errOut, Warning.prefix()+" "+format+"\n", args...)
}

// Surprise logs an unexpected but plausible environment condition, such
// as losing the DBus connection used to track the screensaver.
func (l *Logger) Surprise(format string, args ...interface{}) {
	fmt.Fprintf(l.errOut, Surprise.prefix()+" "+format+"\n", args...)
}
