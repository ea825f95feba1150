// Package logger provides leveled console logging for pathscout.
// Warnings are always printed; info and debug output is gated by the
// --verbose and --debug flags so an analysis stays quiet by default.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level controls how much is printed.
type Level int

// Available levels, from quietest to noisiest.
const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

var (
	mu     sync.RWMutex
	level  = LevelWarn
	output io.Writer = os.Stderr
	now              = time.Now
)

// SetLevel sets the output level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// CurrentLevel returns the active output level.
func CurrentLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose is shorthand for SetLevel(LevelInfo) or SetLevel(LevelWarn).
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelInfo)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose returns true if info messages are printed.
func IsVerbose() bool {
	return CurrentLevel() >= LevelInfo
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(min Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if level >= min {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message at debug level.
func Debug(format string, args ...any) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Info prints a message at info level.
func Info(format string, args ...any) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn prints a warning. Warnings are always shown.
func Warn(format string, args ...any) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Section prints a section header at info level.
func Section(name string) {
	logf(LevelInfo, "", "\n=== %s ===", name)
}

// Stage prints a stage header and returns a func that reports the elapsed
// time when the stage finishes.
//
//	done := logger.Stage("enrichment")
//	defer done()
func Stage(name string) func() {
	Section(name)
	start := now()
	return func() {
		logf(LevelInfo, "[INFO] ", "%s finished in %s", name, now().Sub(start).Round(time.Millisecond))
	}
}
