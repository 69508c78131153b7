// Package monitoring centralizes diagnostic logging for followspot so every
// package logs through one swappable sink instead of calling log.Printf
// directly.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf is a second, independently-mutable sink for high-frequency
// diagnostics (e.g. one line per LOCATE sweep step) that would otherwise
// flood the primary log. It is a no-op until SetDebugLogger installs a
// sink, so production runs stay quiet by default.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces the high-frequency diagnostic logger. Passing nil
// restores the no-op default.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}
