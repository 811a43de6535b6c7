// Package monitoring carries the shared diagnostic logger the scanlink
// library packages write through, so the daemon and the tests can redirect
// or silence them in one place.
package monitoring

import (
	"log"
	"os"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or
// mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf carries verbose per-revolution diagnostics. It is a no-op unless
// SCANLINK_DEBUG is set in the environment or SetDebugLogger installs a sink.
var Debugf func(format string, v ...interface{}) = defaultDebugf()

func defaultDebugf() func(format string, v ...interface{}) {
	if os.Getenv("SCANLINK_DEBUG") != "" {
		return log.Printf
	}
	return func(string, ...interface{}) {}
}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces the debug logger. Passing nil installs a no-op
// logger regardless of SCANLINK_DEBUG.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}
