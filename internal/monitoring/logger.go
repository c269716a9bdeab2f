// Package monitoring holds the package-level diagnostic logger used by the
// adapter and its sources.
package monitoring

import "log"

// Logf is the diagnostic logger. It defaults to log.Printf; SetLogger
// redirects or mutes it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
