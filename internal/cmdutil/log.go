// Package cmdutil holds helpers shared by the command entry points.
package cmdutil

import (
	"fmt"
	"io"
)

// Warnf prints a WARN line to dst unless quiet.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(dst, "WARN: "+format+"\n", a...)
}
