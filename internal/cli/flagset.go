package cli

import (
	"flag"
	"io"
)

// NewFlagSet returns a ContinueOnError FlagSet that prints nothing while
// parsing; the commands report parse errors and -h themselves.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}
