// Package appcore runs a fused-feature query end to end: regions through
// the pipeline, features into a writer, errors into exit codes.
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"qseq/internal/cmdutil"
	"qseq/internal/feature"
	"qseq/internal/pipeline"
	"qseq/internal/writers"
)

// Exit codes shared by the commands.
const (
	ExitOK        = 0
	ExitUsage     = 2
	ExitRuntime   = 3
	ExitCancelled = 130
)

type Options struct {
	Threads int

	Format    string
	Header    bool
	TrackName string

	Quiet           bool
	NoMatchExitCode int
}

// Run queries regions on q and writes the features to stdout.
func Run(
	parent context.Context,
	stdout, stderr io.Writer,
	o Options,
	regions []feature.Region,
	q pipeline.Querier,
) int {
	outw := bufio.NewWriter(stdout)

	thr := o.Threads
	if thr <= 0 {
		thr = runtime.NumCPU()
	}

	inCh, writeErr := writers.StartFeatureWriter(outw, o.Format, writers.Options{
		Header:    o.Header,
		TrackName: o.TrackName,
		BufSize:   thr * 64,
	})

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	total, perr := cmdutil.RunStream(ctx, pipeline.Config{Threads: thr}, regions, q,
		func(f feature.Feature) error {
			select {
			case inCh <- f:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	)

	close(inCh)

	if werr := <-writeErr; writers.IsBrokenPipe(werr) {
		return ExitOK
	} else if werr != nil {
		fmt.Fprintln(stderr, werr)
		return ExitRuntime
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return ExitOK
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return ExitRuntime
	}

	if perr != nil {
		return ErrorCode(stderr, perr)
	}
	if total == 0 {
		cmdutil.Warnf(stderr, o.Quiet, "no features in %d region(s)", len(regions))
		return o.NoMatchExitCode
	}
	return ExitOK
}

// ErrorCode reports err on stderr and maps it to an exit code.
// Cancellation is silent.
func ErrorCode(stderr io.Writer, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case writers.IsBrokenPipe(err):
		return ExitOK
	}
	fmt.Fprintln(stderr, "error:", err)
	return ExitRuntime
}

// Flush flushes w and maps the result to an exit code.
func Flush(w *bufio.Writer, stderr io.Writer, code int) int {
	if e := w.Flush(); writers.IsBrokenPipe(e) {
		return ExitOK
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return ExitRuntime
	}
	return code
}
