package writers

import (
	"fmt"
	"io"
	"sort"

	"qseq/internal/feature"
)

// Options tune a feature writer.
type Options struct {
	Header    bool   // text: print the TSV header
	TrackName string // bedgraph: emit a track line when set
	BufSize   int
}

// FeatureWriterFunc starts a writer goroutine. Closing the returned channel
// finishes the output; the error channel then receives exactly one value.
type FeatureWriterFunc func(out io.Writer, opt Options) (chan<- feature.Feature, <-chan error)

// StatsWriterFunc writes labelled statistics in one go.
type StatsWriterFunc func(out io.Writer, rows []StatsRow, header bool) error

// Writer registries (format → handler). Registered in init() blocks of the
// format files; registering again replaces the handler.
var (
	FeatureWriters = map[string]FeatureWriterFunc{}
	StatsWriters   = map[string]StatsWriterFunc{}
)

func RegisterFeature(format string, fn FeatureWriterFunc) { FeatureWriters[format] = fn }
func RegisterStats(format string, fn StatsWriterFunc)     { StatsWriters[format] = fn }

// FeatureFormats lists the registered feature formats, sorted.
func FeatureFormats() []string {
	out := make([]string, 0, len(FeatureWriters))
	for f := range FeatureWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// StartFeatureWriter dispatches to the registered writer for format. An
// unknown format still returns a usable pair: the channel is drained and the
// error reported on completion.
func StartFeatureWriter(out io.Writer, format string, opt Options) (chan<- feature.Feature, <-chan error) {
	if opt.BufSize <= 0 {
		opt.BufSize = 64
	}
	fn, ok := FeatureWriters[format]
	if !ok {
		in := make(chan feature.Feature, opt.BufSize)
		errCh := make(chan error, 1)
		go func() {
			for range in {
			}
			errCh <- fmt.Errorf("unknown feature format %q (no writer registered)", format)
		}()
		return in, errCh
	}
	return fn(out, opt)
}

// WriteStats dispatches to the registered stats writer for format.
func WriteStats(format string, out io.Writer, rows []StatsRow, header bool) error {
	fn, ok := StatsWriters[format]
	if !ok {
		return fmt.Errorf("unknown stats format %q (no writer registered)", format)
	}
	return fn(out, rows, header)
}
