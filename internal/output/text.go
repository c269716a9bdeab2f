package output

import (
	"bufio"
	"fmt"
	"io"

	"qseq/internal/feature"
)

// StreamText writes one TSV line per feature as it arrives on in.
func StreamText(w io.Writer, in <-chan feature.Feature, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		if _, err := fmt.Fprintln(bw, TSVHeader); err != nil {
			drain(in)
			return err
		}
	}
	for f := range in {
		if _, err := fmt.Fprintln(bw, FormatFeatureRowTSV(f)); err != nil {
			drain(in)
			return err
		}
	}
	return bw.Flush()
}

// StreamBedGraph writes scored features as bedGraph lines, preceded by a
// track line when name is non-empty. Features without a score are skipped.
func StreamBedGraph(w io.Writer, in <-chan feature.Feature, name string) error {
	bw := bufio.NewWriter(w)
	if name != "" {
		if _, err := fmt.Fprintf(bw, "track type=bedGraph name=%q\n", name); err != nil {
			drain(in)
			return err
		}
	}
	for f := range in {
		line, ok := FormatBedGraphRow(f)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			drain(in)
			return err
		}
	}
	return bw.Flush()
}

// drain lets the producer finish after a write error.
func drain[T any](in <-chan T) {
	for range in {
	}
}
