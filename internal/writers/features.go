package writers

import (
	"io"

	"qseq/internal/feature"
	"qseq/internal/output"
)

func init() {
	RegisterFeature("text", startText)
	RegisterFeature("bedgraph", startBedGraph)
	RegisterFeature("json", startJSON)
	RegisterFeature("jsonl", StartFeatureJSONLWriter)
}

func startText(out io.Writer, opt Options) (chan<- feature.Feature, <-chan error) {
	return spawn(opt.BufSize, func(in <-chan feature.Feature) error {
		return output.StreamText(out, in, opt.Header)
	})
}

func startBedGraph(out io.Writer, opt Options) (chan<- feature.Feature, <-chan error) {
	return spawn(opt.BufSize, func(in <-chan feature.Feature) error {
		return output.StreamBedGraph(out, in, opt.TrackName)
	})
}

// startJSON buffers everything into one array.
func startJSON(out io.Writer, opt Options) (chan<- feature.Feature, <-chan error) {
	return spawn(opt.BufSize, func(in <-chan feature.Feature) error {
		var buf []feature.Feature
		for f := range in {
			buf = append(buf, f)
		}
		return output.WriteJSON(out, buf)
	})
}

func spawn(bufSize int, run func(<-chan feature.Feature) error) (chan<- feature.Feature, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan feature.Feature, bufSize)
	errCh := make(chan error, 1)
	go func() {
		err := run(in)
		if IsBrokenPipe(err) {
			err = nil
		}
		errCh <- err
	}()
	return in, errCh
}
