package writers

import (
	"encoding/json"
	"io"

	"qseq/internal/feature"
	"qseq/internal/jsonlutil"
	"qseq/internal/output"
)

// StartFeatureJSONLWriter streams each feature as one JSON line (v1).
func StartFeatureJSONLWriter(out io.Writer, opt Options) (chan<- feature.Feature, <-chan error) {
	return jsonlutil.Start[feature.Feature](out, opt.BufSize,
		func(enc *json.Encoder, f feature.Feature) error {
			return enc.Encode(output.ToAPIFeature(f))
		},
		IsBrokenPipe,
	)
}
