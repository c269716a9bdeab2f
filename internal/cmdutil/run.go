package cmdutil

import (
	"context"

	"qseq/internal/feature"
	"qseq/internal/pipeline"
)

// RunStream runs the region pipeline and streams every feature via send, in
// region order. It returns the number of features sent and the first error
// encountered; features a region yielded before its error are sent.
func RunStream(
	ctx context.Context,
	cfg pipeline.Config,
	regions []feature.Region,
	q pipeline.Querier,
	send func(feature.Feature) error,
) (int, error) {
	total := 0
	err := pipeline.ForEachRegion(ctx, cfg, regions, q, func(_ int, f feature.Feature) error {
		if err := send(f); err != nil {
			return err
		}
		total++
		return nil
	})
	return total, err
}
