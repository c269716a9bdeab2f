package pipeline

import (
	"context"
	"iter"

	"qseq/internal/adapter"
	"qseq/internal/feature"
)

// Querier is the minimal capability the pipeline needs.
// The fusion adapter (and fakes in tests) satisfy it.
type Querier interface {
	Features(ctx context.Context, r feature.Region, opts adapter.Options) iter.Seq2[feature.Feature, error]
}
