// Package adapter defines the feature-query contract shared by sub-adapters
// and by the fusion adapter built on top of them, plus the adapter
// configuration surface.
package adapter

import (
	"context"
	"iter"

	"qseq/internal/feature"
)

// Options are per-query hints. Cancellation travels in the context.
type Options struct {
	// Resolution is a bases-per-pixel hint; 0 means unspecified.
	Resolution float64
}

// SequenceSource returns base calls for a region.
type SequenceSource interface {
	Features(ctx context.Context, r feature.Region, opts Options) iter.Seq2[feature.SequenceFeature, error]
}

// SequenceLengths is implemented by sequence sources that know their
// reference lengths without a query.
type SequenceLengths interface {
	Len(ref string) (int, bool)
}

// ScoreSource returns scored intervals plus reference names and statistics.
type ScoreSource interface {
	RefNames(ctx context.Context, opts Options) ([]string, error)
	GlobalStats(ctx context.Context, opts Options) (feature.Stats, error)
	Features(ctx context.Context, r feature.Region, opts Options) iter.Seq2[feature.ScoreFeature, error]
}

// FeatureAdapter is the contract the fusion adapter exposes, so it can stand
// in wherever a score-like feature adapter is expected.
type FeatureAdapter interface {
	RefNames(ctx context.Context, opts Options) ([]string, error)
	GlobalStats(ctx context.Context, opts Options) (feature.Stats, error)
	Features(ctx context.Context, r feature.Region, opts Options) iter.Seq2[feature.Feature, error]
	FreeResources()
}

// Capability names an optional feature an adapter advertises.
type Capability string

const (
	HasResolution  Capability = "hasResolution"
	HasLocalStats  Capability = "hasLocalStats"
	HasGlobalStats Capability = "hasGlobalStats"
)
