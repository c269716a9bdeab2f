// Package fusion pairs a score source with a sequence source so that each
// base of a small region carries both its base call and its score. Large
// regions fall back to the raw score stream.
//
// The package is domain-only: it never imports app, cli, writers or the
// concrete sources.
package fusion

import (
	"context"
	"fmt"
	"iter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"qseq/internal/adapter"
	"qseq/internal/feature"
	"qseq/internal/monitoring"
	"qseq/internal/scorestats"
	"qseq/internal/stream"
)

var tracer = otel.Tracer("qseq/internal/fusion")

// Strategy is the per-query choice between per-base zipping and forwarding.
type Strategy string

const (
	StrategyZip         Strategy = "zip"
	StrategyPassThrough Strategy = "pass-through"
)

// Adapter is the fusion adapter. It keeps no per-query state; the two
// sources are shared by all concurrent queries and must tolerate that.
type Adapter struct {
	seq   adapter.SequenceSource
	score adapter.ScoreSource

	threshold       int
	clipPassThrough bool
}

var _ adapter.FeatureAdapter = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithThreshold sets the zip/pass-through cutoff in bases. n <= 0 keeps the
// current value.
func WithThreshold(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.threshold = n
		}
	}
}

// WithClipPassThrough clips pass-through features to the queried region.
func WithClipPassThrough(clip bool) Option {
	return func(a *Adapter) { a.clipPassThrough = clip }
}

// New builds an Adapter from its two sources. Either may be nil; queries
// that need a missing source fail with a *MissingSubAdapterError.
func New(seq adapter.SequenceSource, score adapter.ScoreSource, opts ...Option) *Adapter {
	a := &Adapter{seq: seq, score: score, threshold: adapter.DefaultThreshold}
	for _, o := range opts {
		o(a)
	}
	return a
}

// FromConfig resolves the configured sub-adapters and builds an Adapter.
// A sub-config is only resolved when present and resolve is non-nil;
// otherwise that side stays unset.
func FromConfig(cfg adapter.Config, resolve adapter.ResolveFunc, opts ...Option) (*Adapter, error) {
	var (
		seq   adapter.SequenceSource
		score adapter.ScoreSource
	)
	if cfg.HasSequenceAdapter() && resolve != nil {
		v, err := resolve(cfg.SequenceAdapter)
		if err != nil {
			return nil, fmt.Errorf("resolve sequenceAdapter: %w", err)
		}
		s, ok := v.(adapter.SequenceSource)
		if !ok {
			return nil, fmt.Errorf("sequenceAdapter: %T does not serve sequence features", v)
		}
		seq = s
	}
	if cfg.HasWiggleAdapter() && resolve != nil {
		v, err := resolve(cfg.WiggleAdapter)
		if err != nil {
			return nil, fmt.Errorf("resolve wiggleAdapter: %w", err)
		}
		s, ok := v.(adapter.ScoreSource)
		if !ok {
			return nil, fmt.Errorf("wiggleAdapter: %T does not serve score features", v)
		}
		score = s
	}
	all := append([]Option{
		WithThreshold(cfg.Threshold),
		WithClipPassThrough(cfg.ClipPassThrough),
	}, opts...)
	return New(seq, score, all...), nil
}

// Threshold returns the zip/pass-through cutoff in bases.
func (a *Adapter) Threshold() int { return a.threshold }

// SequenceLen returns the length of ref on the sequence source. ok is false
// when the reference is unknown or the source cannot tell without a query.
func (a *Adapter) SequenceLen(ref string) (int, bool) {
	l, ok := a.seq.(adapter.SequenceLengths)
	if !ok {
		return 0, false
	}
	return l.Len(ref)
}

// StrategyFor reports which strategy a query over r would use.
func (a *Adapter) StrategyFor(r feature.Region) Strategy {
	if r.Len() < a.threshold {
		return StrategyZip
	}
	return StrategyPassThrough
}

// Capabilities are advertised whether or not the sources are configured.
func (a *Adapter) Capabilities() []adapter.Capability {
	return []adapter.Capability{adapter.HasResolution, adapter.HasLocalStats, adapter.HasGlobalStats}
}

// RefNames lists the score source's reference names.
func (a *Adapter) RefNames(ctx context.Context, opts adapter.Options) ([]string, error) {
	if a.score == nil {
		return nil, missing(SideScore)
	}
	return a.score.RefNames(ctx, opts)
}

// GlobalStats returns the score source's global statistics.
func (a *Adapter) GlobalStats(ctx context.Context, opts adapter.Options) (feature.Stats, error) {
	if a.score == nil {
		return feature.Stats{}, missing(SideScore)
	}
	return a.score.GlobalStats(ctx, opts)
}

// RegionStats summarizes the score features of r, clipped to r.
func (a *Adapter) RegionStats(ctx context.Context, r feature.Region, opts adapter.Options) (feature.Stats, error) {
	if err := r.Validate(); err != nil {
		return feature.Stats{}, err
	}
	if a.score == nil {
		return feature.Stats{}, missing(SideScore)
	}
	ctx, span := tracer.Start(ctx, "fusion.RegionStats", trace.WithAttributes(regionAttrs(r)...))
	defer span.End()

	fs, err := stream.Collect(ctx, a.score.Features(ctx, r, opts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return feature.Stats{}, err
	}
	return scorestats.Compute(fs, &r), nil
}

// FreeResources is a no-op; the sources own their resources.
func (a *Adapter) FreeResources() {}

// Features returns the fused feature stream for r. Nothing runs until the
// sequence is ranged over.
//
// A yielded error ends the sequence; features yielded before it are valid.
// Cancelling ctx ends the sequence without an error.
func (a *Adapter) Features(ctx context.Context, r feature.Region, opts adapter.Options) iter.Seq2[feature.Feature, error] {
	return func(yield func(feature.Feature, error) bool) {
		strategy := a.StrategyFor(r)
		ctx, span := tracer.Start(ctx, "fusion.Features", trace.WithAttributes(
			append(regionAttrs(r), attribute.String("qseq.strategy", string(strategy)))...,
		))
		defer span.End()

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(feature.Feature{}, err)
		}

		if err := r.Validate(); err != nil {
			fail(err)
			return
		}
		if a.score == nil {
			fail(missing(SideScore))
			return
		}
		monitoring.Logf("fusion: %s %s (%d bp, threshold %d)", strategy, r, r.Len(), a.threshold)

		var err error
		if strategy == StrategyZip {
			if a.seq == nil {
				fail(missing(SideSequence))
				return
			}
			err = a.zip(ctx, r, opts, yield)
		} else {
			err = a.passThrough(ctx, r, opts, yield)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
}

// passThrough forwards the score stream as it arrives. It returns the error
// it yielded, if any.
func (a *Adapter) passThrough(ctx context.Context, r feature.Region, opts adapter.Options, yield func(feature.Feature, error) bool) error {
	for sf, err := range a.score.Features(ctx, r, opts) {
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			yield(feature.Feature{}, err)
			return err
		}
		f := feature.FromScore(r.RefName, sf)
		if a.clipPassThrough {
			start, end, ok := r.Clip(sf.Start, sf.End)
			if !ok {
				continue
			}
			f.Start, f.End, f.ID = start, end, feature.ID(r.RefName, start, end)
		}
		if !yield(f, nil) {
			return nil
		}
	}
	return nil
}

type cell struct {
	score float64
	set   bool
}

// zip drains both sources, then emits one feature per base of r in position
// order. It returns the error it yielded, if any.
func (a *Adapter) zip(ctx context.Context, r feature.Region, opts adapter.Options, yield func(feature.Feature, error) bool) error {
	if r.Len() == 0 {
		return nil
	}
	var (
		scores []feature.ScoreFeature
		seqs   []feature.SequenceFeature
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scores, err = stream.Collect(gctx, a.score.Features(gctx, r, opts))
		return err
	})
	g.Go(func() error {
		var err error
		seqs, err = stream.Collect(gctx, a.seq.Features(gctx, r.SequenceRegion(), opts))
		return err
	})
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		yield(feature.Feature{}, err)
		return err
	}

	if len(seqs) == 0 {
		err := fmt.Errorf("%w: no sequence for %s", ErrSequenceUnavailable, r.SequenceRegion())
		yield(feature.Feature{}, err)
		return err
	}
	sf := seqs[0]
	if !sf.Covers(r.Start, r.End) {
		err := fmt.Errorf("%w: sequence covers %d-%d, need %s",
			ErrSequenceUnavailable, sf.Start, sf.Start+len(sf.Seq), r.SequenceRegion())
		yield(feature.Feature{}, err)
		return err
	}

	// Overlapping score features: the later one wins.
	cells := make([]cell, r.Len())
	for _, f := range scores {
		start, end, ok := r.Clip(f.Start, f.End)
		if !ok {
			continue
		}
		for p := start; p < end; p++ {
			cells[p-r.Start] = cell{score: f.Score, set: true}
		}
	}

	for i, c := range cells {
		if ctx.Err() != nil {
			return nil
		}
		pos := r.Start + i
		f := feature.Feature{
			ID:       feature.ID(r.RefName, pos, pos+1),
			RefName:  r.RefName,
			Start:    pos,
			End:      pos + 1,
			Base:     sf.BaseAt(pos),
			Score:    c.score,
			HasScore: c.set,
		}
		if !yield(f, nil) {
			return nil
		}
	}
	return nil
}

func regionAttrs(r feature.Region) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("qseq.ref_name", r.RefName),
		attribute.Int("qseq.start", r.Start),
		attribute.Int("qseq.end", r.End),
	}
}
