package bedgraph

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sort"
	"sync"

	"qseq/internal/adapter"
	"qseq/internal/feature"
	"qseq/internal/monitoring"
	"qseq/internal/scorestats"
	"qseq/internal/sources/fileio"
)

// track holds one reference's intervals sorted by start. maxEnd[i] is the
// largest End among intervals[:i+1], which keeps overlap lookup a binary
// search even when intervals overlap.
type track struct {
	intervals []feature.ScoreFeature
	maxEnd    []int
}

// Source is a read-only, in-memory score source. It is safe for concurrent
// queries.
type Source struct {
	order  []string
	tracks map[string]*track

	statsOnce sync.Once
	stats     feature.Stats
}

var _ adapter.ScoreSource = (*Source)(nil)

// New builds a Source from parsed entries.
func New(entries []Entry) *Source {
	s := &Source{tracks: map[string]*track{}}
	for _, e := range entries {
		t, ok := s.tracks[e.RefName]
		if !ok {
			t = &track{}
			s.tracks[e.RefName] = t
			s.order = append(s.order, e.RefName)
		}
		t.intervals = append(t.intervals, e.ScoreFeature)
	}
	for _, t := range s.tracks {
		slices.SortStableFunc(t.intervals, func(a, b feature.ScoreFeature) int {
			return cmp.Compare(a.Start, b.Start)
		})
		t.maxEnd = make([]int, len(t.intervals))
		m := 0
		for i, iv := range t.intervals {
			m = max(m, iv.End)
			t.maxEnd[i] = m
		}
	}
	return s
}

// Open parses a (possibly gzipped) bedGraph file.
func Open(ctx context.Context, path string) (*Source, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var entries []Entry
	if err := ScanCtx(ctx, rc, func(e Entry) error {
		entries = append(entries, e)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := New(entries)
	monitoring.Logf("bedgraph: loaded %d intervals on %d references from %s", len(entries), len(s.order), path)
	return s, nil
}

// RefNames lists references in order of first appearance.
func (s *Source) RefNames(context.Context, adapter.Options) ([]string, error) {
	return append([]string(nil), s.order...), nil
}

// GlobalStats summarizes every interval; computed once and cached.
func (s *Source) GlobalStats(context.Context, adapter.Options) (feature.Stats, error) {
	s.statsOnce.Do(func() {
		var all []feature.ScoreFeature
		for _, ref := range s.order {
			all = append(all, s.tracks[ref].intervals...)
		}
		s.stats = scorestats.Compute(all, nil)
	})
	return s.stats, nil
}

// Features yields intervals overlapping r in start order, unclipped.
func (s *Source) Features(ctx context.Context, r feature.Region, _ adapter.Options) iter.Seq2[feature.ScoreFeature, error] {
	return func(yield func(feature.ScoreFeature, error) bool) {
		t, ok := s.tracks[r.RefName]
		if !ok {
			return
		}
		i := sort.SearchInts(t.maxEnd, r.Start+1)
		for ; i < len(t.intervals); i++ {
			iv := t.intervals[i]
			if iv.Start >= r.End {
				return
			}
			if iv.End <= r.Start {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if !yield(iv, nil) {
				return
			}
		}
	}
}
