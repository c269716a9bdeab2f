package sqlitescore

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"sync"

	"qseq/internal/adapter"
	"qseq/internal/feature"
	"qseq/internal/monitoring"
	"qseq/internal/scorestats"
)

// Source serves one track of a Store as a score source. Queries run
// directly against the database; database/sql makes it safe for concurrent
// use.
type Source struct {
	store *Store
	track Track
	owned bool

	mu       sync.Mutex
	stats    feature.Stats
	hasStats bool
}

var _ adapter.ScoreSource = (*Source)(nil)

// NewSource serves track from an already open store. Close does not close
// the store.
func (s *Store) NewSource(ctx context.Context, track string) (*Source, error) {
	t, err := s.TrackByName(ctx, track)
	if err != nil {
		return nil, err
	}
	return &Source{store: s, track: t}, nil
}

// OpenSource opens the database at path and serves track from it. The
// database must exist; Close releases it.
func OpenSource(ctx context.Context, path, track string) (*Source, error) {
	st, err := OpenExisting(path)
	if err != nil {
		return nil, err
	}
	src, err := st.NewSource(ctx, track)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.owned = true
	monitoring.Logf("sqlitescore: serving track %q (%s) from %s", src.track.Name, src.track.ID, path)
	return src, nil
}

// Track returns the served track.
func (s *Source) Track() Track { return s.track }

// Close closes the store if OpenSource opened it.
func (s *Source) Close() error {
	if s.owned {
		return s.store.Close()
	}
	return nil
}

// RefNames lists the track's references in name order.
func (s *Source) RefNames(ctx context.Context, _ adapter.Options) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT DISTINCT ref_name FROM scores WHERE track_id = ? ORDER BY ref_name`, s.track.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// GlobalStats aggregates the whole track. Zero-width intervals cover no
// bases and are not counted. A successful result is cached.
func (s *Source) GlobalStats(ctx context.Context, _ adapter.Options) (feature.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasStats {
		return s.stats, nil
	}
	var (
		minScore, maxScore, sum, sumSq sql.NullFloat64
		count, bases                   sql.NullInt64
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT MIN(score), MAX(score),
		       SUM(score * (end_pos - start_pos)),
		       SUM(score * score * (end_pos - start_pos)),
		       COUNT(*), SUM(end_pos - start_pos)
		FROM scores WHERE track_id = ? AND end_pos > start_pos`, s.track.ID,
	).Scan(&minScore, &maxScore, &sum, &sumSq, &count, &bases)
	if err != nil {
		return feature.Stats{}, fmt.Errorf("global stats for %q: %w", s.track.Name, err)
	}
	s.stats = scorestats.FromSums(minScore.Float64, maxScore.Float64, sum.Float64, sumSq.Float64,
		int(count.Int64), int(bases.Int64))
	s.hasStats = true
	return s.stats, nil
}

// Features yields intervals overlapping r in start order, unclipped.
// Cancelling ctx ends the sequence without an error.
func (s *Source) Features(ctx context.Context, r feature.Region, _ adapter.Options) iter.Seq2[feature.ScoreFeature, error] {
	return func(yield func(feature.ScoreFeature, error) bool) {
		rows, err := s.store.db.QueryContext(ctx, `
			SELECT start_pos, end_pos, score FROM scores
			WHERE track_id = ? AND ref_name = ? AND start_pos < ? AND end_pos > ?
			ORDER BY start_pos, rowid`,
			s.track.ID, r.RefName, r.End, r.Start)
		if err != nil {
			if ctx.Err() == nil {
				yield(feature.ScoreFeature{}, err)
			}
			return
		}
		defer rows.Close()
		for rows.Next() {
			var f feature.ScoreFeature
			if err := rows.Scan(&f.Start, &f.End, &f.Score); err != nil {
				yield(feature.ScoreFeature{}, err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil && ctx.Err() == nil {
			yield(feature.ScoreFeature{}, err)
		}
	}
}
