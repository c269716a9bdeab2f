package sqlitescore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qseq/internal/adapter"
	"qseq/internal/feature"
	"qseq/internal/monitoring"
	"qseq/internal/scorestats"
	"qseq/internal/stream"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.db")
	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.MigrateUp())
	return st, path
}

var sampleScores = []struct {
	ref string
	f   feature.ScoreFeature
}{
	{"chr1", feature.ScoreFeature{Start: 20, End: 30, Score: -2}},
	{"chr1", feature.ScoreFeature{Start: 0, End: 10, Score: 1.5}},
	{"chr2", feature.ScoreFeature{Start: 5, End: 6, Score: 7}},
}

func loadTrack(t *testing.T, st *Store, name string) Track {
	t.Helper()
	ctx := context.Background()
	tr, err := st.CreateTrack(ctx, name, "sample.bedgraph")
	require.NoError(t, err)
	b, err := st.BeginBatch(ctx, tr)
	require.NoError(t, err)
	for _, s := range sampleScores {
		require.NoError(t, b.Add(ctx, s.ref, s.f))
	}
	assert.Equal(t, len(sampleScores), b.Len())
	require.NoError(t, b.Commit())
	return tr
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	st, _ := newStore(t)
	require.NoError(t, st.MigrateUp())
	v, dirty, err := st.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
}

func TestTracks(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	tr := loadTrack(t, st, "cov")
	_, err := uuid.Parse(tr.ID)
	assert.NoError(t, err)

	_, err = st.CreateTrack(ctx, "cov", "")
	assert.ErrorIs(t, err, ErrTrackExists)

	_, err = st.CreateTrack(ctx, "another", "")
	require.NoError(t, err)

	all, err := st.Tracks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "another", all[0].Name)
	assert.Equal(t, "cov", all[1].Name)
	assert.Equal(t, "sample.bedgraph", all[1].Source)
	assert.False(t, all[1].CreatedAt.IsZero())

	got, err := st.TrackByName(ctx, "cov")
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)

	require.NoError(t, st.DeleteTrack(ctx, "cov"))
	_, err = st.TrackByName(ctx, "cov")
	assert.ErrorIs(t, err, ErrTrackNotFound)
	assert.ErrorIs(t, st.DeleteTrack(ctx, "cov"), ErrTrackNotFound)
}

func TestBatchRollback(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()
	tr, err := st.CreateTrack(ctx, "cov", "")
	require.NoError(t, err)
	b, err := st.BeginBatch(ctx, tr)
	require.NoError(t, err)
	require.NoError(t, b.Add(ctx, "chr1", feature.ScoreFeature{Start: 0, End: 5, Score: 1}))
	require.NoError(t, b.Rollback())

	src, err := st.NewSource(ctx, "cov")
	require.NoError(t, err)
	refs, err := src.RefNames(ctx, adapter.Options{})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestSourceFeatures(t *testing.T) {
	st, path := newStore(t)
	loadTrack(t, st, "cov")
	ctx := context.Background()

	src, err := OpenSource(ctx, path, "cov")
	require.NoError(t, err)
	defer src.Close()

	tests := []struct {
		name string
		r    feature.Region
		want []feature.ScoreFeature
	}{
		{"spans both", feature.Region{RefName: "chr1", Start: 5, End: 25}, []feature.ScoreFeature{
			{Start: 0, End: 10, Score: 1.5}, {Start: 20, End: 30, Score: -2},
		}},
		{"gap", feature.Region{RefName: "chr1", Start: 10, End: 20}, nil},
		{"touching end is excluded", feature.Region{RefName: "chr1", Start: 30, End: 40}, nil},
		{"other ref", feature.Region{RefName: "chr2", Start: 0, End: 100}, []feature.ScoreFeature{
			{Start: 5, End: 6, Score: 7},
		}},
		{"unknown ref", feature.Region{RefName: "chrX", Start: 0, End: 100}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stream.Collect(ctx, src.Features(ctx, tt.r, adapter.Options{}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceRefNamesAndStats(t *testing.T) {
	st, _ := newStore(t)
	loadTrack(t, st, "cov")
	ctx := context.Background()

	src, err := st.NewSource(ctx, "cov")
	require.NoError(t, err)
	require.NoError(t, src.Close()) // not owned; store stays open

	refs, err := src.RefNames(ctx, adapter.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "chr2"}, refs)

	got, err := src.GlobalStats(ctx, adapter.Options{})
	require.NoError(t, err)

	fs := make([]feature.ScoreFeature, 0, len(sampleScores))
	for _, s := range sampleScores {
		fs = append(fs, s.f)
	}
	want := scorestats.Compute(fs, nil)
	assert.Equal(t, want.FeatureCount, got.FeatureCount)
	assert.Equal(t, want.BasesCovered, got.BasesCovered)
	assert.Equal(t, want.ScoreMin, got.ScoreMin)
	assert.Equal(t, want.ScoreMax, got.ScoreMax)
	assert.InDelta(t, want.ScoreSum, got.ScoreSum, 1e-9)
	assert.InDelta(t, want.ScoreMean, got.ScoreMean, 1e-9)
	assert.InDelta(t, want.ScoreStdDev, got.ScoreStdDev, 1e-9)
}

func TestGlobalStatsSkipsZeroWidth(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()
	tr, err := st.CreateTrack(ctx, "cov", "")
	require.NoError(t, err)
	fs := []feature.ScoreFeature{
		{Start: 0, End: 4, Score: 1},
		{Start: 6, End: 6, Score: 100},
		{Start: 8, End: 10, Score: 3},
	}
	b, err := st.BeginBatch(ctx, tr)
	require.NoError(t, err)
	for _, f := range fs {
		require.NoError(t, b.Add(ctx, "chr1", f))
	}
	require.NoError(t, b.Commit())

	src, err := st.NewSource(ctx, "cov")
	require.NoError(t, err)
	got, err := src.GlobalStats(ctx, adapter.Options{})
	require.NoError(t, err)

	want := scorestats.Compute(fs, nil)
	assert.Equal(t, 2, got.FeatureCount)
	assert.Equal(t, want.FeatureCount, got.FeatureCount)
	assert.Equal(t, want.BasesCovered, got.BasesCovered)
	assert.Equal(t, want.ScoreMax, got.ScoreMax)
	assert.InDelta(t, want.ScoreMean, got.ScoreMean, 1e-9)
}

func TestOpenSourceErrors(t *testing.T) {
	ctx := context.Background()
	_, err := OpenSource(ctx, filepath.Join(t.TempDir(), "missing.db"), "cov")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, path := newStore(t)
	_, err = OpenSource(ctx, path, "nope")
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestSourceFeaturesCancelled(t *testing.T) {
	st, _ := newStore(t)
	loadTrack(t, st, "cov")
	src, err := st.NewSource(context.Background(), "cov")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range src.Features(ctx, feature.Region{RefName: "chr1", Start: 0, End: 100}, adapter.Options{}) {
		assert.NoError(t, err)
	}
}
