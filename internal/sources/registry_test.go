package sources

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qseq/internal/adapter"
	"qseq/internal/feature"
	"qseq/internal/fusion"
	"qseq/internal/monitoring"
	"qseq/internal/sources/sqlitescore"
	"qseq/internal/stream"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestParseSpec(t *testing.T) {
	s, err := ParseSpec(json.RawMessage(`{"type":"FastaAdapter","path":"g.fa"}`), "/data")
	require.NoError(t, err)
	assert.Equal(t, Spec{Type: TypeFasta, Path: filepath.Join("/data", "g.fa")}, s)

	s, err = ParseSpec(json.RawMessage(`{"type":"FastaAdapter","path":"/abs/g.fa"}`), "/data")
	require.NoError(t, err)
	assert.Equal(t, "/abs/g.fa", s.Path)

	for _, bad := range []string{
		`{"path":"x"}`,
		`{"type":"FastaAdapter"}`,
		`{"type":"FastaAdapter","path":"x","extra":1}`,
		`not json`,
	} {
		_, err := ParseSpec(json.RawMessage(bad), "")
		assert.Error(t, err, bad)
	}
}

func TestOpenUnknownType(t *testing.T) {
	_, err := Open(context.Background(), json.RawMessage(`{"type":"BigWigAdapter","path":"x"}`), "")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestTypes(t *testing.T) {
	assert.Subset(t, Types(), []string{TypeBedGraph, TypeFasta, TypeSQLiteScore})
}

func TestSQLiteRequiresTrack(t *testing.T) {
	_, err := Open(context.Background(), json.RawMessage(`{"type":"SQLiteScoreAdapter","path":"x.db"}`), "")
	assert.ErrorContains(t, err, "track is required")
}

func TestResolverEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g.fa", ">chr1\nNNNNNNNNNNACGTACGT\n")
	writeFile(t, dir, "cov.bedGraph", "chr1\t10\t12\t1.5\n")
	cfgPath := writeFile(t, dir, "adapter.json", `{
		"sequenceAdapter": {"type": "FastaAdapter", "path": "g.fa"},
		"wiggleAdapter": {"type": "BedGraphAdapter", "path": "cov.bedGraph"}
	}`)

	cfg, err := adapter.LoadConfig(cfgPath)
	require.NoError(t, err)

	ctx := context.Background()
	res := NewResolver(ctx, dir)
	defer res.Close()

	a, err := fusion.FromConfig(cfg, res.Resolve)
	require.NoError(t, err)

	got, err := stream.Collect(ctx, a.Features(ctx, feature.Region{RefName: "chr1", Start: 10, End: 13}, adapter.Options{}))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, byte('A'), got[0].Base)
	assert.True(t, got[1].HasScore)
	assert.False(t, got[2].HasScore)
	assert.Equal(t, byte('G'), got[2].Base)
}

func TestResolverClosesSQLiteSources(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "scores.db")
	ctx := context.Background()

	st, err := sqlitescore.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.MigrateUp())
	tr, err := st.CreateTrack(ctx, "cov", "")
	require.NoError(t, err)
	b, err := st.BeginBatch(ctx, tr)
	require.NoError(t, err)
	require.NoError(t, b.Add(ctx, "chr1", feature.ScoreFeature{Start: 0, End: 5, Score: 2}))
	require.NoError(t, b.Commit())
	require.NoError(t, st.Close())

	res := NewResolver(ctx, dir)
	v, err := res.Resolve(json.RawMessage(`{"type":"SQLiteScoreAdapter","path":"scores.db","track":"cov"}`))
	require.NoError(t, err)
	src, ok := v.(adapter.ScoreSource)
	require.True(t, ok)

	refs, err := src.RefNames(ctx, adapter.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1"}, refs)

	require.NoError(t, res.Close())
	_, err = src.RefNames(ctx, adapter.Options{})
	assert.Error(t, err, "store should be closed")
}

func TestRegisterOverrides(t *testing.T) {
	const typ = "TestConstAdapter"
	Register(typ, func(_ context.Context, s Spec) (any, error) { return s.Path, nil })
	t.Cleanup(func() {
		mu.Lock()
		delete(openers, typ)
		mu.Unlock()
	})
	v, err := Open(context.Background(), json.RawMessage(`{"type":"TestConstAdapter","path":"p"}`), "")
	require.NoError(t, err)
	assert.Equal(t, "p", v)
}
