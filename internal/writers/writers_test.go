package writers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qseq/internal/feature"
	"qseq/internal/output"
	"qseq/pkg/api"
)

var sample = []feature.Feature{
	{ID: "chr1 10-11", RefName: "chr1", Start: 10, End: 11, Base: 'A', Score: 1.5, HasScore: true},
	{ID: "chr1 11-12", RefName: "chr1", Start: 11, End: 12, Base: 'C'},
}

func run(t *testing.T, w io.Writer, format string, opt Options) error {
	t.Helper()
	in, done := StartFeatureWriter(w, format, opt)
	for _, f := range sample {
		in <- f
	}
	close(in)
	return <-done
}

func TestFeatureFormats(t *testing.T) {
	assert.Equal(t, []string{"bedgraph", "json", "jsonl", "text"}, FeatureFormats())
}

func TestUnknownFeatureFormatError(t *testing.T) {
	err := run(t, io.Discard, "nope-format", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown feature format")
}

func TestTextWriter(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, run(t, &b, "text", Options{Header: true}))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, output.TSVHeader, lines[0])
	assert.Equal(t, "chr1\t11\t12\tC\t.", lines[2])
}

func TestJSONLWriter(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, run(t, &b, "jsonl", Options{}))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	var f api.FeatureV1
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &f))
	assert.Equal(t, "C", f.Base)
	assert.Nil(t, f.Score)
}

func TestJSONWriter(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, run(t, &b, "json", Options{}))
	var list []api.FeatureV1
	require.NoError(t, json.Unmarshal(b.Bytes(), &list))
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Score)
	assert.Equal(t, 1.5, *list[0].Score)
}

func TestBedGraphWriterSkipsUnscored(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, run(t, &b, "bedgraph", Options{}))
	assert.Equal(t, "chr1\t10\t11\t1.5\n", b.String())
}

type pipeWriter struct{}

func (pipeWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("write: %w", syscall.EPIPE) }

func TestBrokenPipeIsNotAnError(t *testing.T) {
	for _, format := range FeatureFormats() {
		t.Run(format, func(t *testing.T) {
			assert.NoError(t, run(t, pipeWriter{}, format, Options{Header: true}))
		})
	}
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, IsBrokenPipe(io.ErrClosedPipe))
	assert.True(t, IsBrokenPipe(fmt.Errorf("x: %w", syscall.EPIPE)))
	assert.False(t, IsBrokenPipe(nil))
	assert.False(t, IsBrokenPipe(io.EOF))
}

func TestWriteStats(t *testing.T) {
	r := feature.Region{RefName: "chr1", Start: 0, End: 10}
	global := StatsRow{Stats: feature.Stats{ScoreMax: 2, FeatureCount: 1, BasesCovered: 5}}
	local := StatsRow{Region: &r, Stats: feature.Stats{ScoreMax: 1, FeatureCount: 1, BasesCovered: 3}}

	var b bytes.Buffer
	require.NoError(t, WriteStats("json", &b, []StatsRow{global}, false))
	var g api.StatsV1
	require.NoError(t, json.Unmarshal(b.Bytes(), &g))
	assert.Equal(t, 5, g.BasesCovered)

	b.Reset()
	require.NoError(t, WriteStats("json", &b, []StatsRow{local}, false))
	var list []api.RegionStatsV1
	require.NoError(t, json.Unmarshal(b.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "chr1:0-10", list[0].Region)

	b.Reset()
	require.NoError(t, WriteStats("text", &b, []StatsRow{global, local}, true))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "*\t1\t5\t"))
	assert.True(t, strings.HasPrefix(lines[2], "chr1:0-10\t"))

	b.Reset()
	require.NoError(t, WriteStats("jsonl", &b, []StatsRow{local, local}, false))
	assert.Equal(t, 2, strings.Count(b.String(), "\n"))

	assert.Error(t, WriteStats("xml", &b, nil, false))
}

func TestWriteRefNames(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteRefNames("text", &b, []string{"chr1", "chr2"}))
	assert.Equal(t, "chr1\nchr2\n", b.String())

	b.Reset()
	require.NoError(t, WriteRefNames("jsonl", &b, nil))
	assert.Equal(t, "{\"ref_names\":[]}\n", b.String())

	b.Reset()
	require.NoError(t, WriteRefNames("json", &b, []string{"chr1"}))
	var v api.RefNamesV1
	require.NoError(t, json.Unmarshal(b.Bytes(), &v))
	assert.Equal(t, []string{"chr1"}, v.RefNames)

	assert.Error(t, WriteRefNames("xml", &b, nil))
}
