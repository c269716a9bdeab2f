package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qseq/internal/adapter"
	"qseq/internal/feature"
	"qseq/internal/pipeline"
)

func TestWarnf(t *testing.T) {
	var b bytes.Buffer
	Warnf(&b, false, "ref %q not found", "chrX")
	assert.Equal(t, "WARN: ref \"chrX\" not found\n", b.String())

	b.Reset()
	Warnf(&b, true, "hidden")
	assert.Empty(t, b.String())
}

type perBase struct{}

func (perBase) Features(_ context.Context, r feature.Region, _ adapter.Options) iter.Seq2[feature.Feature, error] {
	return func(yield func(feature.Feature, error) bool) {
		for p := r.Start; p < r.End; p++ {
			if !yield(feature.Feature{RefName: r.RefName, Start: p, End: p + 1}, nil) {
				return
			}
		}
	}
}

func TestRunStream(t *testing.T) {
	regions := []feature.Region{{RefName: "a", Start: 0, End: 3}, {RefName: "b", Start: 5, End: 7}}
	var got []string
	n, err := RunStream(context.Background(), pipeline.Config{Threads: 2}, regions, perBase{},
		func(f feature.Feature) error {
			got = append(got, f.RefName)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"a", "a", "a", "b", "b"}, got)
}

func TestRunStream_SendError(t *testing.T) {
	stop := errors.New("stop")
	n, err := RunStream(context.Background(), pipeline.Config{}, []feature.Region{{RefName: "a", Start: 0, End: 10}}, perBase{},
		func(feature.Feature) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Zero(t, n)
}

type failAfter struct {
	n   int
	err error
}

func (q failAfter) Features(_ context.Context, r feature.Region, _ adapter.Options) iter.Seq2[feature.Feature, error] {
	return func(yield func(feature.Feature, error) bool) {
		for p := r.Start; p < r.Start+q.n; p++ {
			if !yield(feature.Feature{RefName: r.RefName, Start: p, End: p + 1}, nil) {
				return
			}
		}
		yield(feature.Feature{}, q.err)
	}
}

func TestRunStream_SendsFeaturesBeforeError(t *testing.T) {
	boom := errors.New("boom")
	var got []int
	n, err := RunStream(context.Background(), pipeline.Config{Threads: 2},
		[]feature.Region{{RefName: "x", Start: 0, End: 10000}}, failAfter{n: 3, err: boom},
		func(f feature.Feature) error {
			got = append(got, f.Start)
			return nil
		})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{0, 1, 2}, got)
}
