package fasta

import (
	"context"
	"fmt"
	"iter"

	"qseq/internal/adapter"
	"qseq/internal/feature"
	"qseq/internal/monitoring"
	"qseq/internal/sources/fileio"
)

// Source is a read-only, in-memory sequence source. It is safe for
// concurrent queries.
type Source struct {
	order []string
	seqs  map[string][]byte
}

var _ adapter.SequenceLengths = (*Source)(nil)
var _ adapter.SequenceSource = (*Source)(nil)

// New builds a Source from records. A repeated ID keeps the first record.
func New(records ...Record) *Source {
	s := &Source{seqs: make(map[string][]byte, len(records))}
	for _, r := range records {
		if _, dup := s.seqs[r.ID]; dup {
			continue
		}
		s.order = append(s.order, r.ID)
		s.seqs[r.ID] = r.Seq
	}
	return s
}

// Open loads every record of a (possibly gzipped) FASTA file.
func Open(ctx context.Context, path string) (*Source, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var recs []Record
	if err := ReadRecordsCtx(ctx, rc, func(r Record) error {
		recs = append(recs, r)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := New(recs...)
	monitoring.Logf("fasta: loaded %d sequences from %s", len(s.order), path)
	return s, nil
}

// RefNames lists sequence IDs in file order.
func (s *Source) RefNames(context.Context, adapter.Options) ([]string, error) {
	return append([]string(nil), s.order...), nil
}

// Len returns the length of ref and whether it exists.
func (s *Source) Len(ref string) (int, bool) {
	seq, ok := s.seqs[ref]
	return len(seq), ok
}

// Features yields at most one feature: the part of r that lies on the
// reference. Unknown references and regions past the end yield nothing.
func (s *Source) Features(ctx context.Context, r feature.Region, _ adapter.Options) iter.Seq2[feature.SequenceFeature, error] {
	return func(yield func(feature.SequenceFeature, error) bool) {
		if ctx.Err() != nil {
			return
		}
		seq, ok := s.seqs[r.RefName]
		if !ok {
			return
		}
		start, end, ok := feature.Region{Start: 0, End: len(seq)}.Clip(r.Start, r.End)
		if !ok {
			return
		}
		yield(feature.SequenceFeature{Start: start, End: end, Seq: string(seq[start:end])}, nil)
	}
}
