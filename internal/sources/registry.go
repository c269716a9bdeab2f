// Package sources turns sub-adapter configuration blobs into live sources.
// A blob names its type and the file backing it:
//
//	{"type": "FastaAdapter", "path": "genome.fa.gz"}
//	{"type": "BedGraphAdapter", "path": "coverage.bedGraph"}
//	{"type": "SQLiteScoreAdapter", "path": "scores.db", "track": "coverage"}
package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"qseq/internal/adapter"
	"qseq/internal/sources/bedgraph"
	"qseq/internal/sources/fasta"
	"qseq/internal/sources/sqlitescore"
)

const (
	TypeFasta       = "FastaAdapter"
	TypeBedGraph    = "BedGraphAdapter"
	TypeSQLiteScore = "SQLiteScoreAdapter"
)

var ErrUnknownType = errors.New("unknown adapter type")

// Spec is the decoded form of a sub-adapter blob.
type Spec struct {
	Type  string `json:"type"`
	Path  string `json:"path"`
	Track string `json:"track,omitempty"`
}

// OpenFunc builds a source from its Spec. Path is already resolved.
type OpenFunc func(ctx context.Context, spec Spec) (any, error)

var (
	mu      sync.RWMutex
	openers = map[string]OpenFunc{}
)

// Register adds or replaces the constructor for a type.
func Register(typ string, fn OpenFunc) {
	mu.Lock()
	defer mu.Unlock()
	openers[typ] = fn
}

// Types lists the registered types, sorted.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(openers))
	for t := range openers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(TypeFasta, func(ctx context.Context, s Spec) (any, error) {
		return fasta.Open(ctx, s.Path)
	})
	Register(TypeBedGraph, func(ctx context.Context, s Spec) (any, error) {
		return bedgraph.Open(ctx, s.Path)
	})
	Register(TypeSQLiteScore, func(ctx context.Context, s Spec) (any, error) {
		if s.Track == "" {
			return nil, errors.New("track is required")
		}
		return sqlitescore.OpenSource(ctx, s.Path, s.Track)
	})
}

// ParseSpec decodes a blob. Relative paths are taken relative to baseDir.
func ParseSpec(raw json.RawMessage, baseDir string) (Spec, error) {
	var s Spec
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("parse adapter config: %w", err)
	}
	if s.Type == "" {
		return s, errors.New("adapter config: missing type")
	}
	if s.Path == "" {
		return s, fmt.Errorf("%s: missing path", s.Type)
	}
	if s.Path != "-" && !filepath.IsAbs(s.Path) && baseDir != "" {
		s.Path = filepath.Join(baseDir, s.Path)
	}
	return s, nil
}

// Open builds the source a blob describes.
func Open(ctx context.Context, raw json.RawMessage, baseDir string) (any, error) {
	s, err := ParseSpec(raw, baseDir)
	if err != nil {
		return nil, err
	}
	mu.RLock()
	fn, ok := openers[s.Type]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownType, s.Type, Types())
	}
	v, err := fn(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Type, err)
	}
	return v, nil
}

// Resolver opens sources for one adapter and remembers the ones holding
// resources so they can be released together.
type Resolver struct {
	ctx     context.Context
	baseDir string

	mu      sync.Mutex
	closers []io.Closer
}

// NewResolver resolves relative paths against baseDir.
func NewResolver(ctx context.Context, baseDir string) *Resolver {
	return &Resolver{ctx: ctx, baseDir: baseDir}
}

// Resolve satisfies adapter.ResolveFunc.
func (r *Resolver) Resolve(raw json.RawMessage) (any, error) {
	v, err := Open(r.ctx, raw, r.baseDir)
	if err != nil {
		return nil, err
	}
	if c, ok := v.(io.Closer); ok {
		r.mu.Lock()
		r.closers = append(r.closers, c)
		r.mu.Unlock()
	}
	return v, nil
}

var _ adapter.ResolveFunc = (*Resolver)(nil).Resolve

// Close releases every opened source that holds resources.
func (r *Resolver) Close() error {
	r.mu.Lock()
	cs := r.closers
	r.closers = nil
	r.mu.Unlock()
	var errs []error
	for _, c := range cs {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
