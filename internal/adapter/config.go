package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"qseq/internal/feature"
)

// DefaultThreshold is the region span (in bases) at and above which the
// fusion adapter forwards raw score features instead of zipping per base.
const DefaultThreshold = 5000

// ResolveFunc turns an opaque sub-adapter configuration into a live adapter.
type ResolveFunc func(cfg json.RawMessage) (any, error)

// Config is the fusion adapter configuration. The two sub-adapter blobs are
// opaque here; the resolver knows how to read them.
type Config struct {
	SequenceAdapter json.RawMessage `json:"sequenceAdapter,omitempty"`
	WiggleAdapter   json.RawMessage `json:"wiggleAdapter,omitempty"`

	// Threshold overrides DefaultThreshold when > 0.
	Threshold int `json:"threshold,omitempty"`

	// ClipPassThrough clips pass-through features to the queried region.
	ClipPassThrough bool `json:"clipPassThrough,omitempty"`

	// RefNameAliases maps a displayed reference name to the name the
	// sequence is stored under.
	RefNameAliases map[string]string `json:"refNameAliases,omitempty"`
}

// HasSequenceAdapter reports whether a sequence sub-config is present.
func (c Config) HasSequenceAdapter() bool { return present(c.SequenceAdapter) }

// HasWiggleAdapter reports whether a score sub-config is present.
func (c Config) HasWiggleAdapter() bool { return present(c.WiggleAdapter) }

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

const maxConfigSize = 1 << 20

// LoadConfig reads a Config from a .json file of at most 1 MiB. Unknown
// fields are rejected.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	fi, err := os.Stat(clean)
	if err != nil {
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	if fi.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", fi.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a Config from JSON.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Threshold < 0 {
		return cfg, errors.New("threshold must be >= 0")
	}
	return cfg, nil
}

// RegionFor fills OriginalRefName from RefNameAliases unless r already
// names its sequence reference.
func (c Config) RegionFor(r feature.Region) feature.Region {
	if r.OriginalRefName != "" {
		return r
	}
	if orig, ok := c.RefNameAliases[r.RefName]; ok && orig != r.RefName {
		r.OriginalRefName = orig
	}
	return r
}
