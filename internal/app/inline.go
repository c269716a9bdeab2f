package app

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"qseq/internal/adapter"
	"qseq/internal/sources"
)

// InlineConfig builds the adapter config the --sequence/--scores flags
// describe. Scores in a .db/.sqlite file are read from a SQLite store and
// need a track; anything else is bedGraph.
func InlineConfig(sequence, scores, track string) (adapter.Config, error) {
	var cfg adapter.Config
	if sequence != "" {
		raw, err := json.Marshal(sources.Spec{Type: sources.TypeFasta, Path: sequence})
		if err != nil {
			return cfg, err
		}
		cfg.SequenceAdapter = raw
	}

	spec := sources.Spec{Type: sources.TypeBedGraph, Path: scores}
	if isSQLite(scores) {
		if track == "" {
			return cfg, errors.New("--track is required for a SQLite score store")
		}
		spec = sources.Spec{Type: sources.TypeSQLiteScore, Path: scores, Track: track}
	} else if track != "" {
		return cfg, errors.New("--track only applies to a SQLite score store")
	}
	raw, err := json.Marshal(spec)
	if err != nil {
		return cfg, err
	}
	cfg.WiggleAdapter = raw
	return cfg, nil
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
