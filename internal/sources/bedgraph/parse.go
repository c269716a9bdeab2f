// Package bedgraph serves score intervals from a bedGraph file held in
// memory, and provides the streaming parser used by the importer.
package bedgraph

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"qseq/internal/feature"
)

// Entry is one parsed bedGraph line.
type Entry struct {
	RefName string
	feature.ScoreFeature
}

// ParseError locates a malformed line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bedgraph line %d: %s", e.Line, e.Msg)
}

// ScanCtx parses bedGraph from r and emits one Entry per data line.
// Blank lines, '#' comments and track/browser lines are skipped. Extra
// columns after the score are ignored.
func ScanCtx(ctx context.Context, r io.Reader, emit func(Entry) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == '#' ||
			bytes.HasPrefix(line, []byte("track")) || bytes.HasPrefix(line, []byte("browser")) {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			return &ParseError{Line: lineNo, Msg: err.Error()}
		}
		if err := emit(e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("bedgraph scan: %w", err)
	}
	return ctx.Err()
}

func parseLine(line []byte) (Entry, error) {
	fields := bytes.Fields(line)
	if len(fields) < 4 {
		return Entry{}, fmt.Errorf("want 4 columns, got %d", len(fields))
	}
	start, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return Entry{}, fmt.Errorf("bad start %q", fields[1])
	}
	end, err := strconv.Atoi(string(fields[2]))
	if err != nil {
		return Entry{}, fmt.Errorf("bad end %q", fields[2])
	}
	if start < 0 || end < start {
		return Entry{}, fmt.Errorf("invalid interval %d-%d", start, end)
	}
	score, err := strconv.ParseFloat(string(fields[3]), 64)
	if err != nil || math.IsNaN(score) {
		return Entry{}, fmt.Errorf("bad score %q", fields[3])
	}
	return Entry{
		RefName:      string(fields[0]),
		ScoreFeature: feature.ScoreFeature{Start: start, End: end, Score: score},
	}, nil
}
