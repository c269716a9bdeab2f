// internal/cliutil/cliutil.go
// Package cliutil holds flag and argument helpers shared by the commands.
package cliutil

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"qseq/internal/feature"
	"qseq/internal/sources/fileio"
)

// BoolFlags returns names of flags that don't require a value.
func BoolFlags(fs *flag.FlagSet) map[string]bool {
	m := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			m[f.Name] = true
		}
	})
	return m
}

// SplitFlagsAndPositionals separates flag-like args from positionals,
// preserving '-','--','--x=y' semantics. Use before fs.Parse(flagArgs).
func SplitFlagsAndPositionals(fs *flag.FlagSet, argv []string) (flagArgs, posArgs []string) {
	boolFlags := BoolFlags(fs)
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			posArgs = append(posArgs, argv[i+1:]...)
			break
		}
		if arg == "-" {
			posArgs = append(posArgs, arg)
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if strings.Contains(arg, "=") {
				flagArgs = append(flagArgs, arg)
				continue
			}
			name := strings.TrimLeft(arg, "-")
			if eq := strings.IndexByte(name, '='); eq >= 0 {
				name = name[:eq]
			}
			needsVal := !boolFlags[name]
			flagArgs = append(flagArgs, arg)
			if needsVal && i+1 < len(argv) {
				flagArgs = append(flagArgs, argv[i+1])
				i++
			}
			continue
		}
		posArgs = append(posArgs, arg)
	}
	return
}

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

// ExpandPositionals expands any globs among path-like positionals.
// '-' passes through untouched.
func ExpandPositionals(posArgs []string) ([]string, error) {
	var out []string
	for _, a := range posArgs {
		if a == "-" {
			out = append(out, a)
			continue
		}
		if hasGlobMeta(a) {
			m, err := filepath.Glob(a)
			if err != nil {
				return nil, fmt.Errorf("bad glob %q: %v", a, err)
			}
			if len(m) == 0 {
				return nil, fmt.Errorf("no input matched %q", a)
			}
			out = append(out, m...)
		} else {
			out = append(out, a)
		}
	}
	return out, nil
}

// StringSlice is a repeatable string flag.
type StringSlice []string

func (s *StringSlice) String() string     { return strings.Join(*s, ",") }
func (s *StringSlice) Set(v string) error { *s = append(*s, v); return nil }

// KeyValues is a repeatable key=value flag.
type KeyValues map[string]string

func (m *KeyValues) String() string {
	if m == nil || *m == nil {
		return ""
	}
	parts := make([]string, 0, len(*m))
	for k, v := range *m {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (m *KeyValues) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || k == "" || val == "" {
		return fmt.Errorf("want key=value, got %q", v)
	}
	if *m == nil {
		*m = KeyValues{}
	}
	(*m)[k] = val
	return nil
}

// ReadRegionsBED reads regions from the first three columns of a BED file
// (possibly gzipped, '-' for stdin). Blank, '#', track and browser lines
// are skipped.
func ReadRegionsBED(ctx context.Context, path string) ([]feature.Region, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []feature.Region
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64<<10), 4<<20)
	line := 0
	for sc.Scan() {
		line++
		if line%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || strings.HasPrefix(text, "track") || strings.HasPrefix(text, "browser") {
			continue
		}
		cols := strings.Fields(text)
		if len(cols) < 3 {
			return nil, fmt.Errorf("%s:%d: want at least 3 columns", path, line)
		}
		start, err1 := strconv.Atoi(cols[1])
		end, err2 := strconv.Atoi(cols[2])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%s:%d: bad coordinates %q %q", path, line, cols[1], cols[2])
		}
		r := feature.Region{RefName: cols[0], Start: start, End: end}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
