package cliutil

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qseq/internal/feature"
)

func TestSplitFlagsAndPositionals(t *testing.T) {
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	var b bool
	fs.BoolVar(&b, "bool", false, "")
	flagArgs, posArgs := SplitFlagsAndPositionals(fs, []string{"--bool", "pos1", "--", "pos2"})
	if len(flagArgs) != 1 || len(posArgs) != 2 || posArgs[0] != "pos1" || posArgs[1] != "pos2" {
		t.Fatalf("unexpected split: %v / %v", flagArgs, posArgs)
	}
}

func TestExpandPositionals(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bedGraph")
	b := filepath.Join(dir, "b.bedGraph")
	_ = os.WriteFile(a, []byte("chr1\t0\t1\t1\n"), 0o644)
	_ = os.WriteFile(b, []byte("chr1\t0\t1\t2\n"), 0o644)
	got, err := ExpandPositionals([]string{filepath.Join(dir, "*.bedGraph")})
	if err != nil || len(got) != 2 {
		t.Fatalf("expand: err=%v got=%v", err, got)
	}
}

func TestExpandPositionals_NoMatch(t *testing.T) {
	_, err := ExpandPositionals([]string{filepath.Join(t.TempDir(), "*.bedGraph")})
	if err == nil {
		t.Fatal("expected error for unmatched glob")
	}
}

func TestKeyValues(t *testing.T) {
	var kv KeyValues
	require.NoError(t, kv.Set("1=chr1"))
	require.NoError(t, kv.Set("MT=chrM"))
	assert.Equal(t, KeyValues{"1": "chr1", "MT": "chrM"}, kv)
	assert.Error(t, kv.Set("nokey"))
	assert.Error(t, kv.Set("=x"))
}

func TestReadRegionsBED(t *testing.T) {
	p := filepath.Join(t.TempDir(), "r.bed")
	require.NoError(t, os.WriteFile(p, []byte("track name=x\n# c\n\nchr1\t10\t13\tname\nchr2 0 5\n"), 0o644))
	got, err := ReadRegionsBED(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []feature.Region{
		{RefName: "chr1", Start: 10, End: 13},
		{RefName: "chr2", Start: 0, End: 5},
	}, got)
}

func TestReadRegionsBED_Errors(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"short":    "chr1\t10\n",
		"bad":      "chr1\tx\t10\n",
		"inverted": "chr1\t10\t5\n",
	} {
		p := filepath.Join(dir, name+".bed")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		_, err := ReadRegionsBED(context.Background(), p)
		assert.Error(t, err, name)
	}
	_, err := ReadRegionsBED(context.Background(), filepath.Join(dir, "missing.bed"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
