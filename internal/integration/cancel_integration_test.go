package integration

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"qseq/internal/app"
)

func TestCtrlC_MidQuery_Exit130(t *testing.T) {
	t.Setenv("QSEQ_OTEL_ENDPOINT", "")
	dir := t.TempDir()
	const Mb = 1 << 20
	fa := write(t, filepath.Join(dir, "big.fa"), ">chr1\n"+strings.Repeat("ACGT", (8*Mb)/4)+"\n")
	bg := write(t, filepath.Join(dir, "cov.bedGraph"), "chr1\t0\t8388608\t1\n")

	// Enough zipped bases to keep the run busy well past the cancel.
	var bed strings.Builder
	for s := 0; s+4999 <= 8*Mb; s += 4999 {
		fmt.Fprintf(&bed, "chr1\t%d\t%d\n", s, s+4999)
	}
	regions := write(t, filepath.Join(dir, "r.bed"), bed.String())

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel shortly after start.
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	code := app.RunContext(ctx, []string{"--sequence", fa, "--scores", bg, "--regions", regions}, io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
}
