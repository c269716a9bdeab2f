// Package importapp implements the qseq-import command.
package importapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"qseq/internal/appcore"
	"qseq/internal/cli"
	"qseq/internal/cmdutil"
	"qseq/internal/monitoring"
	"qseq/internal/sources/bedgraph"
	"qseq/internal/sources/fileio"
	"qseq/internal/sources/sqlitescore"
	"qseq/internal/version"
)

const name = "qseq-import"

func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	fs := cli.NewFlagSet(name)
	cli.InstallImportUsage(fs, name)

	opts, err := cli.ParseImportArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return appcore.Flush(outw, stderr, appcore.ExitOK)
		}
		_, _ = fmt.Fprintln(stderr, "error:", err)
		_, _ = fmt.Fprintf(stderr, "Run '%s -h' for usage.\n", name)
		return appcore.ExitUsage
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", name, version.Version)
		return appcore.Flush(outw, stderr, appcore.ExitOK)
	}
	if opts.Verbose {
		monitoring.SetLogger(log.New(stderr, name+": ", log.LstdFlags).Printf)
	} else {
		monitoring.SetLogger(nil)
	}

	if opts.List || opts.Delete {
		if _, err := os.Stat(opts.DB); err != nil {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return appcore.ExitUsage
		}
	}
	st, err := sqlitescore.Open(opts.DB)
	if err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	defer func() { _ = st.Close() }()
	if err := st.MigrateUp(); err != nil {
		return appcore.ErrorCode(stderr, err)
	}

	switch {
	case opts.List:
		return list(ctx, st, outw, stderr)
	case opts.Delete:
		if err := st.DeleteTrack(ctx, opts.Track); err != nil {
			if errors.Is(err, sqlitescore.ErrTrackNotFound) {
				_, _ = fmt.Fprintln(stderr, "error:", err)
				return appcore.ExitUsage
			}
			return appcore.ErrorCode(stderr, err)
		}
		cmdutil.Warnf(stderr, opts.Quiet, "deleted track %q", opts.Track)
		return appcore.ExitOK
	}

	if _, err := st.TrackByName(ctx, opts.Track); err == nil {
		if !opts.Replace {
			_, _ = fmt.Fprintf(stderr, "error: track %q exists (use --replace)\n", opts.Track)
			return appcore.ExitUsage
		}
		if err := st.DeleteTrack(ctx, opts.Track); err != nil {
			return appcore.ErrorCode(stderr, err)
		}
	} else if !errors.Is(err, sqlitescore.ErrTrackNotFound) {
		return appcore.ErrorCode(stderr, err)
	}

	n, err := Import(ctx, st, opts.Track, opts.Files)
	if err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	if n == 0 {
		cmdutil.Warnf(stderr, opts.Quiet, "track %q is empty", opts.Track)
	}
	monitoring.Logf("imported %d intervals into %q", n, opts.Track)
	return appcore.ExitOK
}

// Import creates track and loads every file into it in one transaction.
// Nothing is kept when any file fails.
func Import(ctx context.Context, st *sqlitescore.Store, track string, files []string) (int, error) {
	source := make([]string, len(files))
	for i, f := range files {
		source[i] = filepath.Base(f)
	}
	tr, err := st.CreateTrack(ctx, track, strings.Join(source, ","))
	if err != nil {
		return 0, err
	}
	b, err := st.BeginBatch(ctx, tr)
	if err != nil {
		_ = st.DeleteTrack(context.WithoutCancel(ctx), track)
		return 0, err
	}
	for _, path := range files {
		if err := importFile(ctx, b, path); err != nil {
			_ = b.Rollback()
			_ = st.DeleteTrack(context.WithoutCancel(ctx), track)
			return 0, err
		}
	}
	if err := b.Commit(); err != nil {
		_ = st.DeleteTrack(context.WithoutCancel(ctx), track)
		return 0, err
	}
	return b.Len(), nil
}

func importFile(ctx context.Context, b *sqlitescore.Batch, path string) error {
	rc, err := fileio.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	start := time.Now()
	before := b.Len()
	err = bedgraph.ScanCtx(ctx, rc, func(e bedgraph.Entry) error {
		return b.Add(ctx, e.RefName, e.ScoreFeature)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	monitoring.Logf("%s: %d intervals in %s", path, b.Len()-before, time.Since(start).Round(time.Millisecond))
	return nil
}

func list(ctx context.Context, st *sqlitescore.Store, outw *bufio.Writer, stderr io.Writer) int {
	tracks, err := st.Tracks(ctx)
	if err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	tw := tabwriter.NewWriter(outw, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "name\tid\tsource\tcreated")
	for _, t := range tracks {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, t.ID, t.Source, t.CreatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	return appcore.Flush(outw, stderr, appcore.ExitOK)
}
