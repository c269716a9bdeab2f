// Package app implements the qseq command.
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"qseq/internal/adapter"
	"qseq/internal/appcore"
	"qseq/internal/cli"
	"qseq/internal/cliutil"
	"qseq/internal/cmdutil"
	"qseq/internal/feature"
	"qseq/internal/fusion"
	"qseq/internal/monitoring"
	"qseq/internal/platform/config"
	"qseq/internal/platform/otel"
	"qseq/internal/sources"
	"qseq/internal/version"
	"qseq/internal/writers"
)

const name = "qseq"

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	fs := cli.NewFlagSet(name)
	cli.InstallUsage(fs, name)

	opts, err := cli.ParseArgs(fs, argv)
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

	env, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appcore.ExitUsage
	}

	shutdown, err := otel.Setup(parent, name, env.OTelEndpoint, env.OTelEnabled)
	if err != nil {
		cmdutil.Warnf(stderr, opts.Quiet, "tracing disabled: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	cfg, baseDir, err := adapterConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appcore.ExitUsage
	}

	threshold := env.Threshold
	if cfg.Threshold > 0 {
		threshold = cfg.Threshold
	}
	if opts.Threshold > 0 {
		threshold = opts.Threshold
	}

	res := sources.NewResolver(parent, baseDir)
	defer func() { _ = res.Close() }()

	fa, err := fusion.FromConfig(cfg, res.Resolve,
		fusion.WithThreshold(threshold),
		fusion.WithClipPassThrough(cfg.ClipPassThrough || opts.ClipToRange),
	)
	if err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	defer fa.FreeResources()

	switch opts.Mode {
	case cli.ModeRefs:
		return runRefs(parent, outw, stderr, opts, fa)
	case cli.ModeStats:
		return runStats(parent, outw, stderr, opts, fa)
	}

	regions, err := queryRegions(parent, opts, cfg)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appcore.ExitUsage
	}
	warnRegions(parent, stderr, opts.Quiet, fa, regions)

	if opts.Mode == cli.ModeRegionStats {
		return runRegionStats(parent, outw, stderr, opts, fa, regions)
	}

	threads := opts.Threads
	if threads == 0 {
		threads = env.Threads
	}
	return appcore.Run(parent, stdout, stderr, appcore.Options{
		Threads:         threads,
		Format:          opts.Output,
		Header:          opts.Header,
		TrackName:       trackName(opts),
		Quiet:           opts.Quiet,
		NoMatchExitCode: opts.NoMatchExitCode,
	}, regions, fa)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// adapterConfig loads --config or builds the same config from inline flags.
// baseDir anchors relative source paths.
func adapterConfig(opts cli.Options) (adapter.Config, string, error) {
	var (
		cfg     adapter.Config
		baseDir string
		err     error
	)
	if opts.ConfigFile != "" {
		cfg, err = adapter.LoadConfig(opts.ConfigFile)
		if err != nil {
			return cfg, "", err
		}
		baseDir = filepath.Dir(opts.ConfigFile)
	} else {
		cfg, err = InlineConfig(opts.Sequence, opts.Scores, opts.Track)
		if err != nil {
			return cfg, "", err
		}
	}
	if len(opts.Aliases) > 0 {
		merged := make(map[string]string, len(cfg.RefNameAliases)+len(opts.Aliases))
		for k, v := range cfg.RefNameAliases {
			merged[k] = v
		}
		for k, v := range opts.Aliases {
			merged[k] = v
		}
		cfg.RefNameAliases = merged
	}
	return cfg, baseDir, nil
}

func queryRegions(ctx context.Context, opts cli.Options, cfg adapter.Config) ([]feature.Region, error) {
	regions := append([]feature.Region(nil), opts.Regions...)
	if opts.RegionsFile != "" {
		more, err := cliutil.ReadRegionsBED(ctx, opts.RegionsFile)
		if err != nil {
			return nil, err
		}
		regions = append(regions, more...)
	}
	for i, r := range regions {
		regions[i] = cfg.RegionFor(r)
	}
	return regions, nil
}

// warnRegions flags regions on references the score source lacks and
// regions running past the end of a sequence of known length.
func warnRegions(ctx context.Context, stderr io.Writer, quiet bool, fa *fusion.Adapter, regions []feature.Region) {
	if quiet {
		return
	}
	var known map[string]bool
	if refs, err := fa.RefNames(ctx, adapter.Options{}); err == nil {
		known = make(map[string]bool, len(refs))
		for _, r := range refs {
			known[r] = true
		}
	}
	seen := map[string]bool{}
	for _, r := range regions {
		if known != nil && !known[r.RefName] && !seen[r.RefName] {
			seen[r.RefName] = true
			cmdutil.Warnf(stderr, false, "no scores on reference %q", r.RefName)
		}
		seqRef := r.SequenceRegion().RefName
		if n, ok := fa.SequenceLen(seqRef); ok && r.End > n {
			cmdutil.Warnf(stderr, false, "region %s runs past the end of %q (%d bp)", r, seqRef, n)
		}
	}
}

func trackName(opts cli.Options) string {
	if opts.Track != "" {
		return opts.Track
	}
	return name
}

func runRefs(ctx context.Context, outw *bufio.Writer, stderr io.Writer, opts cli.Options, fa *fusion.Adapter) int {
	refs, err := fa.RefNames(ctx, adapter.Options{})
	if err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	if err := writers.WriteRefNames(opts.Output, outw, refs); err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	return appcore.Flush(outw, stderr, appcore.ExitOK)
}

func runStats(ctx context.Context, outw *bufio.Writer, stderr io.Writer, opts cli.Options, fa *fusion.Adapter) int {
	s, err := fa.GlobalStats(ctx, adapter.Options{})
	if err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	if err := writers.WriteStats(opts.Output, outw, []writers.StatsRow{{Stats: s}}, opts.Header); err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	return appcore.Flush(outw, stderr, appcore.ExitOK)
}

func runRegionStats(ctx context.Context, outw *bufio.Writer, stderr io.Writer, opts cli.Options, fa *fusion.Adapter, regions []feature.Region) int {
	rows := make([]writers.StatsRow, 0, len(regions))
	for i := range regions {
		s, err := fa.RegionStats(ctx, regions[i], adapter.Options{})
		if err != nil {
			return appcore.ErrorCode(stderr, err)
		}
		rows = append(rows, writers.StatsRow{Region: &regions[i], Stats: s})
	}
	if err := writers.WriteStats(opts.Output, outw, rows, opts.Header); err != nil {
		return appcore.ErrorCode(stderr, err)
	}
	return appcore.Flush(outw, stderr, appcore.ExitOK)
}
