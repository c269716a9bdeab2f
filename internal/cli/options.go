// Package cli parses the command lines of qseq and qseq-import.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"slices"

	"qseq/internal/cliutil"
	"qseq/internal/feature"
)

// Query modes. ModeFeatures is the default.
const (
	ModeFeatures    = "features"
	ModeRefs        = "refs"
	ModeStats       = "stats"
	ModeRegionStats = "region-stats"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "jsonl", "bedgraph"}

// Options holds all qseq flags and arguments.
type Options struct {
	// Adapter input: a config file or inline sources
	ConfigFile string
	Sequence   string
	Scores     string
	Track      string
	Aliases    map[string]string

	// Regions
	Regions     []feature.Region
	RegionsFile string

	// Fusion
	Threshold   int // 0 = config/env default
	ClipToRange bool

	// Performance
	Threads int // 0 = QSEQ_THREADS, else all CPUs

	// Output
	Mode            string
	Output          string
	Header          bool // true unless --no-header
	NoMatchExitCode int

	// Misc
	Quiet   bool
	Verbose bool
	Version bool
}

// ParseArgs registers and parses all flags, returns an Options struct.
// Positional arguments are regions.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var (
		opt                      Options
		help                     bool
		regions                  cliutil.StringSlice
		aliases                  cliutil.KeyValues
		noHeader                 bool
		refs, stats, regionStats bool
	)

	// Adapter input
	fs.StringVar(&opt.ConfigFile, "config", "", "adapter config (.json)")
	fs.StringVar(&opt.Sequence, "sequence", "", "FASTA file (.fa/.fa.gz)")
	fs.StringVar(&opt.Scores, "scores", "", "bedGraph file or SQLite score store (.db)")
	fs.StringVar(&opt.Track, "track", "", "track name inside a SQLite score store")
	fs.Var(&aliases, "alias", "displayed=stored reference name (repeatable)")

	// Regions
	fs.Var(&regions, "region", "region ref:start-end, 0-based half-open (repeatable)")
	fs.Var(&regions, "r", "alias of --region")
	fs.StringVar(&opt.RegionsFile, "regions", "", "BED file of regions")

	// Fusion
	fs.IntVar(&opt.Threshold, "threshold", 0, "zip regions shorter than N bases (0=config/env default) [0]")
	fs.BoolVar(&opt.ClipToRange, "clip", false, "clip pass-through features to the region [false]")

	// Performance
	fs.IntVar(&opt.Threads, "threads", 0, "worker threads (0=QSEQ_THREADS or all CPUs) [0]")
	fs.IntVar(&opt.Threads, "t", 0, "alias of --threads")

	// Output
	fs.BoolVar(&refs, "refs", false, "list reference names and exit [false]")
	fs.BoolVar(&stats, "stats", false, "print global score statistics and exit [false]")
	fs.BoolVar(&regionStats, "region-stats", false, "print score statistics per region [false]")
	fs.StringVar(&opt.Output, "output", "text", "output: text | json | jsonl | bedgraph [text]")
	fs.StringVar(&opt.Output, "o", "text", "alias of --output")
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line [false]")
	fs.IntVar(&opt.NoMatchExitCode, "no-match-exit-code", 1, "exit code when no features are found [1]")

	// Misc
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress non-essential warnings [false]")
	fs.BoolVar(&opt.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&opt.Verbose, "verbose", false, "log source loading and query strategy [false]")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message [false]")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.Header = !noHeader
	opt.Aliases = aliases

	for _, s := range append([]string(regions), posArgs...) {
		r, err := feature.ParseRegion(s)
		if err != nil {
			return opt, err
		}
		opt.Regions = append(opt.Regions, r)
	}

	n := 0
	opt.Mode = ModeFeatures
	for _, m := range []struct {
		set  bool
		mode string
	}{{refs, ModeRefs}, {stats, ModeStats}, {regionStats, ModeRegionStats}} {
		if m.set {
			n++
			opt.Mode = m.mode
		}
	}
	if n > 1 {
		return opt, errors.New("--refs, --stats and --region-stats are mutually exclusive")
	}
	return opt, Validate(&opt)
}

// Validate applies the invariants ParseArgs cannot express as flag types.
func Validate(o *Options) error {
	usingFile := o.ConfigFile != ""
	usingInline := o.Sequence != "" || o.Scores != ""
	switch {
	case usingFile && usingInline:
		return errors.New("--config conflicts with --sequence/--scores")
	case !usingFile && !usingInline:
		return errors.New("provide --config or --sequence/--scores")
	case usingInline && o.Scores == "":
		return errors.New("--scores is required")
	}
	if o.Track != "" && usingFile {
		return errors.New("--track only applies to --scores")
	}
	needRegions := o.Mode == ModeFeatures || o.Mode == ModeRegionStats
	if needRegions && len(o.Regions) == 0 && o.RegionsFile == "" {
		return errors.New("provide at least one --region or --regions file")
	}
	if o.Threshold < 0 {
		return errors.New("--threshold must be ≥ 0")
	}
	if o.Threads < 0 {
		return errors.New("--threads must be ≥ 0")
	}
	if !slices.Contains(Formats, o.Output) {
		return fmt.Errorf("invalid --output %q", o.Output)
	}
	if o.Quiet && o.Verbose {
		return errors.New("--quiet conflicts with --verbose")
	}
	return nil
}
