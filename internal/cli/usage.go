package cli

import (
	"flag"
	"fmt"
	"io"

	"qseq/internal/version"
)

// InstallUsage sets a Usage handler on fs that prints name's help.
func InstallUsage(fs *flag.FlagSet, name string) {
	fs.Usage = func() { PrintUsage(fs.Output(), fs, name) }
}

// PrintUsage writes the qseq help text, with defaults taken from fs.
func PrintUsage(out io.Writer, fs *flag.FlagSet, name string) {
	def := defaults(fs)

	fmt.Fprintf(out, "%s – per-base sequence and score queries\n\n", name)
	fmt.Fprintf(out, "Version: %s\n\n", version.Version)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s --config adapter.json chr1:10-13 [region ...]\n", name)
	fmt.Fprintf(out, "  %s --sequence genome.fa --scores cov.bedGraph --region chr1:0-100\n", name)
	fmt.Fprintf(out, "  %s --sequence genome.fa --scores scores.db --track cov --regions r.bed\n", name)

	fmt.Fprintln(out, "\nInput:")
	fmt.Fprintln(out, "      --config file           Adapter config (.json) with sequenceAdapter/wiggleAdapter")
	fmt.Fprintln(out, "      --sequence file         FASTA file (.fa, .fa.gz)")
	fmt.Fprintln(out, "      --scores file           bedGraph file or SQLite score store (.db)")
	fmt.Fprintln(out, "      --track name            Track inside a SQLite score store")
	fmt.Fprintln(out, "      --alias disp=stored     Displayed → stored reference name (repeatable)")

	fmt.Fprintln(out, "\nRegions:")
	fmt.Fprintln(out, "  -r, --region ref:start-end  0-based half-open region (repeatable; also positional)")
	fmt.Fprintln(out, "      --regions file          BED file of regions")

	fmt.Fprintln(out, "\nFusion:")
	fmt.Fprintf(out, "      --threshold int         Zip regions shorter than N bases (0=config/env) [%s]\n", def("threshold"))
	fmt.Fprintf(out, "      --clip                  Clip pass-through features to the region [%s]\n", def("clip"))

	fmt.Fprintln(out, "\nPerformance:")
	fmt.Fprintf(out, "  -t, --threads int           Worker threads (0=QSEQ_THREADS or all CPUs) [%s]\n", def("threads"))

	fmt.Fprintln(out, "\nOutput:")
	fmt.Fprintf(out, "  -o, --output string         Output: text | json | jsonl | bedgraph [%s]\n", def("output"))
	fmt.Fprintln(out, "      --refs                  List reference names and exit")
	fmt.Fprintln(out, "      --stats                 Print global score statistics and exit")
	fmt.Fprintln(out, "      --region-stats          Print score statistics per region")
	fmt.Fprintf(out, "      --no-header             Suppress header line [%s]\n", def("no-header"))
	fmt.Fprintf(out, "      --no-match-exit-code int  Exit code when no features are found [%s]\n", def("no-match-exit-code"))

	fmt.Fprintln(out, "\nEnvironment:")
	fmt.Fprintln(out, "  QSEQ_THRESHOLD, QSEQ_THREADS, QSEQ_OTEL_ENDPOINT, QSEQ_OTEL_ENABLED")

	fmt.Fprintln(out, "\nMiscellaneous:")
	fmt.Fprintf(out, "  -q, --quiet                 Suppress non-essential warnings [%s]\n", def("quiet"))
	fmt.Fprintf(out, "      --verbose               Log source loading and query strategy [%s]\n", def("verbose"))
	fmt.Fprintln(out, "  -v, --version               Print version and exit")
	fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
}

// InstallImportUsage sets the qseq-import Usage handler on fs.
func InstallImportUsage(fs *flag.FlagSet, name string) {
	fs.Usage = func() {
		out := fs.Output()
		def := defaults(fs)
		fmt.Fprintf(out, "%s – load bedGraph scores into a SQLite score store\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintf(out, "  %s --db scores.db --track cov cov.bedGraph[.gz] [more ...]\n", name)
		fmt.Fprintf(out, "  %s --db scores.db --list\n", name)
		fmt.Fprintf(out, "  %s --db scores.db --track cov --delete\n", name)
		fmt.Fprintln(out, "\nOptions:")
		fmt.Fprintln(out, "      --db file               SQLite score store (created if missing) [*]")
		fmt.Fprintln(out, "      --track name            Track name [*]")
		fmt.Fprintf(out, "      --replace               Replace an existing track [%s]\n", def("replace"))
		fmt.Fprintln(out, "      --list                  List tracks and exit")
		fmt.Fprintln(out, "      --delete                Delete --track and exit")
		fmt.Fprintf(out, "  -q, --quiet                 Suppress non-essential warnings [%s]\n", def("quiet"))
		fmt.Fprintf(out, "      --verbose               Log progress [%s]\n", def("verbose"))
		fmt.Fprintln(out, "  -v, --version               Print version and exit")
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
	}
}

func defaults(fs *flag.FlagSet) func(string) string {
	return func(name string) string {
		if f := fs.Lookup(name); f != nil {
			return f.DefValue
		}
		return ""
	}
}
