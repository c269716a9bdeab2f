package cli

import (
	"errors"
	"flag"

	"qseq/internal/cliutil"
)

// ImportOptions holds qseq-import flags and arguments.
type ImportOptions struct {
	DB      string
	Track   string
	Replace bool
	List    bool
	Delete  bool
	Files   []string

	Quiet   bool
	Verbose bool
	Version bool
}

// ParseImportArgs parses a qseq-import command line. Positional arguments
// are bedGraph files (globs are expanded, '-' is stdin).
func ParseImportArgs(fs *flag.FlagSet, argv []string) (ImportOptions, error) {
	var (
		opt  ImportOptions
		help bool
	)
	fs.StringVar(&opt.DB, "db", "", "SQLite score store (created if missing) [*]")
	fs.StringVar(&opt.Track, "track", "", "track name [*]")
	fs.BoolVar(&opt.Replace, "replace", false, "replace an existing track of the same name [false]")
	fs.BoolVar(&opt.List, "list", false, "list tracks and exit [false]")
	fs.BoolVar(&opt.Delete, "delete", false, "delete --track and exit [false]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress non-essential warnings [false]")
	fs.BoolVar(&opt.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&opt.Verbose, "verbose", false, "log progress [false]")
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
	if len(posArgs) > 0 {
		files, err := cliutil.ExpandPositionals(posArgs)
		if err != nil {
			return opt, err
		}
		opt.Files = files
	}

	if opt.DB == "" {
		return opt, errors.New("--db is required")
	}
	switch {
	case opt.List && opt.Delete:
		return opt, errors.New("--list conflicts with --delete")
	case opt.List:
		return opt, nil
	case opt.Track == "":
		return opt, errors.New("--track is required")
	case opt.Delete:
		return opt, nil
	case len(opt.Files) == 0:
		return opt, errors.New("at least one bedGraph file is required")
	}
	return opt, nil
}
