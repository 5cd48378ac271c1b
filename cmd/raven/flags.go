package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// ErrUsage indicates invalid flags or missing arguments.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	root      string
	config    string
	logFormat string
	logLevel  string // environment only
	quiet     bool
	verbose   bool
}

// addCommonFlags registers the flags every command accepts.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVar(&f.root, "root", "", "Project root directory (default: nearest Raven/ above the working directory)")
	fs.StringVarP(&f.config, "config", "c", "", "Settings file (default: Config/raven.yaml)")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: text or json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Only log warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log debug output")
}

// newFlagSet returns a flag set for the named command whose usage prints
// the command help to the environment's stderr.
func newFlagSet(name string, env *Environment) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printCommandUsage(env.Stderr, name) }
	return fs
}

// parseCommand parses args into common flags plus any flags the caller
// registered on fs, then applies environment defaults. It returns the
// positional arguments.
func parseCommand(fs *flag.FlagSet, args []string, common *commonFlags) ([]string, error) {
	addCommonFlags(fs, common)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if common.quiet && common.verbose {
		return nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	applyEnvConfig(loadEnvConfig(), common)
	return fs.Args(), nil
}

// requireArgs checks the positional argument count.
func requireArgs(cmd string, args []string, want int, usage string) error {
	if len(args) != want {
		return fmt.Errorf("%w: %s expects %s", ErrUsage, cmd, usage)
	}
	return nil
}
