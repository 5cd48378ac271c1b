package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: raven <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  publish    Move a draft from Unpublished/ to Drafts/ and rebuild")
	fmt.Fprintln(w, "  metadata   Create the metadata record for a draft")
	fmt.Fprintln(w, "  rebuild    Regenerate every page, the homepage and the feeds")
	fmt.Fprintln(w, "  serve      Serve the site over HTTPS")
	fmt.Fprintln(w, "  watch      Rebuild whenever drafts, config or images change")
	fmt.Fprintln(w, "  doctor     Check the project and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'raven help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags accepted by every command.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --root <dir>          Project root (default: nearest Raven/ directory)")
	fmt.Fprintln(w, "  -c, --config <path>       Settings file (default: Config/raven.yaml)")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w, "  -q, --quiet               Only log warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Log debug output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  RAVEN_ROOT, RAVEN_CONFIG, RAVEN_LOG_LEVEL, RAVEN_LOG_FORMAT")
	fmt.Fprintln(w, "  A .env file in the working directory is loaded first. Flags win.")
}

// printCommandUsage prints usage for one command, or the main usage when
// the command is unknown.
func printCommandUsage(w io.Writer, name string) {
	switch name {
	case "publish":
		fmt.Fprintln(w, "Usage: raven publish <file.md> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Move Unpublished/<file.md> into Drafts/, rebuild the site, then")
		fmt.Fprintln(w, "create the metadata record for the new draft.")
	case "metadata":
		fmt.Fprintln(w, "Usage: raven metadata <file.md> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Create the metadata record for Drafts/<file.md>. Nothing happens when")
		fmt.Fprintln(w, "the record exists or the draft is marked <not-article>.")
	case "rebuild":
		fmt.Fprintln(w, "Usage: raven rebuild [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Regenerate Articles-html/ and Articles-md/ from Drafts/, assign")
		fmt.Fprintln(w, "numbers to new articles, write the homepage and the feeds.")
	case "serve":
		fmt.Fprintln(w, "Usage: raven serve [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Serve Articles-html/ over HTTPS and redirect HTTP to it. A self-signed")
		fmt.Fprintln(w, "certificate is generated when missing and renewed before it expires.")
		fmt.Fprintln(w, "Ports and certificate options come from the settings file.")
	case "watch":
		fmt.Fprintln(w, "Usage: raven watch [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Rebuild once, then rebuild whenever Drafts/, Config/ or Images/ change.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --debounce <d>        Delay before a change triggers a rebuild (default 300ms)")
	case "doctor":
		fmt.Fprintln(w, "Usage: raven doctor [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check the project layout, configuration, certificate and lock.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --json                Output as JSON")
	case "version":
		fmt.Fprintln(w, "Usage: raven version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
		return
	default:
		printUsage(w)
		return
	}
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for the requested command and returns an exit code.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "publish", "metadata", "rebuild", "serve", "watch", "doctor", "version":
		printCommandUsage(env.Stdout, args[0])
		return ExitSuccess
	case "help":
		printUsage(env.Stdout)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
}
