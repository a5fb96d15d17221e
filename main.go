package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/docshelf/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// No arguments, or flags only, means a single ingest run
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") && !isHelp(os.Args[1]) {
		run(cli.NewIngestCommand(), os.Args[1:])
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	switch name {
	case "ingest":
		run(cli.NewIngestCommand(), args)

	case "list":
		run(cli.NewListCommand(), args)

	case "check-tools":
		run(cli.NewCheckToolsCommand(), args)

	case "schedule":
		run(cli.NewScheduleCommand(), args)

	case "watch":
		run(cli.NewWatchCommand(), args)

	case "version":
		fmt.Printf("docshelf %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}
}

func run(cmd command, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help"
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  ingest        Scan the source directory once (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  list          List documents stored in the records database\n")
	fmt.Fprintf(os.Stderr, "  check-tools   Verify the external tools needed for the configured formats\n")
	fmt.Fprintf(os.Stderr, "  schedule      Run ingestion on a cron schedule\n")
	fmt.Fprintf(os.Stderr, "  watch         Ingest new documents as they appear in the source directory\n")
	fmt.Fprintf(os.Stderr, "  version       Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
