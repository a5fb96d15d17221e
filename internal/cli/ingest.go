package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// IngestCommand runs one ingestion batch and prints what was added.
type IngestCommand struct {
	commonFlags

	out io.Writer
}

func NewIngestCommand() *IngestCommand {
	return &IngestCommand{out: os.Stdout}
}

func (cmd *IngestCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	cmd.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [ingest] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Scan the source directory once and ingest every new document.\n\n")
		fmt.Fprintf(os.Stderr, "Every document gets its own folder under the output directory holding\n")
		fmt.Fprintf(os.Stderr, "a copy of the file, a <hash>.png thumbnail and a metadata.json sidecar.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ingest -dir ~/Books -output ~/Library\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config config.json -workers 4\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *IngestCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signalContext()
	defer stop()

	report, err := app.Pipeline.Run(ctx)
	if report != nil {
		PrintSummary(cmd.out, report)
	}
	return err
}
