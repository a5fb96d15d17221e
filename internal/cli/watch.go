package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/docshelf/internal/watcher"
)

// WatchCommand ingests once, then again whenever documents appear in the source tree.
type WatchCommand struct {
	commonFlags
	Debounce time.Duration

	out io.Writer
}

func NewWatchCommand() *WatchCommand {
	return &WatchCommand{out: os.Stdout}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cmd.register(fs)
	fs.DurationVar(&cmd.Debounce, "debounce", 0, "Quiet period before a batch starts (overrides 'watch_debounce')")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Watch the source directory and ingest new documents as they arrive. Stop with Ctrl+C.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

func (cmd *WatchCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	debounce := cfg.Schedule.Debounce
	if cmd.Debounce > 0 {
		debounce = cmd.Debounce
	}

	ctx, stop := signalContext()
	defer stop()

	runBatch := func(ctx context.Context) {
		report, err := app.Pipeline.Run(ctx)
		if report != nil {
			PrintSummary(cmd.out, report)
		}
		if err != nil && ctx.Err() == nil {
			app.Logger.Error().Err(err).Msg("ingest run failed")
		}
	}

	runBatch(ctx)
	if ctx.Err() != nil {
		return nil
	}

	extensions := append([]string{}, cfg.Ingest.AllowedExtensions...)
	if cfg.Ingest.ExpandArchives {
		extensions = append(extensions, "zip")
	}

	w := watcher.New(watcher.Options{
		Root:       cfg.Ingest.Directory,
		Extensions: extensions,
		Debounce:   debounce,
		Ignore:     []string{cfg.Ingest.OutputDirectory},
	}, app.Logger)

	return w.Run(ctx, func(ctx context.Context, paths []string) {
		app.Logger.Info().Int("changed", len(paths)).Msg("new files detected")
		runBatch(ctx)
	})
}
