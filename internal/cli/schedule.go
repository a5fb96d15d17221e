package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/docshelf/internal/scheduler"
)

// ScheduleCommand keeps running ingestion on a cron schedule until interrupted.
type ScheduleCommand struct {
	commonFlags
	Cron       string
	RunOnStart bool

	out io.Writer
}

func NewScheduleCommand() *ScheduleCommand {
	return &ScheduleCommand{out: os.Stdout}
}

func (cmd *ScheduleCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Cron, "cron", "", "Cron schedule, e.g. \"0 * * * *\" (overrides 'schedule')")
	fs.BoolVar(&cmd.RunOnStart, "now", true, "Run one batch immediately before waiting for the schedule")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s schedule [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run ingestion periodically. Stop with Ctrl+C.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Cron != "" {
		if err := scheduler.ValidateCronSchedule(cmd.Cron); err != nil {
			return fmt.Errorf("invalid -cron %q: %w", cmd.Cron, err)
		}
	}
	return nil
}

func (cmd *ScheduleCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	schedule := app.Config.Schedule.Cron
	if cmd.Cron != "" {
		schedule = cmd.Cron
	}

	ctx, stop := signalContext()
	defer stop()

	sched := scheduler.NewIngestScheduler(schedule, func(ctx context.Context) error {
		report, err := app.Pipeline.Run(ctx)
		if report != nil {
			PrintSummary(cmd.out, report)
		}
		return err
	}, app.Logger)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	if cmd.RunOnStart {
		_ = sched.RunNow()
	}

	<-ctx.Done()
	sched.Stop()
	return nil
}
