package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/docshelf/internal/config"
	"github.com/mrlokans/docshelf/internal/runner"
	"github.com/mrlokans/docshelf/internal/tools"
)

// CheckToolsCommand reports which external tools for the configured formats are installed.
type CheckToolsCommand struct {
	ConfigPath string

	locator tools.Locator
	out     io.Writer
}

func NewCheckToolsCommand() *CheckToolsCommand {
	return &CheckToolsCommand{out: os.Stdout}
}

func (cmd *CheckToolsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("check-tools", flag.ExitOnError)
	fs.StringVar(&cmd.ConfigPath, "config", "", "Path to a config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s check-tools [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Verify that the external programs needed for the allowed extensions are on PATH.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

func (cmd *CheckToolsCommand) Run() error {
	cfg, err := config.NewConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}
	locator := cmd.locator
	if locator == nil {
		locator = runner.NewExecRunner(cfg.Tools.Timeout, newLogger(cfg))
	}

	statuses, err := tools.Check(locator, requiredTools(cfg))
	fmt.Fprintln(cmd.out, "=== External Tools ===")
	for _, s := range statuses {
		if s.Err != nil {
			fmt.Fprintf(cmd.out, "  [MISSING] %s\n", s.Name)
			continue
		}
		fmt.Fprintf(cmd.out, "  [OK] %s (%s)\n", s.Name, s.Path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.out, "\nAll required tools are installed.")
	return nil
}
