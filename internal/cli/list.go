package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/docshelf/internal/config"
	"github.com/mrlokans/docshelf/internal/database"
	"github.com/mrlokans/docshelf/internal/database/documents"
	"github.com/mrlokans/docshelf/internal/database/runs"
)

// ListCommand prints stored records and, optionally, the ingest history.
type ListCommand struct {
	ConfigPath   string
	DatabasePath string
	Limit        int
	ShowRuns     bool

	out io.Writer
}

func NewListCommand() *ListCommand {
	return &ListCommand{out: os.Stdout}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)

	fs.StringVar(&cmd.ConfigPath, "config", "", "Path to a config file")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the records database (overrides 'database_path')")
	fs.IntVar(&cmd.Limit, "limit", 50, "Maximum number of records to show (0 for all)")
	fs.BoolVar(&cmd.ShowRuns, "runs", false, "Also show the most recent ingest runs")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List documents stored in the records database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Limit < 0 {
		return fmt.Errorf("-limit must not be negative")
	}
	return nil
}

func (cmd *ListCommand) Run() error {
	cfg, err := config.NewConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}
	dbPath := cfg.Database.Path
	if cmd.DatabasePath != "" {
		dbPath = cmd.DatabasePath
	}
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	if _, err := os.Stat(absDBPath); os.IsNotExist(err) {
		return fmt.Errorf("database not found: %s", absDBPath)
	}

	db, err := database.NewDatabase(absDBPath, cfg.Database.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := documents.NewRepository(db.DB)

	docs, err := repo.List(ctx, cmd.Limit)
	if err != nil {
		return err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	PrintDocuments(cmd.out, docs, total)

	if cmd.ShowRuns {
		history, err := runs.NewRepository(db.DB).Recent(ctx, 10)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		fmt.Fprintln(cmd.out)
		PrintRuns(cmd.out, history)
	}
	return nil
}
