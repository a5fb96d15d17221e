package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/archive"
	"github.com/mrlokans/docshelf/internal/config"
	"github.com/mrlokans/docshelf/internal/database"
	"github.com/mrlokans/docshelf/internal/database/documents"
	"github.com/mrlokans/docshelf/internal/database/runs"
	"github.com/mrlokans/docshelf/internal/dates"
	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/extractors"
	"github.com/mrlokans/docshelf/internal/hashing"
	"github.com/mrlokans/docshelf/internal/ingest"
	"github.com/mrlokans/docshelf/internal/runner"
	"github.com/mrlokans/docshelf/internal/thumbnails"
	"github.com/mrlokans/docshelf/internal/tools"
)

// App is the ingest stack assembled from configuration.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	DB        *database.Database
	Documents *documents.Repository
	Runs      *runs.Repository
	Runner    *runner.ExecRunner
	Pipeline  *ingest.Pipeline
}

func NewApp(cfg *config.Config, logger *log.Logger) (*App, error) {
	dbPath, err := filepath.Abs(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	db, err := database.NewDatabase(dbPath, cfg.Database.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	formats, err := cfg.Ingest.ParsedDateFormats()
	if err != nil {
		db.Close()
		return nil, err
	}

	docs := documents.NewRepository(db.DB)
	runRepo := runs.NewRepository(db.DB)
	exec := runner.NewExecRunner(cfg.Tools.Timeout, logger)
	bins := binaries(cfg.Tools)
	hasher := hashing.NewHasher(docs)

	pipeline := ingest.NewPipeline(ingest.Deps{
		Hasher: hasher,
		Sink:   docs,
		Runs:   runRepo,
		Extractors: extractors.Default(exec, extractors.Options{
			Binaries:          bins,
			NativePDFFallback: cfg.Tools.PDFNativeFallback,
		}, logger),
		Thumbnails: thumbnails.NewDeriver(exec, hasher, thumbnails.Options{
			Size:         thumbnails.Size{Width: cfg.Thumbnail.Width, Height: cfg.Thumbnail.Height},
			Binaries:     bins,
			NativeResize: cfg.Thumbnail.NativeResize,
		}, logger),
		Archives: archive.NewExpander(logger),
		Dates:    dates.NewNormalizer(formats, nil),
		Logger:   logger,
		DuplicateOf: func(err error) bool {
			return errors.Is(err, documents.ErrDuplicate)
		},
	}, ingest.Options{
		Root:              cfg.Ingest.Directory,
		OutputRoot:        cfg.Ingest.OutputDirectory,
		AllowedExtensions: cfg.Ingest.AllowedExtensions,
		ExpandArchives:    cfg.Ingest.ExpandArchives,
		Workers:           cfg.Ingest.Workers,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Documents: docs,
		Runs:      runRepo,
		Runner:    exec,
		Pipeline:  pipeline,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// CheckTools fails with a *tools.MissingToolsError when a tool needed for the
// configured formats is not installed.
func (a *App) CheckTools() error {
	statuses, err := tools.Check(a.Runner, requiredTools(a.Config))
	for _, s := range statuses {
		if s.Err != nil {
			a.Logger.Error().Str("tool", s.Name).Err(s.Err).Msg("required tool not found")
			continue
		}
		a.Logger.Debug().Str("tool", s.Name).Str("path", s.Path).Msg("tool found")
	}
	return err
}

func binaries(t config.Tools) tools.Binaries {
	return tools.Binaries{
		PDFInfo:  t.PDFInfo,
		Convert:  t.Convert,
		DjVuTxt:  t.DjVuTxt,
		DDjVu:    t.DDjVu,
		PNMToPNG: t.PNMToPNG,
	}.WithDefaults()
}

// configuredFormats keeps the allowed extensions that name a supported format.
func configuredFormats(extensions []string) []entities.Format {
	seen := map[entities.Format]bool{}
	var formats []entities.Format
	for _, ext := range extensions {
		if f, ok := entities.ParseFormat(ext); ok && !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats
}

func requiredTools(cfg *config.Config) []string {
	return binaries(cfg.Tools).Required(configuredFormats(cfg.Ingest.AllowedExtensions))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
