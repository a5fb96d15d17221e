package cli

import (
	"flag"

	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/config"
	"github.com/mrlokans/docshelf/internal/logging"
)

// commonFlags are the overrides shared by every command that runs ingestion.
type commonFlags struct {
	ConfigPath    string
	Directory     string
	OutputDir     string
	DatabasePath  string
	Workers       int
	LogLevel      string
	SkipToolCheck bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", "", "Path to a config file (JSON, YAML or TOML); defaults to ./config.* if present")
	fs.StringVar(&c.Directory, "dir", "", "Source directory to scan (overrides 'directory')")
	fs.StringVar(&c.OutputDir, "output", "", "Output directory for materialized documents (overrides 'output_directory')")
	fs.StringVar(&c.DatabasePath, "db", "", "Path to the records database (overrides 'database_path')")
	fs.IntVar(&c.Workers, "workers", 0, "Number of files processed in parallel (overrides 'workers')")
	fs.StringVar(&c.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides 'log_level')")
	fs.BoolVar(&c.SkipToolCheck, "skip-tool-check", false, "Start even when external tools are missing")
}

// load reads the configuration, applies flag overrides and validates the result.
func (c *commonFlags) load() (*config.Config, error) {
	cfg, err := config.NewConfig(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if c.Directory != "" {
		cfg.Ingest.Directory = c.Directory
	}
	if c.OutputDir != "" {
		cfg.Ingest.OutputDirectory = c.OutputDir
	}
	if c.DatabasePath != "" {
		cfg.Database.Path = c.DatabasePath
	}
	if c.Workers > 0 {
		cfg.Ingest.Workers = c.Workers
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.New(logging.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
		JSON:  cfg.Logging.JSON,
	})
}

// openApp loads configuration and wires the stack, checking tools unless skipped.
func (c *commonFlags) openApp() (*App, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, err
	}
	app, err := NewApp(cfg, newLogger(cfg))
	if err != nil {
		return nil, err
	}
	if !c.SkipToolCheck {
		if err := app.CheckTools(); err != nil {
			app.Close()
			return nil, err
		}
	}
	return app, nil
}
