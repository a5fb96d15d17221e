package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mrlokans/docshelf/internal/dates"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type (
	Config struct {
		Ingest
		Thumbnail
		Database
		Logging
		Tools
		Schedule

		// File is the config file that was loaded, empty when none was found.
		File string
	}

	Ingest struct {
		Directory         string
		OutputDirectory   string
		AllowedExtensions []string
		ExpandArchives    bool
		Workers           int
		DateFormats       []string
	}
	Thumbnail struct {
		Width        int
		Height       int
		NativeResize bool // Scale FB2 covers in-process instead of with convert
	}
	Database struct {
		Path  string
		Debug bool
	}
	Logging struct {
		Level string
		File  string
		JSON  bool
	}
	Tools struct {
		Timeout           time.Duration
		PDFNativeFallback bool
		PDFInfo           string
		Convert           string
		DjVuTxt           string
		DDjVu             string
		PNMToPNG          string
	}
	Schedule struct {
		Cron     string // Cron format: "0 * * * *" = hourly
		Debounce time.Duration
	}
)

// NewConfig loads defaults, then the config file, then DOCSHELF_* environment
// variables. An empty path looks for ./config.{json,yaml,toml} and tolerates its absence.
func NewConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("directory", "")
	v.SetDefault("output_directory", DefaultOutputDirectory)
	v.SetDefault("allowed_extensions", []string{"pdf", "fb2", "djvu"})
	v.SetDefault("expand_archives", true)
	v.SetDefault("workers", 1)
	v.SetDefault("date_formats", []string{"ymd", "dmy", "mdy", "pdfinfo", "year"})

	v.SetDefault("thumbnail_size.width", 200)
	v.SetDefault("thumbnail_size.height", 300)
	v.SetDefault("thumbnail_native_resize", false)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_debug", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_json", false)

	v.SetDefault("tool_timeout", "2m")
	v.SetDefault("pdf_native_fallback", true)
	v.SetDefault("tools.pdfinfo", "pdfinfo")
	v.SetDefault("tools.convert", "convert")
	v.SetDefault("tools.djvutxt", "djvutxt")
	v.SetDefault("tools.ddjvu", "ddjvu")
	v.SetDefault("tools.pnmtopng", "pnmtopng")

	v.SetDefault("schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("watch_debounce", "2s")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return &Config{
		Ingest: Ingest{
			Directory:         v.GetString("directory"),
			OutputDirectory:   v.GetString("output_directory"),
			AllowedExtensions: splitList(v.GetStringSlice("allowed_extensions")),
			ExpandArchives:    v.GetBool("expand_archives"),
			Workers:           v.GetInt("workers"),
			DateFormats:       splitList(v.GetStringSlice("date_formats")),
		},
		Thumbnail: Thumbnail{
			Width:        v.GetInt("thumbnail_size.width"),
			Height:       v.GetInt("thumbnail_size.height"),
			NativeResize: v.GetBool("thumbnail_native_resize"),
		},
		Database: Database{
			Path:  v.GetString("database_path"),
			Debug: v.GetBool("database_debug"),
		},
		Logging: Logging{
			Level: v.GetString("log_level"),
			File:  v.GetString("log_file"),
			JSON:  v.GetBool("log_json"),
		},
		Tools: Tools{
			Timeout:           v.GetDuration("tool_timeout"),
			PDFNativeFallback: v.GetBool("pdf_native_fallback"),
			PDFInfo:           v.GetString("tools.pdfinfo"),
			Convert:           v.GetString("tools.convert"),
			DjVuTxt:           v.GetString("tools.djvutxt"),
			DDjVu:             v.GetString("tools.ddjvu"),
			PNMToPNG:          v.GetString("tools.pnmtopng"),
		},
		Schedule: Schedule{
			Cron:     v.GetString("schedule"),
			Debounce: v.GetDuration("watch_debounce"),
		},
		File: v.ConfigFileUsed(),
	}, nil
}

// splitList accepts both real lists and comma separated strings from the environment.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate reports every problem that would make an ingest run impossible.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Ingest.Directory) == "" {
		errs = append(errs, errors.New("directory is required"))
	}
	if strings.TrimSpace(c.Ingest.OutputDirectory) == "" {
		errs = append(errs, errors.New("output_directory is required"))
	}
	if c.Ingest.Directory != "" && c.Ingest.OutputDirectory != "" && samePath(c.Ingest.Directory, c.Ingest.OutputDirectory) {
		errs = append(errs, errors.New("output_directory must differ from directory"))
	}
	if len(c.Ingest.AllowedExtensions) == 0 {
		errs = append(errs, errors.New("allowed_extensions must not be empty"))
	}
	if c.Ingest.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Ingest.Workers))
	}
	if c.Thumbnail.Width <= 0 || c.Thumbnail.Height <= 0 {
		errs = append(errs, fmt.Errorf("thumbnail_size must be positive, got %dx%d", c.Thumbnail.Width, c.Thumbnail.Height))
	}
	if c.Tools.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("tool_timeout must be positive, got %s", c.Tools.Timeout))
	}
	if _, err := c.Ingest.ParsedDateFormats(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (i Ingest) ParsedDateFormats() ([]dates.Format, error) {
	return dates.ParseFormats(i.DateFormats)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
