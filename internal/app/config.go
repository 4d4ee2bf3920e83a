package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"fyne.io/fyne/v2"
	"github.com/BurntSushi/toml"
	"github.com/tejashwikalptaru/encore/internal/adapter/sink/beepsink"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/logger"
)

// Store backends.
const (
	StoreSQLite      = "sqlite"
	StorePreferences = "preferences"
	StoreMemory      = "memory"
)

// Sink backends.
const (
	SinkBeep = "beep"
	SinkMock = "mock"
)

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier; it names the Fyne preferences file
	AppID string `toml:"app_id"`

	// AppName is the display name
	AppName string `toml:"app_name"`

	// CatalogPath is a TOML catalog file; empty selects the built-in catalog
	CatalogPath string `toml:"catalog"`

	// ScanDir builds the catalog from the audio files under a folder and
	// takes precedence over CatalogPath
	ScanDir string `toml:"scan"`

	// MediaRoot is the folder catalog sources are resolved against
	MediaRoot string `toml:"media_root"`

	// Store selects the persistence backend: sqlite, preferences or memory
	Store string `toml:"store"`

	// StorePath is the SQLite database file; empty uses the XDG data directory
	StorePath string `toml:"store_path"`

	// Sink selects the media sink: beep or mock
	Sink string `toml:"sink"`

	// SampleRate is the audio output rate for the beep sink
	SampleRate int `toml:"sample_rate"`

	// StartDelay is the pause between loading a song and starting it
	StartDelay time.Duration `toml:"start_delay"`

	// LogLevel controls logging verbosity
	LogLevel string `toml:"log_level"`

	// LogFormat is text or json
	LogFormat string `toml:"log_format"`

	// Output receives console output (nil for os.Stdout)
	Output io.Writer `toml:"-"`

	// LogOutput receives log records (nil for os.Stderr)
	LogOutput io.Writer `toml:"-"`

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App `toml:"-"`
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:      "com.encore.app",
		AppName:    "Encore",
		Store:      StoreSQLite,
		Sink:       SinkBeep,
		SampleRate: beepsink.DefaultConfig().SampleRate,
		StartDelay: domain.DefaultStartDelay,
		LogLevel:   loggerCfg.Level.String(),
		LogFormat:  loggerCfg.Format,
	}
}

// LoadConfigFile overlays the settings of a TOML file on base. Unknown keys
// are rejected so typos do not go unnoticed.
func LoadConfigFile(path string, base Config) (Config, error) {
	cfg := base
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return base, fmt.Errorf("failed to read config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{StoreSQLite, StorePreferences, StoreMemory}, c.Store) {
		errs = append(errs, domain.NewValidationError("store", c.Store, "must be sqlite, preferences or memory"))
	}
	if !slices.Contains([]string{SinkBeep, SinkMock}, c.Sink) {
		errs = append(errs, domain.NewValidationError("sink", c.Sink, "must be beep or mock"))
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, domain.NewValidationError("log_level", c.LogLevel, "must be debug, info, warn or error"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, domain.NewValidationError("log_format", c.LogFormat, "must be text or json"))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, domain.NewValidationError("sample_rate", c.SampleRate, "must be positive"))
	}
	if c.StartDelay < 0 {
		errs = append(errs, domain.NewValidationError("start_delay", c.StartDelay, "must not be negative"))
	}
	return errors.Join(errs...)
}

// loggerConfig maps the log settings onto the logger package.
func (c Config) loggerConfig() logger.Config {
	level, ok := logger.ParseLevel(c.LogLevel)
	if !ok {
		level = slog.LevelInfo
	}
	return logger.Config{
		Level:  level,
		Format: c.LogFormat,
		Output: c.LogOutput,
	}
}
