// Package config loads presetctl settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/Hapfel1/character-presets-tool/internal/fileperm"
	"github.com/Hapfel1/character-presets-tool/internal/savefile"
	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-hclog"
)

// Config controls logging, save discovery and where the preset table lives
// inside a save.
type Config struct {
	LogLevel     string `env:"PRESETCTL_LOG_LEVEL"     envDefault:"warn"`
	JSONLog      bool   `env:"PRESETCTL_JSON_LOG"`
	SaveDir      string `env:"PRESETCTL_SAVE_DIR"`
	BackupSuffix string `env:"PRESETCTL_BACKUP_SUFFIX" envDefault:".backup"`
	TableEntry   int    `env:"PRESETCTL_TABLE_ENTRY"   envDefault:"10"`
	TableOffset  int    `env:"PRESETCTL_TABLE_OFFSET"  envDefault:"0"`
	ExportMode   string `env:"PRESETCTL_EXPORT_MODE"   envDefault:"0644"`
	NoColor      string `env:"NO_COLOR"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given environment instead of the process one.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no command can work with.
func (c Config) Validate() error {
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.TableEntry < 0 {
		return fmt.Errorf("PRESETCTL_TABLE_ENTRY must not be negative, got %d", c.TableEntry)
	}
	if c.TableOffset < 0 {
		return fmt.Errorf("PRESETCTL_TABLE_OFFSET must not be negative, got %d", c.TableOffset)
	}
	if c.BackupSuffix == "" {
		return fmt.Errorf("PRESETCTL_BACKUP_SUFFIX must not be empty")
	}
	mode, err := fileperm.Parse(c.ExportMode)
	if err != nil {
		return fmt.Errorf("PRESETCTL_EXPORT_MODE: %w", err)
	}
	if !fileperm.OwnerCanWrite(mode) {
		return fmt.Errorf("PRESETCTL_EXPORT_MODE %s leaves the owner without write access", fileperm.Format(mode))
	}
	return nil
}

// DocumentMode is the permission set for exported documents.
func (c Config) DocumentMode() os.FileMode {
	mode, err := fileperm.Parse(c.ExportMode)
	if err != nil {
		return fileperm.DefaultDocumentMode
	}
	return mode
}

// ColorDisabled follows the NO_COLOR convention: any non-empty value.
func (c Config) ColorDisabled() bool {
	return c.NoColor != ""
}

// TableLayout locates a table of recordSize-wide slots in a save.
func (c Config) TableLayout(recordSize int) savefile.Layout {
	return savefile.Layout{
		Entry:      c.TableEntry,
		Offset:     c.TableOffset,
		RecordSize: recordSize,
	}
}
