package internal

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/exclude"
	"github.com/starford/ansuz/internal/vault"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Limits LimitsConfig      `yaml:"limits"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	return c.Limits.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	Log       LogConfig  `yaml:"log"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	); err != nil {
		return err
	}
	return c.Log.Validate()
}

// LogConfig enables an optional rotated log file next to stderr output.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Validate validates the log file configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSizeMB, validation.Min(0)),
		validation.Field(&c.MaxBackups, validation.Min(0)),
		validation.Field(&c.MaxAgeDays, validation.Min(0)),
	)
}

// VaultConfig locates the vault and names the folders the engine hides.
type VaultConfig struct {
	Path                 string   `yaml:"path"`
	SystemFolder         string   `yaml:"system_folder"`
	ExcludedFolders      []string `yaml:"excluded_folders"`
	NameSearchExclusions []string `yaml:"name_search_exclusions"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.SystemFolder, validation.Required),
		validation.Field(&c.ExcludedFolders, validation.Each(validation.Required)),
		validation.Field(&c.NameSearchExclusions, validation.Each(validation.Required)),
	)
}

// LimitsConfig bounds the result count of listing and search operations.
type LimitsConfig struct {
	Default int `yaml:"default"`
	Max     int `yaml:"max"`
}

// Validate validates the limits configuration.
func (c *LimitsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Default, validation.Required, validation.Min(1)),
		validation.Field(&c.Max, validation.Required, validation.Min(c.Default)),
	)
}

// DefaultVaultPath returns $VAULT_PATH, or a vault under the XDG data home.
func DefaultVaultPath() string {
	if p := os.Getenv("VAULT_PATH"); p != "" {
		return p
	}
	return filepath.Join(xdg.DataHome, "ansuz", "vault")
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
			Log: LogConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Vault: VaultConfig{
			Path:                 DefaultVaultPath(),
			SystemFolder:         exclude.DefaultSystemFolder,
			NameSearchExclusions: append([]string(nil), vault.DefaultNameSearchExclusions...),
		},
		Limits: LimitsConfig{
			Default: vault.DefaultLimit,
			Max:     vault.MaxLimit,
		},
	}
}

// EngineOptions converts the vault and limits sections into engine options.
func (c *Config) EngineOptions() []vault.Option {
	return []vault.Option{
		vault.WithSystemFolder(c.Vault.SystemFolder),
		vault.WithExcludedFolders(c.Vault.ExcludedFolders...),
		vault.WithNameSearchExclusions(c.Vault.NameSearchExclusions...),
		vault.WithLimits(c.Limits.Default, c.Limits.Max),
	}
}
