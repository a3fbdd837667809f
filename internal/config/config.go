// Package config provides configuration management for mcpsync using Viper.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/internal/platform/claude"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// MCPSYNC_STORES_CLAUDE_PATH.
const EnvPrefix = "MCPSYNC"

// ConfigDirEnv names an extra directory searched for config.yaml.
const ConfigDirEnv = "MCPSYNC_CONFIG_DIR"

// DefaultRetention is the number of backups kept per store by default.
const DefaultRetention = 5

// CurrentVersion is the newest config version this build understands.
const CurrentVersion = 1

// Config represents the top-level configuration structure.
type Config struct {
	Version      int          `mapstructure:"version" yaml:"version" json:"version" toml:"version"`
	MachineID    string       `mapstructure:"machine_id" yaml:"machine_id" json:"machine_id" toml:"machine_id"`
	Stores       StoresConfig `mapstructure:"stores" yaml:"stores" json:"stores" toml:"stores"`
	BaselineFile string       `mapstructure:"baseline_file" yaml:"baseline_file" json:"baseline_file" toml:"baseline_file"`
	Backup       BackupConfig `mapstructure:"backup" yaml:"backup" json:"backup" toml:"backup"`
}

// StoresConfig holds per-store overrides.
type StoresConfig struct {
	Claude   ClaudeConfig `mapstructure:"claude" yaml:"claude" json:"claude" toml:"claude"`
	OpenCode StoreConfig  `mapstructure:"opencode" yaml:"opencode" json:"opencode" toml:"opencode"`
}

// StoreConfig overrides where a store's configuration file lives.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path" toml:"path"`
}

// ClaudeConfig extends StoreConfig with how disabled servers are written.
type ClaudeConfig struct {
	Path         string `mapstructure:"path" yaml:"path" json:"path" toml:"path"`
	DisableStyle string `mapstructure:"disable_style" yaml:"disable_style" json:"disable_style" toml:"disable_style"`
}

// BackupConfig controls copies taken before store files are written.
type BackupConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled" toml:"enabled"`
	Retention int    `mapstructure:"retention" yaml:"retention" json:"retention" toml:"retention"`
	Dir       string `mapstructure:"dir" yaml:"dir" json:"dir" toml:"dir"`
}

// ClaudePath returns the configured Claude Desktop file or the default.
func (c *Config) ClaudePath() string {
	if c.Stores.Claude.Path != "" {
		return c.Stores.Claude.Path
	}
	return paths.StoreConfigPath(paths.StoreClaude)
}

// OpenCodePath returns the configured OpenCode file or the default.
func (c *Config) OpenCodePath() string {
	if c.Stores.OpenCode.Path != "" {
		return c.Stores.OpenCode.Path
	}
	return paths.StoreConfigPath(paths.StoreOpenCode)
}

// BaselinePath returns the configured baseline file or the default.
func (c *Config) BaselinePath() string {
	if c.BaselineFile != "" {
		return c.BaselineFile
	}
	return paths.BaselineFile()
}

// BackupDir returns the configured backup root or the default.
func (c *Config) BackupDir() string {
	if c.Backup.Dir != "" {
		return c.Backup.Dir
	}
	return paths.BackupRoot()
}

// Init resets Viper and installs defaults, search paths, and environment
// bindings. Call this once at application startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	if dir := strings.TrimSpace(os.Getenv(ConfigDirEnv)); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to reach it through Unmarshal.
	viper.SetDefault("version", CurrentVersion)
	viper.SetDefault("machine_id", "")
	viper.SetDefault("stores.claude.path", "")
	viper.SetDefault("stores.claude.disable_style", string(claude.DisablePrefix))
	viper.SetDefault("stores.opencode.path", "")
	viper.SetDefault("baseline_file", "")
	viper.SetDefault("backup.enabled", true)
	viper.SetDefault("backup.retention", DefaultRetention)
	viper.SetDefault("backup.dir", "")
}

// Load reads the configuration file and validates the result.
// If path is provided, it reads from that specific file and a missing file is
// an error. If path is empty, it searches the default locations and falls
// back to defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file uses defaults.
		case errors.As(err, &notFound):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrNotFound)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errors.Join(errs...), "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Stores: StoresConfig{
			Claude: ClaudeConfig{DisableStyle: string(claude.DisablePrefix)},
		},
		Backup: BackupConfig{Enabled: true, Retention: DefaultRetention},
	}
}

// Path returns the config file Viper read, or "" when defaults were used.
func Path() string {
	return viper.ConfigFileUsed()
}
