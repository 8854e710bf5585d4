package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"callroot/internal/paths"
)

// CurrentVersion is the only config schema version this build understands
const CurrentVersion = 1

// Config represents the complete callroot configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Workspace WorkspaceConfig `json:"workspace" mapstructure:"workspace"`
	Index     IndexConfig     `json:"index" mapstructure:"index"`
	Pipeline  PipelineConfig  `json:"pipeline" mapstructure:"pipeline"`
	Expansion ExpansionConfig `json:"expansion" mapstructure:"expansion"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
	Metrics   MetricsConfig   `json:"metrics" mapstructure:"metrics"`
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry"`
}

// WorkspaceConfig locates the workspace manifest
type WorkspaceConfig struct {
	// Manifest is relative to the workspace root unless absolute
	Manifest string `json:"manifest" mapstructure:"manifest"`
}

// IndexConfig contains SCIP index defaults
type IndexConfig struct {
	// DefaultPath is used for projects that do not name an index
	DefaultPath string `json:"defaultPath" mapstructure:"defaultPath"`
	// PositionEncoding is how SCIP columns are counted: utf-8 or utf-16.
	// Empty means use whatever the index metadata declares.
	PositionEncoding string `json:"positionEncoding" mapstructure:"positionEncoding"`
}

// PipelineConfig contains call hierarchy pipeline policy
type PipelineConfig struct {
	// TimeoutMs bounds a single invocation; 0 disables the timeout
	TimeoutMs int `json:"timeoutMs" mapstructure:"timeoutMs"`
}

// ExpansionConfig bounds lazy call edge expansion by presenters
type ExpansionConfig struct {
	Direction string `json:"direction" mapstructure:"direction"`
	MaxDepth  int    `json:"maxDepth" mapstructure:"maxDepth"`
	MaxNodes  int    `json:"maxNodes" mapstructure:"maxNodes"`
}

// StorageConfig locates the redirect database
type StorageConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	// File receives a copy of all logs when set
	File string `json:"file" mapstructure:"file"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string `json:"textfile" mapstructure:"textfile"`
}

// TelemetryConfig selects the span exporter: none or stdout
type TelemetryConfig struct {
	Traces string `json:"traces" mapstructure:"traces"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Workspace: WorkspaceConfig{
			Manifest: filepath.Join(paths.DataDirName, paths.ManifestFileName),
		},
		Index: IndexConfig{
			DefaultPath: "index.scip",
		},
		Pipeline: PipelineConfig{
			TimeoutMs: 30000,
		},
		Expansion: ExpansionConfig{
			Direction: "callers",
			MaxDepth:  2,
			MaxNodes:  100,
		},
		Storage: StorageConfig{
			Path: filepath.Join(paths.DataDirName, paths.DatabaseFileName),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Telemetry: TelemetryConfig{
			Traces: "none",
		},
	}
}

// setDefaults mirrors DefaultConfig into viper so partial files merge with it
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("workspace.manifest", d.Workspace.Manifest)
	v.SetDefault("index.defaultPath", d.Index.DefaultPath)
	v.SetDefault("index.positionEncoding", d.Index.PositionEncoding)
	v.SetDefault("pipeline.timeoutMs", d.Pipeline.TimeoutMs)
	v.SetDefault("expansion.direction", d.Expansion.Direction)
	v.SetDefault("expansion.maxDepth", d.Expansion.MaxDepth)
	v.SetDefault("expansion.maxNodes", d.Expansion.MaxNodes)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("telemetry.traces", d.Telemetry.Traces)
}

// LoadConfig loads configuration from <root>/.callroot/config.json.
// CALLROOT_* environment variables override file values
// (e.g. CALLROOT_PIPELINE_TIMEOUTMS=5000).
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(paths.ConfigFileName)
	v.SetConfigType("json")
	v.AddConfigPath(paths.GetDataDir(root))

	v.SetEnvPrefix("CALLROOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.callroot/config.json
func (c *Config) Save(root string) error {
	dir, err := paths.EnsureDataDir(root)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, paths.ConfigFileName+".json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	switch c.Index.PositionEncoding {
	case "", "utf-8", "utf-16":
	default:
		return &ConfigError{Field: "index.positionEncoding", Message: "must be utf-8 or utf-16"}
	}
	switch c.Expansion.Direction {
	case "callers", "callees":
	default:
		return &ConfigError{Field: "expansion.direction", Message: "must be callers or callees"}
	}
	if c.Expansion.MaxDepth < 0 {
		return &ConfigError{Field: "expansion.maxDepth", Message: "must not be negative"}
	}
	if c.Expansion.MaxNodes <= 0 {
		return &ConfigError{Field: "expansion.maxNodes", Message: "must be positive"}
	}
	switch c.Telemetry.Traces {
	case "", "none", "stdout":
	default:
		return &ConfigError{Field: "telemetry.traces", Message: "must be none or stdout"}
	}
	if c.Pipeline.TimeoutMs < 0 {
		return &ConfigError{Field: "pipeline.timeoutMs", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
