// Package config loads pcx configuration from .pcx/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete pcx configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Search  SearchConfig  `json:"search" mapstructure:"search"`
	Workers WorkersConfig `json:"workers" mapstructure:"workers"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig contains scan defaults applied when a request leaves them unset
type ScanConfig struct {
	Extensions       []string `json:"extensions" mapstructure:"extensions"`
	MaxDepth         int      `json:"maxDepth" mapstructure:"maxDepth"`
	MaxFiles         int      `json:"maxFiles" mapstructure:"maxFiles"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	TimeoutSeconds   int      `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	Compactness      int      `json:"compactness" mapstructure:"compactness"`
}

// SearchConfig contains search defaults
type SearchConfig struct {
	ContextLines          int `json:"contextLines" mapstructure:"contextLines"`
	TopN                  int `json:"topN" mapstructure:"topN"`
	TimeoutSeconds        int `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	ConceptTimeoutSeconds int `json:"conceptTimeoutSeconds" mapstructure:"conceptTimeoutSeconds"`
}

// WorkersConfig bounds the parse worker pool
type WorkersConfig struct {
	ParseWorkers int `json:"parseWorkers" mapstructure:"parseWorkers"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultExtensions is the extension allow-list used when neither the
// request, the manifest, nor the config names one.
var DefaultExtensions = []string{".py", ".rs", ".cs", ".js", ".jsx", ".ts", ".tsx"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Scan: ScanConfig{
			Extensions:       append([]string(nil), DefaultExtensions...),
			MaxDepth:         6,
			MaxFiles:         1000,
			MaxFileSizeBytes: 1_000_000,
			TimeoutSeconds:   60,
			Compactness:      1,
		},
		Search: SearchConfig{
			ContextLines:          2,
			TopN:                  10,
			TimeoutSeconds:        60,
			ConceptTimeoutSeconds: 20,
		},
		Workers: WorkersConfig{
			ParseWorkers: 0, // 0 = pick from CPU count
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <root>/.pcx/config.json, falling back to
// defaults when the file does not exist.
func Load(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".pcx"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <root>/.pcx/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".pcx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Scan.MaxDepth < 0 {
		return &ConfigError{Field: "scan.maxDepth", Message: "must be >= 0"}
	}
	if c.Scan.Compactness < 0 || c.Scan.Compactness > 3 {
		return &ConfigError{Field: "scan.compactness", Message: "must be between 0 and 3"}
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
