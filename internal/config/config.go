package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultChunkSize is the single-vs-chunked threshold and the chunk size
// for chunked uploads.
const DefaultChunkSize = 10 * 1024 * 1024 // 10MB

// Config represents the application configuration
type Config struct {
	Upload   Upload `yaml:"upload"`
	LogLevel string `yaml:"log_level"`
}

// Upload represents upload-specific configuration
type Upload struct {
	Directory    string `yaml:"directory"`
	BaseURL      string `yaml:"base_url"`
	Prefix       string `yaml:"prefix"`
	Concurrency  int    `yaml:"concurrency"`
	ChunkSize    int64  `yaml:"chunk_size"`
	DryRun       bool   `yaml:"dry_run"`
	Recursive    bool   `yaml:"recursive"`
	ShowProgress bool   `yaml:"show_progress"`
	MetricsAddr  string `yaml:"metrics_addr"`
	Journal      string `yaml:"journal"`
}

// Load loads configuration from file and command line flags
func Load(configFile, directory string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Upload: Upload{
			Concurrency:  5,
			ChunkSize:    DefaultChunkSize,
			Recursive:    true,
			ShowProgress: true,
		},
	}

	// Load from YAML file if provided
	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with command line flags
	if err := loadFromFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	if directory != "" {
		cfg.Upload.Directory = directory
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func loadFromFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("base-url") {
		cfg.Upload.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("prefix") {
		cfg.Upload.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("concurrency") {
		cfg.Upload.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("chunk-size") {
		cfg.Upload.ChunkSize, _ = flags.GetInt64("chunk-size")
	}
	if flags.Changed("dry-run") {
		cfg.Upload.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("no-recursive") {
		noRecursive, _ := flags.GetBool("no-recursive")
		cfg.Upload.Recursive = !noRecursive
	}
	if flags.Changed("show-progress") {
		cfg.Upload.ShowProgress, _ = flags.GetBool("show-progress")
	}
	if flags.Changed("metrics-addr") {
		cfg.Upload.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("journal") {
		cfg.Upload.Journal, _ = flags.GetString("journal")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("verbose") {
		if verbose, _ := flags.GetBool("verbose"); verbose {
			cfg.LogLevel = "debug"
		}
	}

	return nil
}

func (c *Config) validate() error {
	if c.Upload.Directory == "" {
		return fmt.Errorf("directory is required")
	}

	if c.Upload.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	if c.Upload.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}

	if c.Upload.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}

	return nil
}
