// Package config provides unified configuration for the atfconv tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the unified configuration for all atfconv tools.
type Config struct {
	// DataDir is the base directory for catalog and scratch files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ScratchDir is where remote sources are staged before conversion
	ScratchDir string `json:"scratch_dir" yaml:"scratch_dir"`

	// Catalog configuration
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`
}

// CatalogConfig holds run-catalog configuration.
type CatalogConfig struct {
	// Enabled controls whether runs are recorded
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the catalog database path
	Path string `json:"path" yaml:"path"`
}

// StorageConfig holds trace storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// OutputConfig holds converted-output configuration.
type OutputConfig struct {
	// Header controls whether converted files carry the ATF comment header
	Header bool `json:"header" yaml:"header"`

	// Snappy compresses converted output with snappy framing
	Snappy bool `json:"snappy" yaml:"snappy"`
}

// DefaultConfig returns the default configuration for local use.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/atfconv",
		Catalog: CatalogConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			Type: "local",
		},
		Output: OutputConfig{
			Header: true,
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/atfconv"
	}
	if c.ScratchDir == "" {
		c.ScratchDir = filepath.Join(c.DataDir, "scratch")
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = filepath.Join(c.DataDir, "catalog.db")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the ATFCONV_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("ATFCONV_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ATFCONV_SCRATCH_DIR"); v != "" {
		cfg.ScratchDir = v
	}

	// Catalog configuration
	if v := os.Getenv("ATFCONV_CATALOG_ENABLED"); v != "" {
		cfg.Catalog.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("ATFCONV_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}

	// Storage configuration
	if v := os.Getenv("ATFCONV_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("ATFCONV_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("ATFCONV_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("ATFCONV_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("ATFCONV_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}

	// Output configuration
	if v := os.Getenv("ATFCONV_OUTPUT_HEADER"); v != "" {
		cfg.Output.Header = v == "true" || v == "1"
	}
	if v := os.Getenv("ATFCONV_OUTPUT_SNAPPY"); v != "" {
		cfg.Output.Snappy = v == "true" || v == "1"
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.ScratchDir,
	}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
