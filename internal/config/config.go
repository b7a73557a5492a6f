package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // gin mode: debug, release or test
	} `yaml:"server"`

	Data struct {
		BackendFilesDir string `yaml:"backend_files_dir"`
		// Pointer so an explicit false survives the defaulting pass
		UseBackendFiles       *bool  `yaml:"use_backend_files"`
		UseSampleData         bool   `yaml:"use_sample_data"`
		APIBaseURL            string `yaml:"api_base_url"`
		RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	} `yaml:"data"`

	Analyst struct {
		URL               string `yaml:"url"`
		Enabled           bool   `yaml:"enabled"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"analyst"`

	Lexicon struct {
		Path string `yaml:"path"` // empty uses the embedded tables
	} `yaml:"lexicon"`

	Logging struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
		File        string `yaml:"file"`
		MaxSizeMB   int    `yaml:"max_size_mb"`
		MaxBackups  int    `yaml:"max_backups"`
		MaxAgeDays  int    `yaml:"max_age_days"`
		Compress    bool   `yaml:"compress"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from YAML file. A missing file yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		config.applyDefaults()
		return config, nil
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	// Expand environment variables first so an unset variable falls back to
	// the default
	c.Data.APIBaseURL = os.ExpandEnv(c.Data.APIBaseURL)
	c.Data.BackendFilesDir = os.ExpandEnv(c.Data.BackendFilesDir)
	c.Analyst.URL = os.ExpandEnv(c.Analyst.URL)
	c.Lexicon.Path = os.ExpandEnv(c.Lexicon.Path)
	c.Logging.File = os.ExpandEnv(c.Logging.File)

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}

	if c.Data.BackendFilesDir == "" {
		c.Data.BackendFilesDir = "backend/json_files"
	}
	if c.Data.UseBackendFiles == nil {
		enabled := true
		c.Data.UseBackendFiles = &enabled
	}
	if c.Data.APIBaseURL == "" {
		c.Data.APIBaseURL = "http://localhost:8000"
	}
	if c.Data.RequestTimeoutSeconds == 0 {
		c.Data.RequestTimeoutSeconds = 10
	}

	if c.Analyst.URL == "" {
		c.Analyst.URL = c.Data.APIBaseURL
	}
	if c.Analyst.RequestsPerMinute == 0 {
		c.Analyst.RequestsPerMinute = 30
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// RequestTimeout is the per-request timeout for upstream fetches.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Data.RequestTimeoutSeconds) * time.Second
}

// BackendFilesEnabled reports whether the local files source is consulted.
func (c *Config) BackendFilesEnabled() bool {
	return c.Data.UseBackendFiles == nil || *c.Data.UseBackendFiles
}
