// Package config holds the application configuration, loadable from a
// YAML file on top of built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Version string `yaml:"version"`

	Form struct {
		URL               string `yaml:"url"`
		DevToolsURL       string `yaml:"devtools_url"`
		NavigateTimeoutMS int    `yaml:"navigate_timeout_ms"`
		WaitTimeoutMS     int    `yaml:"wait_timeout_ms"`
		ConsentTimeoutMS  int    `yaml:"consent_timeout_ms"`
	} `yaml:"form"`

	Scan struct {
		Alphabet  string `yaml:"alphabet"`
		CachePath string `yaml:"cache_path"`
	} `yaml:"scan"`

	Suite struct {
		Trials      int    `yaml:"trials"`
		Seed        int64  `yaml:"seed"`
		PicturesDir string `yaml:"pictures_dir"`
	} `yaml:"suite"`

	Sqlite struct {
		Dsn    string `yaml:"dsn"`
		Prefix string `yaml:"prefix"`
	} `yaml:"sqlite"`

	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
		File   string   `yaml:"file"`
	} `yaml:"log"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	cfg := &Config{Version: "1.0.0"}
	cfg.Form.URL = "https://demoqa.com/automation-practice-form"
	cfg.Form.DevToolsURL = "http://127.0.0.1:9222"
	cfg.Form.NavigateTimeoutMS = 15000
	cfg.Form.WaitTimeoutMS = 1000
	cfg.Form.ConsentTimeoutMS = 1000
	cfg.Scan.Alphabet = "abcdefghijklmnopqrstuvwxyz"
	cfg.Scan.CachePath = "possible_values.json"
	cfg.Suite.Trials = 100
	cfg.Suite.PicturesDir = "pictures"
	cfg.Sqlite.Dsn = "db.sqlite3"
	cfg.Sqlite.Prefix = "formprobe_"
	cfg.Log.Level = "debug"
	cfg.Log.Writer = []string{"console"}
	cfg.Log.File = "formprobe.log"
	return cfg
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Form.URL == "" {
		return fmt.Errorf("form.url must not be empty")
	}
	if c.Scan.Alphabet == "" {
		return fmt.Errorf("scan.alphabet must not be empty")
	}
	if c.Suite.Trials <= 0 {
		return fmt.Errorf("suite.trials must be positive, got %d", c.Suite.Trials)
	}
	return nil
}
