package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Slack struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"slack"`
	Tpex struct {
		BaseURL string `yaml:"base_url"`
		Referer string `yaml:"referer"`
	} `yaml:"tpex"`
	HTTP struct {
		// StrictTLS disables the one-time insecure retry after a
		// certificate verification failure.
		StrictTLS         bool    `yaml:"strict_tls"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"http"`
	Radar struct {
		TopN     int     `yaml:"top_n"`
		Window   int     `yaml:"window"`
		Days     int     `yaml:"days"`
		Strength float64 `yaml:"strength"`
		R2       float64 `yaml:"r2"`
		Title    string  `yaml:"title"`
	} `yaml:"radar"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := os.Getenv("TPEX_BASE_URL"); v != "" {
		cfg.Tpex.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Radar.TopN == 0 {
		cfg.Radar.TopN = 5
	}
	if cfg.Radar.Window == 0 {
		cfg.Radar.Window = 300
	}
	if cfg.Radar.Days == 0 {
		cfg.Radar.Days = 10
	}
	if cfg.Radar.Strength == 0 {
		cfg.Radar.Strength = 0.01
	}
	if cfg.Radar.R2 == 0 {
		cfg.Radar.R2 = 0.10
	}
	if cfg.HTTP.RequestsPerSecond == 0 {
		cfg.HTTP.RequestsPerSecond = 2
	}

	return cfg, nil
}

// Validate checks that all required fields are in range.
func (c *Config) Validate() error {
	if c.Radar.TopN <= 0 {
		return fmt.Errorf("radar.top_n must be positive")
	}
	if c.Radar.Window <= 0 {
		return fmt.Errorf("radar.window must be positive")
	}
	if c.Radar.Days <= 0 {
		return fmt.Errorf("radar.days must be positive")
	}
	if c.Radar.Strength <= 0 {
		return fmt.Errorf("radar.strength must be positive")
	}
	if c.Radar.R2 < 0 || c.Radar.R2 >= 1 {
		return fmt.Errorf("radar.r2 must be in [0, 1)")
	}
	return nil
}
