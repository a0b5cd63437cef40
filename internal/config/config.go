package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. IBDL_GATEWAY_PORT.
const EnvPrefix = "IBDL"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Gateway struct {
		Host      string        `yaml:"host"`
		Port      int           `yaml:"port"`
		ClientID  int           `yaml:"client_id" split_words:"true"`
		BasePath  string        `yaml:"base_path" split_words:"true"`
		PlainHTTP bool          `yaml:"plain_http" split_words:"true"`
		VerifyTLS bool          `yaml:"verify_tls" split_words:"true"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"gateway"`
	Download struct {
		Symbols    string `yaml:"symbols"`
		SymbolFile string `yaml:"symbol_file" split_words:"true"`
		Timeframe  string `yaml:"timeframe"`
		Days       *int   `yaml:"days"`
		Start      string `yaml:"start"`
		TZ         string `yaml:"tz"`
		WhatToShow string `yaml:"what_to_show" split_words:"true"`
		OutsideRTH bool   `yaml:"outside_rth" split_words:"true"`
	} `yaml:"download"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Journal struct {
		Path string `yaml:"sqlite_path"`
	} `yaml:"journal"`
	LogLevel string `yaml:"log_level" split_words:"true"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then fills defaults. A missing file is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "read config")
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrap(err, "parse config")
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "environment overrides")
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gateway.Host == "" {
		c.Gateway.Host = "127.0.0.1"
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 7498
	}
	if c.Gateway.BasePath == "" {
		c.Gateway.BasePath = "/v1/api"
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 30 * time.Second
	}
	if c.Download.Symbols == "" {
		c.Download.Symbols = "SPY"
	}
	if c.Download.Timeframe == "" {
		c.Download.Timeframe = "5min"
	}
	if c.Download.TZ == "" {
		c.Download.TZ = "America/New_York"
	}
	if c.Download.WhatToShow == "" {
		c.Download.WhatToShow = "MIDPOINT"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks ranges and mutually exclusive settings.
func (c *Config) Validate() error {
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return errors.Wrapf(ErrInvalid, "gateway.port %d out of range", c.Gateway.Port)
	}
	if c.Gateway.Timeout < 0 {
		return errors.Wrap(ErrInvalid, "gateway.timeout must not be negative")
	}
	if c.Download.Days != nil && *c.Download.Days < 0 {
		return errors.Wrapf(ErrInvalid, "download.days must be >= 0, got %d", *c.Download.Days)
	}
	if c.Download.Days != nil && c.Download.Start != "" {
		return errors.Wrap(ErrInvalid, "download.days and download.start are mutually exclusive")
	}
	if _, err := c.Location(); err != nil {
		return errors.Wrapf(ErrInvalid, "download.tz: %v", err)
	}
	if strings.TrimSpace(c.Download.Symbols) == "" && c.Download.SymbolFile == "" {
		return errors.Wrap(ErrInvalid, "no symbols given")
	}
	return nil
}

// Location returns the time zone used to read and render local timestamps.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Download.TZ)
}
