package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/repomanager"
)

// Config holds runtime settings.
type Config struct {
	StorageDriver string `env:"STORAGE_DRIVER"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	LogLevel      string `env:"LOG_LEVEL"`
	LogFormat     string `env:"LOG_FORMAT"`
	SeedDemoData  bool   `env:"SEED_DEMO_DATA"`
}

// LoadDefaults populates c with defaults: a local SQLite file and info logs.
func (c *Config) LoadDefaults() {
	c.StorageDriver = repomanager.DriverSQLite
	c.DatabaseDSN = "registry.db"
	c.LogLevel = "info"
	c.LogFormat = logging.FormatText
	c.SeedDemoData = true
}

// Validate rejects unknown drivers, empty DSNs and unknown log settings.
func (c *Config) Validate() error {
	if _, err := repomanager.New(c.StorageDriver); err != nil {
		return err
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != logging.FormatText && c.LogFormat != logging.FormatJSON {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// LoadConfig builds a Config from os.Args and the process environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, the config file, the environment and then args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
