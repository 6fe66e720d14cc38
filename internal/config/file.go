package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/flagx"
	"gopkg.in/yaml.v2"
)

// fileConfig is the file DTO. Pointer fields tell "absent" from "zero".
type fileConfig struct {
	StorageDriver *string `json:"storage_driver" yaml:"storage_driver"`
	DatabaseDSN   *string `json:"database_dsn" yaml:"database_dsn"`
	LogLevel      *string `json:"log_level" yaml:"log_level"`
	LogFormat     *string `json:"log_format" yaml:"log_format"`
	SeedDemoData  *bool   `json:"seed_demo_data" yaml:"seed_demo_data"`
}

// parseFile overlays cfg with the file named by -c/-config, if any. Files
// ending in .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.StorageDriver != nil {
		cfg.StorageDriver = *fc.StorageDriver
	}
	if fc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *fc.DatabaseDSN
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.SeedDemoData != nil {
		cfg.SeedDemoData = *fc.SeedDemoData
	}
	return nil
}
