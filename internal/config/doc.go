// Package config loads runtime configuration for the registry CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or -config.
//  3. Environment variables prefixed with VEHICLEREG_.
//  4. Command-line flags.
//
// Flags
//
//	-d string   storage driver: sqlite or postgres
//	-s string   database DSN (file path for sqlite)
//	-l string   log level: debug, info, warn, error
//	-f string   log format: text or json
//	-seed bool  seed demo vehicles when the registry is empty
//
// # File schema
//
// JSON, or YAML with the same keys when the name ends in .yaml or .yml:
//
//	{
//	  "storage_driver": "sqlite",
//	  "database_dsn": "registry.db",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "seed_demo_data": true
//	}
//
// Environment
//
//	VEHICLEREG_STORAGE_DRIVER, VEHICLEREG_DATABASE_DSN,
//	VEHICLEREG_LOG_LEVEL, VEHICLEREG_LOG_FORMAT, VEHICLEREG_SEED_DEMO_DATA
package config
