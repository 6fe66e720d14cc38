package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/vehiclereg/internal/flagx"
)

// parseFlags overlays cfg with -d, -s, -l, -f and -seed. Other arguments are
// filtered out first so foreign flags do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgsWithBools(args, []string{"-d", "-s", "-l", "-f"}, []string{"-seed"})

	fs := flag.NewFlagSet("vehiclereg", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.StorageDriver, "d", cfg.StorageDriver, "storage driver (sqlite, postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "s", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json)")
	fs.BoolVar(&cfg.SeedDemoData, "seed", cfg.SeedDemoData, "seed demo vehicles")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return nil
}
