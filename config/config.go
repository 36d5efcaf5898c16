// Package config holds the engine's configuration record (CSV framing,
// DELETE safety flag), rendered as an explicit value passed to
// engine.NewContext rather than package-level state.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/cqsql/cq/csvio"
)

// Config is the configuration record threaded through a query's
// evaluation: CSV framing defaults and the DELETE-without-WHERE force
// flag (set by the CLI surface; the core exposes the check).
type Config struct {
	Delimiter   string `toml:"delimiter"`
	Quote       string `toml:"quote"`
	HasHeader   *bool  `toml:"has_header"`
	ForceDelete bool   `toml:"force_delete"`
}

// Default returns a Config matching csvio.DefaultOptions with
// ForceDelete off.
func Default() Config {
	return Config{Delimiter: ",", Quote: "\"", HasHeader: boolPtr(true)}
}

// Load reads an optional TOML file at path, falling back to Default()
// for any field it doesn't set. A missing file is not an error: most
// invocations have no config file and rely on CLI flags alone.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// CSVOptions renders this Config as csvio.Options for Load/Save.
func (c Config) CSVOptions() csvio.Options {
	opts := csvio.DefaultOptions()
	if c.Delimiter != "" {
		opts.Delimiter = rune(c.Delimiter[0])
	}
	if c.Quote != "" {
		opts.Quote = rune(c.Quote[0])
	}
	if c.HasHeader != nil {
		opts.HasHeader = *c.HasHeader
	}
	return opts
}

func boolPtr(b bool) *bool { return &b }
