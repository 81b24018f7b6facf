// Package config loads the optional dasplit configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

type Config struct {
	// OutDir is the default output directory for extraction.
	OutDir string `toml:"out_dir"`
	// Manifest enables writing a manifest by default.
	Manifest bool `toml:"manifest"`
	// HWCodes is the default list of wanted hw codes, eg. "0x6765,0x766".
	HWCodes string `toml:"hwcodes"`
}

// DefaultPath is where the config file is looked up if none is given.
func DefaultPath() string {
	return path.Join(xdg.ConfigHome, "dasplit", "config.toml")
}

// Load the config at p. An empty p means DefaultPath, which is allowed to not
// exist.
func Load(p string) (*Config, error) {
	explicit := p != ""
	if !explicit {
		p = DefaultPath()
	}

	var c Config
	md, err := toml.DecodeFile(p, &c)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &c, nil
		}
		return nil, fmt.Errorf("could not load config %s: %w", p, err)
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		var keys []string
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", p, strings.Join(keys, ", "))
	}
	return &c, nil
}
