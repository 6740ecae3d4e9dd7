package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/iconpress/pkg/errors"
	"github.com/matzehuels/iconpress/pkg/icongen"
)

// configFileName is the default config file looked up under configDir().
const configFileName = "config.toml"

// fileConfig mirrors the TOML config file layout:
//
//	modes = ["ico", "icns", "favicon"]
//
//	[names]
//	ico = "app"
//	icns = "app"
//
//	[sizes]
//	ico = [16, 32, 48]
//	favicon = [32, 128]
type fileConfig struct {
	Modes []string         `toml:"modes"`
	Names icongen.Names    `toml:"names"`
	Sizes map[string][]int `toml:"sizes"`
}

// loadConfig reads the config file at path, or the default XDG location when
// path is empty. A missing default file is not an error; a missing explicit
// file is.
func loadConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &fileConfig{}, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &fileConfig{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to read config file %s", path)
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to parse config file %s", path)
	}
	return &cfg, nil
}

// apply merges the file config into opts. Values already set on opts (from
// flags) win over file values.
func (cfg *fileConfig) apply(opts *icongen.Options) {
	if len(opts.Modes) == 0 && len(cfg.Modes) > 0 {
		for _, m := range cfg.Modes {
			opts.Modes = append(opts.Modes, icongen.Mode(m))
		}
	}
	if opts.Names.ICO == "" {
		opts.Names.ICO = cfg.Names.ICO
	}
	if opts.Names.ICNS == "" {
		opts.Names.ICNS = cfg.Names.ICNS
	}
	for mode, sizes := range cfg.Sizes {
		if len(sizes) == 0 {
			continue
		}
		if opts.Sizes == nil {
			opts.Sizes = make(map[icongen.Mode][]int)
		}
		if _, set := opts.Sizes[icongen.Mode(mode)]; !set {
			opts.Sizes[icongen.Mode(mode)] = sizes
		}
	}
}
