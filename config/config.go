// Package config loads optional compiler defaults from a .miniccrc.yaml file
// sitting next to the input source, generalized from
// j-alexander3375-Lotus/src/flags.go's CompilerOptions — here the options
// have a file-backed default layer that CLI flags still override.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the subset of compiler behavior a project can pin via file
// instead of repeating flags on every invocation.
type Config struct {
	Target     string `yaml:"target"` // e.g. "arm64/darwin"; empty means auto-detect
	OutPath    string `yaml:"outPath"`
	Verbose    bool   `yaml:"verbose"`
	ShowStats  bool   `yaml:"showStats"`
	TimingInfo bool   `yaml:"timingInfo"`
}

// Load reads and parses path. A missing file is not an error — it returns a
// zero-value Config so callers fall back entirely to flag defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
