// Package config loads cmd/tendril's CLI configuration the way
// aretext locates its per-user config file (via adrg/xdg) and the way
// holomush layers config sources (file, then flags, each overriding
// the last) — here built on koanf/v2 instead of hand-rolled merging
// (SPEC_FULL.md §10.2).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the settings cmd/tendril's subcommands read at startup.
type Config struct {
	StepBudget   int    `koanf:"step_budget"`
	MaxSolutions int    `koanf:"max_solutions"`
	Output       string `koanf:"output"`
	Color        bool   `koanf:"color"`
	MetricsAddr  string `koanf:"metrics_addr"`
}

// Defaults returns the configuration used when no config file exists
// and no flag overrides it.
func Defaults() Config {
	return Config{
		StepBudget:   2_000_000,
		MaxSolutions: 0,
		Output:       "text",
		Color:        true,
		MetricsAddr:  "",
	}
}

// Path returns the per-user config file path, following aretext's own
// xdg.ConfigFile convention but under a "tendril" directory.
func Path() (string, error) {
	return xdg.ConfigFile(filepath.Join("tendril", "config.yaml"))
}

// Load builds a Config from, in increasing priority: built-in
// defaults, the YAML file (if it exists) at the --config flag's path or
// else at Path(), then flags already parsed into fs. A missing config file is not an error — only a
// malformed one is.
func Load(fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	out := Defaults()

	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	if fs != nil {
		if v, flagErr := fs.GetString("config"); flagErr == nil && v != "" {
			path = v
		}
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("config: applying flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &out); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return out, nil
}

// defaultConfigYAML is the template written by WriteDefault, mirroring
// aretext/app's LoadOrCreateConfig first-run behavior (write the
// default config out, then load it next time).
const defaultConfigYAML = `# tendril CLI configuration (see 'tendril --help')
step_budget: 2000000
max_solutions: 0
output: text
color: true
metrics_addr: ""
`

// WriteDefault writes the built-in defaults to Path(), creating the
// containing directory if needed. An existing file is left untouched and
// reported as an error.
func WriteDefault() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return "", fmt.Errorf("config: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("config: creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return "", fmt.Errorf("config: writing %s: %w", path, err)
	}
	return path, nil
}
