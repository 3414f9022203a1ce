package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = "dynaspec.yaml"

// Config holds project defaults for the dynaspec commands. Loaded from
// dynaspec.yaml if present; flags override it.
type Config struct {
	// Output is the markdown file written by render.
	Output string `yaml:"output"`

	// ClientDir and Package control where gen writes the typed client.
	ClientDir string `yaml:"clientDir"`
	Package   string `yaml:"package"`

	// CacheDir keeps render checksums between runs. Empty means checksums
	// only last for the current process.
	CacheDir string `yaml:"cacheDir"`

	LogLevel string `yaml:"logLevel"`

	// InclusiveBetween makes between include its bounds.
	InclusiveBetween bool `yaml:"inclusiveBetween"`

	AWS AWSConfig `yaml:"aws"`

	// WatchDebounce is how long render --watch waits for file events to
	// settle, e.g. 300ms.
	WatchDebounce time.Duration `yaml:"watchDebounce"`
}

type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Profile  string `yaml:"profile"`
}

// LoadConfig reads the config at path. With an empty path it searches for
// dynaspec.yaml from dir up to the filesystem root and returns an empty
// config if there is none. Relative directories in the file are resolved
// against the file's directory.
func LoadConfig(path, dir string) (Config, string, error) {
	var cfg Config

	if path == "" {
		path = findConfigFile(dir)
		if path == "" {
			return cfg, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, "", fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, "", fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.Output, &cfg.ClientDir, &cfg.CacheDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return cfg, path, nil
}

// findConfigFile searches for dynaspec.yaml walking up from dir.
func findConfigFile(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}

	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
