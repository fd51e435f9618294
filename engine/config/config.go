// Package config holds the settings threaded into a Loader.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultSearchRoot is used when no search roots are configured.
const DefaultSearchRoot = "./"

// Config is the on-disk shape of the importer settings.
type Config struct {
	SearchRoots []string `json:"search_roots" toml:"search_roots" yaml:"search_roots"`
	LogLevel    string   `json:"log_level" toml:"log_level" yaml:"log_level"`
	Workers     int      `json:"workers" toml:"workers" yaml:"workers"`
	FlipImagesY bool     `json:"flip_images_y" toml:"flip_images_y" yaml:"flip_images_y"`
	Watch       bool     `json:"watch" toml:"watch" yaml:"watch"`
	Profiling   bool     `json:"profiling" toml:"profiling" yaml:"profiling"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		SearchRoots: []string{DefaultSearchRoot},
		LogLevel:    "info",
		Workers:     4,
	}
}

// Load reads a config file, picking the codec from its extension (.toml, .yaml, .yml or .json).
// Fields absent from the file keep their Default values.
//
// Parameters:
//   - path: the config file to read
//
// Returns:
//   - Config: the decoded settings
//   - error: wrapping fs.ErrNotExist when the file is missing, or a decode error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return Default(), fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return Default(), fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.LogLevel = common.Coalesce(strings.TrimSpace(cfg.LogLevel), "info")
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// Roots returns the search roots with "~" expanded and a trailing separator on each,
// so that root + filename names the candidate file exactly.
func (c Config) Roots() []string {
	return NormalizeRoots(c.SearchRoots)
}

// NormalizeRoots expands and terminates each root. An empty list yields DefaultSearchRoot.
func NormalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if expanded, err := homedir.Expand(root); err == nil {
			root = expanded
		}
		if !strings.HasSuffix(root, "/") && !strings.HasSuffix(root, string(filepath.Separator)) {
			root += string(filepath.Separator)
		}
		out = append(out, root)
	}
	if len(out) == 0 {
		out = append(out, DefaultSearchRoot)
	}
	return out
}
