package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/workbench/internal/runtimepath"
)

// EnvPrefix prefixes every environment override, e.g. WORKBENCH_FEED_URL.
const EnvPrefix = "WORKBENCH"

type LoadResult struct {
	Config *Config
	Files  []string // all loaded files, in load order
}

func DefaultConfigPath() (string, error) {
	dir, err := runtimepath.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from the standard location and returns an
// effective config ready for use.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	res, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadFromPath layers, in order: defaults, included files, the file at
// path, then WORKBENCH_* environment variables. A missing file is not an
// error.
func LoadFromPath(path string) (*LoadResult, error) {
	cfg := DefaultConfig()
	var files []string

	if exists, err := pathExists(path); err != nil {
		return nil, err
	} else if exists {
		loaded, err := loadFile(cfg, path, map[string]struct{}{})
		if err != nil {
			return nil, err
		}
		files = loaded
	}
	cfg.Include = nil

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Files: files}, nil
}

// loadFile decodes path over cfg after its includes. Includes are resolved
// relative to the including file; a directory include loads its *.yaml
// files in name order.
func loadFile(cfg *Config, path string, seen map[string]struct{}) ([]string, error) {
	canonical, err := canonicalPath(path)
	if err != nil {
		return nil, err
	}
	if _, ok := seen[canonical]; ok {
		return nil, fmt.Errorf("include cycle at %s", path)
	}
	seen[canonical] = struct{}{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var head struct {
		Include []string `yaml:"include"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var files []string
	for _, inc := range head.Include {
		paths, err := expandInclude(path, inc)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			loaded, err := loadFile(cfg, p, seen)
			if err != nil {
				return nil, err
			}
			files = append(files, loaded...)
		}
	}

	if err := decodeStrictYAML(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return append(files, path), nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Best-effort; still use abs.
		return abs, nil
	}
	return real, nil
}

func expandInclude(baseFile string, include string) ([]string, error) {
	include = strings.TrimSpace(include)
	if include == "" {
		return nil, fmt.Errorf("%s: empty include", baseFile)
	}
	path := include
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(baseFile), path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: include %q: %w", baseFile, include, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%s: include %q: %w", baseFile, include, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			out = append(out, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}
