// Package config loads jargon.toml, mirroring internal/project's
// surge.toml handling: an optional manifest found by walking upward from a
// start directory, with built-in defaults when none exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultStackMax = 4096
	DefaultHeapMax  = 65536
)

// Config is the decoded shape of jargon.toml.
type Config struct {
	VM  VMConfig  `toml:"vm"`
	Run RunConfig `toml:"run"`
}

type VMConfig struct {
	StackMax int `toml:"stack_max"`
	HeapMax  int `toml:"heap_max"`
}

type RunConfig struct {
	Verbose bool   `toml:"verbose"`
	Entry   string `toml:"entry"`
}

// Default returns the built-in configuration used when no jargon.toml is
// found — a project manifest is convenient but never required.
func Default() Config {
	return Config{VM: VMConfig{StackMax: DefaultStackMax, HeapMax: DefaultHeapMax}}
}

// Load walks upward from startDir looking for jargon.toml, the way
// findSurgeToml walks for surge.toml. Returns Default() and ok=false, with
// no error, when none is found — config is optional, not required.
func Load(startDir string) (cfg Config, ok bool, err error) {
	path, found, err := find(startDir)
	if err != nil {
		return Config{}, false, err
	}
	if !found {
		return Default(), false, nil
	}
	cfg = Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.VM.StackMax <= 0 {
		cfg.VM.StackMax = DefaultStackMax
	}
	if cfg.VM.HeapMax <= 0 {
		cfg.VM.HeapMax = DefaultHeapMax
	}
	return cfg, true, nil
}

func find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "jargon.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
