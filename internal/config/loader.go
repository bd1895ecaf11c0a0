package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/preset files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/beanmachine/config
}

// BoardsDir holds default.yaml and every preset.
func (p Paths) BoardsDir() string {
	return filepath.Join(p.BaseDir, "boards")
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "boards", "default.yaml")
}

func (p Paths) PresetPath(preset string) string {
	return filepath.Join(p.BaseDir, "boards", preset+".yaml")
}

// Loader reads YAML configs and merges default → preset.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: preset name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → preset (preset optional).
// It returns the merged RawConfig (without defaults applied).
func (l *Loader) LoadMerged(preset string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[preset]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if preset != "" {
		presetCfg, err := readYAML(l.paths.PresetPath(preset))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read preset %q: %w", preset, err)
		}
		merged = mergeRaw(defCfg, presetCfg)
	}
	if err := ValidateRaw(merged); err != nil {
		return RawConfig{}, err
	}

	l.mu.Lock()
	l.cache[preset] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after the watcher reports a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: set fields in b win.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// board
	if b.Board.Levels != nil {
		out.Board.Levels = b.Board.Levels
	}
	if b.Board.Balls != nil {
		out.Board.Balls = b.Board.Balls
	}
	if b.Board.P != nil {
		out.Board.P = b.Board.P
	}

	// pacing
	switch {
	case out.Pacing == nil && b.Pacing != nil:
		c := *b.Pacing
		out.Pacing = &c
	case out.Pacing != nil && b.Pacing != nil:
		c := *out.Pacing
		if b.Pacing.PegDelay != nil {
			c.PegDelay = b.Pacing.PegDelay
		}
		if b.Pacing.BallDelay != nil {
			c.BallDelay = b.Pacing.BallDelay
		}
		if b.Pacing.DropDelay != nil {
			c.DropDelay = b.Pacing.DropDelay
		}
		if b.Pacing.Speed != nil {
			c.Speed = b.Pacing.Speed
		}
		out.Pacing = &c
	}

	return out
}
