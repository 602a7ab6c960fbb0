package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/dehvCurtis/rustdefend/internal/logging"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// FileName is the project configuration file discovered at the scan root.
const FileName = ".rustdefend.toml"

// ProjectConfig is the per-project scan policy. All fields are optional.
type ProjectConfig struct {
	// Ignore lists detector ids whose findings are dropped entirely.
	Ignore []string `toml:"ignore"`
	// IgnoreFiles holds glob patterns (doublestar, ** supported) matched
	// against slash-separated paths relative to the scan root.
	IgnoreFiles []string `toml:"ignore_files"`
	// MinSeverity / MinConfidence drop findings below the threshold.
	MinSeverity   string `toml:"min_severity"`
	MinConfidence string `toml:"min_confidence"`
}

// Default returns the empty policy: nothing ignored, no thresholds.
func Default() ProjectConfig { return ProjectConfig{} }

// Load reads an explicitly named config file. Any failure is a configuration
// error the caller must surface.
func Load(path string) (ProjectConfig, error) {
	var cfg ProjectConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault looks for .rustdefend.toml at the scan root. A missing file
// yields the defaults; a malformed discovered file also degrades to defaults
// with a warning, since the user never named it explicitly.
func LoadOrDefault(root string) ProjectConfig {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err != nil {
		return Default()
	}
	cfg, err := Load(path)
	if err != nil {
		logging.L().Warnw("ignoring malformed project config", "path", path, "error", err)
		return Default()
	}
	return cfg
}

func validate(cfg ProjectConfig) error {
	if cfg.MinSeverity != "" {
		if _, ok := model.ParseSeverity(cfg.MinSeverity); !ok {
			return fmt.Errorf("unknown min_severity %q", cfg.MinSeverity)
		}
	}
	if cfg.MinConfidence != "" {
		if _, ok := model.ParseConfidence(cfg.MinConfidence); !ok {
			return fmt.Errorf("unknown min_confidence %q", cfg.MinConfidence)
		}
	}
	for _, g := range cfg.IgnoreFiles {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("bad ignore_files pattern %q", g)
		}
	}
	return nil
}

// FileIgnored reports whether the relative path matches any ignore_files
// glob. Paths are compared slash-separated.
func (c ProjectConfig) FileIgnored(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, g := range c.IgnoreFiles {
		if ok, err := doublestar.Match(g, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// DetectorIgnored reports whether the detector id is listed in ignore.
func (c ProjectConfig) DetectorIgnored(id string) bool {
	for _, ig := range c.Ignore {
		if ig == id {
			return true
		}
	}
	return false
}

// MinSeverityLevel returns the parsed threshold and whether one is set.
func (c ProjectConfig) MinSeverityLevel() (model.Severity, bool) {
	if c.MinSeverity == "" {
		return "", false
	}
	s, ok := model.ParseSeverity(c.MinSeverity)
	return s, ok
}

// MinConfidenceLevel returns the parsed threshold and whether one is set.
func (c ProjectConfig) MinConfidenceLevel() (model.Confidence, bool) {
	if c.MinConfidence == "" {
		return "", false
	}
	v, ok := model.ParseConfidence(c.MinConfidence)
	return v, ok
}
