// Package config loads coralc's run configuration, layering a project's
// coralc.yaml under .env values under CLI flags, grounded on
// funvibe-funxy's internal/ext.Config (yaml.v3 struct binding) and
// termfx-morfx's godotenv.Load() pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Color selects when diagnostics use ANSI escapes.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// Config is coralc's resolved run configuration. Zero value is the
// built-in default (used when no coralc.yaml, no .env, and no flags
// override it).
type Config struct {
	// Root is the project directory import globs resolve against.
	Root string `yaml:"root"`

	// Color controls diagnostic coloring; see Color.
	Color Color `yaml:"color"`

	// MaxErrors is an error-count limit for parse/resolve errors. It is
	// loaded and layered like the other fields, but no driver or
	// subcommand reads it, so no limit is applied.
	MaxErrors int `yaml:"max_errors"`

	// Stats is loaded and layered like the other fields; the dump
	// subcommand's --stats flag does not read it.
	Stats bool `yaml:"stats"`
}

// Default returns coralc's built-in configuration, used as the base that
// coralc.yaml, .env, and flags layer on top of.
func Default() Config {
	return Config{Root: ".", Color: ColorAuto, MaxErrors: 20, Stats: false}
}

// FileNames are the accepted config filenames, checked in order.
var FileNames = []string{"coralc.yaml", "coralc.yml"}

// Find searches dir and its parents for a coralc.yaml/.yml, the way
// funvibe-funxy's ext.FindConfig walks up looking for funxy.yaml.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load builds a Config starting from Default(), layering in (in
// increasing priority) the coralc.yaml/.yml found from dir, then any
// CORALC_* environment variables (loaded from a .env file in dir via
// godotenv, falling back to already-exported process env when no .env
// is present), then overrides. overrides is typically populated from
// CLI flags by the caller — zero-valued fields are left untouched so a
// flag the user didn't pass doesn't clobber a file/env value.
func Load(dir string, overrides *Config) (Config, error) {
	cfg := Default()

	path, err := Find(dir)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	// godotenv.Load's error (missing .env) is not fatal — env vars may
	// already be exported by the shell, same as termfx-morfx's call site.
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	applyEnv(&cfg)

	if overrides != nil {
		applyOverrides(&cfg, overrides)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("CORALC_ROOT"); ok {
		cfg.Root = v
	}
	if v, ok := os.LookupEnv("CORALC_COLOR"); ok {
		cfg.Color = Color(v)
	}
	if v, ok := os.LookupEnv("CORALC_MAX_ERRORS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxErrors = n
		}
	}
	if v, ok := os.LookupEnv("CORALC_STATS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Stats = b
		}
	}
}

// applyOverrides copies every non-zero field of overrides onto cfg. A
// flag's zero value (unset) is indistinguishable from "explicitly set to
// zero" here; callers that need that distinction pass their own sentinel
// before calling Load rather than relying on this helper.
func applyOverrides(cfg *Config, overrides *Config) {
	if overrides.Root != "" {
		cfg.Root = overrides.Root
	}
	if overrides.Color != "" {
		cfg.Color = overrides.Color
	}
	if overrides.MaxErrors != 0 {
		cfg.MaxErrors = overrides.MaxErrors
	}
	if overrides.Stats {
		cfg.Stats = overrides.Stats
	}
}

// ResolveColor decides whether diagnostics should use color, given
// whether fd 2 is a terminal (see internal/errors.StderrSupportsColor).
func (c Config) ResolveColor(stderrIsTTY bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return stderrIsTTY
	}
}
