package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/buildgate/buildgate/internal/clog"
)

// Environment variables that override individual config fields.
// BUILDGATE_ALLOWED_DIRS is semicolon-delimited, matching the
// configuration surface of comparable build-host agents.
const (
	EnvToken       = "BUILDGATE_TOKEN" //nolint:gosec // G101: variable name, not a credential
	EnvAllowedDirs = "BUILDGATE_ALLOWED_DIRS"
)

// Load loads the configuration from Path().
// If the config file doesn't exist, it returns DefaultConfig().
// If the file exists but cannot be read or parsed, it returns an error.
// Environment overrides are applied after parsing, paths containing ~
// are expanded, defaults fill unset fields, and the result is validated.
func Load() (*Config, error) {
	path := Path()
	clog.Debug("config: loading from %s", path)

	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		clog.Debug("config: file not found, using defaults")
		cfg = DefaultConfig()
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	expandPaths(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// applyDefaults fills unset fields with default values so that a
// partial config file behaves like the full default config.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Listen == "" {
		cfg.Listen = def.Listen
	}
	if len(cfg.Batch.AllowedExtensions) == 0 {
		cfg.Batch.AllowedExtensions = def.Batch.AllowedExtensions
	}
	if cfg.Exec.Timeout == "" {
		cfg.Exec.Timeout = def.Exec.Timeout
	}
	if cfg.Exec.MaxOutputBytes == 0 {
		cfg.Exec.MaxOutputBytes = def.Exec.MaxOutputBytes
	}
	if cfg.Exec.Shell == "" {
		cfg.Exec.Shell = def.Exec.Shell
	}
	if cfg.Exec.PowerShell == "" {
		cfg.Exec.PowerShell = def.Exec.PowerShell
	}
	if cfg.RateLimit.Window == "" {
		cfg.RateLimit.Window = def.RateLimit.Window
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = def.RateLimit.MaxRequests
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// applyEnvOverrides applies environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if tok := os.Getenv(EnvToken); tok != "" {
		cfg.Auth.Token = tok
	}
	if dirs := os.Getenv(EnvAllowedDirs); dirs != "" {
		cfg.Batch.AllowedDirs = splitDirs(dirs)
	}
}

// splitDirs splits a semicolon-delimited directory list, dropping
// empty entries and surrounding whitespace.
func splitDirs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandPaths expands ~ to the home directory in all path fields.
func expandPaths(cfg *Config) {
	cfg.Log.File = expandHome(cfg.Log.File)
	for i, dir := range cfg.Batch.AllowedDirs {
		cfg.Batch.AllowedDirs[i] = expandHome(dir)
	}
}
