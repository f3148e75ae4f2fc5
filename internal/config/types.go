// Package config provides configuration types for the buildgate gateway.
// These types map to the YAML configuration file.
package config

import "time"

// Config represents the top-level configuration for buildgate.
// It is typically stored at ~/.config/buildgate/config.yaml and loaded
// once at startup; the loaded value is treated as immutable.
type Config struct {
	Listen    string          `yaml:"listen,omitempty"`
	Auth      AuthConfig      `yaml:"auth,omitempty"`
	Batch     BatchConfig     `yaml:"batch,omitempty"`
	Exec      ExecConfig      `yaml:"exec,omitempty"`
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// AuthConfig contains bearer-token authentication settings.
type AuthConfig struct {
	Token string `yaml:"token,omitempty"`
}

// BatchConfig controls which filesystem paths the path-gated tools
// (run_batch, file_sync) may operate on.
type BatchConfig struct {
	// AllowedDirs is the set of directories scripts may be launched from.
	// Paths are expanded (~) and must be absolute after expansion.
	AllowedDirs []string `yaml:"allowed_dirs,omitempty"`

	// AllowedExtensions lists the script extensions run_batch accepts,
	// e.g. [".bat", ".cmd"]. Matching is case-insensitive.
	AllowedExtensions []string `yaml:"allowed_extensions,omitempty"`
}

// ExecConfig contains subprocess execution settings.
type ExecConfig struct {
	// Timeout is the default execution budget per tool invocation,
	// as a Go duration string (e.g. "2m").
	Timeout string `yaml:"timeout,omitempty"`

	// MaxOutputBytes caps captured stdout/stderr per invocation.
	// Output beyond the cap is dropped and the result marked truncated.
	MaxOutputBytes int `yaml:"max_output_bytes,omitempty"`

	// Shell is the interpreter used by the run_shell tool.
	Shell string `yaml:"shell,omitempty"`

	// PowerShell is the interpreter used by the run_powershell tool.
	PowerShell string `yaml:"powershell,omitempty"`
}

// RateLimitConfig contains per-client request rate limiting settings.
type RateLimitConfig struct {
	// Window is the length of the counting window (e.g. "1m").
	Window string `yaml:"window,omitempty"`

	// MaxRequests is the number of requests allowed per client per window.
	// Zero disables rate limiting.
	MaxRequests int `yaml:"max_requests,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// TimeoutDuration returns the parsed execution timeout, or the fallback
// if the field is empty or unparseable. Validation guarantees the field
// parses for loaded configs; the fallback covers hand-built values.
func (e ExecConfig) TimeoutDuration(fallback time.Duration) time.Duration {
	if e.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return fallback
	}
	return d
}

// WindowDuration returns the parsed rate-limit window, or the fallback
// if the field is empty or unparseable.
func (r RateLimitConfig) WindowDuration(fallback time.Duration) time.Duration {
	if r.Window == "" {
		return fallback
	}
	d, err := time.ParseDuration(r.Window)
	if err != nil {
		return fallback
	}
	return d
}
