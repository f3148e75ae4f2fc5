package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that a parsed Config contains valid values. It validates:
//   - Listen is in host:port or :port form with a port in 1-65535
//   - Duration strings are parseable (exec.timeout, rate_limit.window)
//   - exec.max_output_bytes and rate_limit.max_requests are non-negative
//   - batch.allowed_dirs entries are absolute paths
//   - batch.allowed_extensions entries start with a dot
//   - log.level is one of: debug, info, warn, error (if non-empty)
//
// Returns nil if the config is valid, or an error with a clear message
// indicating which field is invalid. Validate expects paths to already
// be expanded (see Load).
func Validate(cfg *Config) error {
	if cfg.Listen != "" {
		if err := validateListenAddr(cfg.Listen, "listen"); err != nil {
			return err
		}
	}

	for i, dir := range cfg.Batch.AllowedDirs {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("batch.allowed_dirs[%d]: must be an absolute path, got %q", i, dir)
		}
	}
	for i, ext := range cfg.Batch.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("batch.allowed_extensions[%d]: must start with a dot, got %q", i, ext)
		}
	}

	if cfg.Exec.Timeout != "" {
		if err := validateDuration(cfg.Exec.Timeout, "exec.timeout"); err != nil {
			return err
		}
	}
	if cfg.Exec.MaxOutputBytes < 0 {
		return fmt.Errorf("exec.max_output_bytes: must be non-negative, got %d", cfg.Exec.MaxOutputBytes)
	}

	if cfg.RateLimit.Window != "" {
		if err := validateDuration(cfg.RateLimit.Window, "rate_limit.window"); err != nil {
			return err
		}
	}
	if cfg.RateLimit.MaxRequests < 0 {
		return fmt.Errorf("rate_limit.max_requests: must be non-negative, got %d", cfg.RateLimit.MaxRequests)
	}

	if cfg.Log.Level != "" {
		if !validLogLevels[cfg.Log.Level] {
			return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", cfg.Log.Level)
		}
	}

	return nil
}

// validateListenAddr validates a listen address in the format ":port" or "host:port".
// Port must be in the range 1-65535.
func validateListenAddr(addr, field string) error {
	colonIdx := strings.LastIndex(addr, ":")
	if colonIdx == -1 {
		return fmt.Errorf("%s: invalid format %q, expected host:port or :port", field, addr)
	}

	portStr := addr[colonIdx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s: invalid port %q in %q", field, portStr, addr)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s: port %d out of range 1-65535", field, port)
	}
	return nil
}

// validateDuration validates that a string parses as a Go duration.
func validateDuration(s, field string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, s)
	}
	if d <= 0 {
		return fmt.Errorf("%s: duration must be positive, got %q", field, s)
	}
	return nil
}
