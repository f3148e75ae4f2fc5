package config

import "runtime"

// Default values applied when fields are absent from the config file.
const (
	// DefaultListen is the gateway listen address.
	DefaultListen = ":8085"

	// DefaultExecTimeout is the default per-invocation execution budget.
	DefaultExecTimeout = "2m"

	// DefaultMaxOutputBytes caps captured output per invocation (1 MiB).
	DefaultMaxOutputBytes = 1 << 20

	// DefaultRateWindow is the rate-limit counting window.
	DefaultRateWindow = "1m"

	// DefaultRateMaxRequests is the per-client request budget per window.
	DefaultRateMaxRequests = 120
)

// DefaultConfig returns a Config with all defaults populated.
//
// Security posture: Batch.AllowedDirs defaults to empty, so run_batch and
// file_sync deny everything until an operator explicitly configures the
// directories this gateway may touch. There is no safe default allow-list
// for a privileged execution gateway.
func DefaultConfig() *Config {
	return &Config{
		Listen: DefaultListen,
		Batch: BatchConfig{
			AllowedExtensions: []string{".bat", ".cmd"},
		},
		Exec: ExecConfig{
			Timeout:        DefaultExecTimeout,
			MaxOutputBytes: DefaultMaxOutputBytes,
			Shell:          defaultShell(),
			PowerShell:     defaultPowerShell(),
		},
		RateLimit: RateLimitConfig{
			Window:      DefaultRateWindow,
			MaxRequests: DefaultRateMaxRequests,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultShell returns the platform shell for the run_shell tool.
func defaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	return "/bin/sh"
}

// defaultPowerShell returns the platform interpreter for run_powershell.
// On non-Windows hosts this is pwsh (PowerShell Core), which may or may
// not be installed; invoking the tool without it yields a spawn error.
func defaultPowerShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "pwsh"
}
