package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath is the environment variable that overrides the config
// file location.
const EnvConfigPath = "BUILDGATE_CONFIG"

// Dir returns the buildgate configuration directory path.
// By default, this is ~/.config/buildgate/. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/buildgate/ instead.
// The returned path always has a trailing slash.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = "~/.config"
	}
	return expandHome(base) + "/buildgate/"
}

// Path returns the full path to the configuration file.
// The BUILDGATE_CONFIG environment variable takes precedence;
// otherwise this is Dir() + "config.yaml".
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandHome(p)
	}
	return Dir() + "config.yaml"
}

// expandHome replaces a leading ~ with the user's home directory so
// config values like "~/scripts" work. The path is returned unchanged
// when the home directory cannot be determined.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
