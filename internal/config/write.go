package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Write writes a configuration to Path(), creating the config directory
// if needed. If the file already exists and overwrite is false, it
// returns an error rather than clobbering an operator's settings.
// The file is written with 0600 permissions because it holds the
// bearer token.
func Write(cfg *Config, overwrite bool) error {
	path := Path()

	_, err := os.Stat(path)
	if err == nil && !overwrite {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
