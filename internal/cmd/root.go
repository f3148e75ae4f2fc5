// Package cmd implements the CLI commands for buildgate.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/buildgate/buildgate/internal/version"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "buildgate",
	Short: "Token-authenticated host operations gateway",
	Long: `Buildgate exposes a small set of build and deployment tools over an
authenticated HTTP endpoint: shell commands, .NET builds, batch scripts
from allowed directories, process management, file sync, and host pings.

Every request needs a bearer token, script and file paths are confined
to configured directories, and every tool call is written to an audit log.`,
	Version: version.Version,
}

// Execute runs the root command and returns any error.
func Execute() error {
	return rootCmd.Execute()
}
