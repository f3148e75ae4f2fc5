package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/buildgate/buildgate/internal/config"
	buildgateterm "github.com/buildgate/buildgate/internal/term"
	"github.com/buildgate/buildgate/internal/token"
)

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the gateway configuration",
	Long: `Create the buildgate configuration file.

Prompts for a bearer token with echo disabled, or generates a random one
when the prompt is left empty. The resulting file holds the defaults for
every other setting and can be edited afterwards.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupForce, "force", false, "overwrite an existing configuration file")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	tok, generated, err := promptToken()
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Auth.Token = tok
	if err := config.Write(cfg, setupForce); err != nil {
		return err
	}

	buildgateterm.Printf("Configuration written to %s\n", config.Path())
	if generated {
		buildgateterm.Printf("Generated bearer token: %s\n", tok)
		buildgateterm.Println("Store it now; it is not shown again.")
	}
	buildgateterm.Printf("Add allowed script directories under batch.allowed_dirs, then run 'buildgate serve'.\n")
	return nil
}

// promptToken reads a token without echo, generating one when the
// input is empty or stdin is not a terminal.
func promptToken() (tok string, generated bool, err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return token.Generate(), true, nil
	}

	fmt.Print("Bearer token (leave empty to generate): ")
	input, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	if len(input) == 0 {
		return token.Generate(), true, nil
	}
	return string(input), false, nil
}
