package cmd

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/buildgate/buildgate/internal/executor"
	"github.com/buildgate/buildgate/internal/sandbox"
	"github.com/buildgate/buildgate/internal/term"
	"github.com/buildgate/buildgate/internal/tool"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tool catalog",
	Long: `List every tool the gateway serves, with its required arguments.

This is the same catalog tools/list returns over HTTP, rendered for
operators without needing a running server or a token.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	registry := tool.NewCatalog(tool.CatalogConfig{Shell: "sh", PowerShell: "pwsh"},
		sandbox.New(nil, nil), executor.NewHostExecutor(0))

	w := tabwriter.NewWriter(term.Stdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if _, err := w.Write([]byte("NAME\tREQUIRED\tDESCRIPTION\n")); err != nil {
		return err
	}
	for _, def := range registry.Definitions() {
		required := strings.Join(def.InputSchema.Required, ",")
		if required == "" {
			required = "-"
		}
		line := def.Name + "\t" + required + "\t" + def.Description + "\n"
		if _, err := w.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}
