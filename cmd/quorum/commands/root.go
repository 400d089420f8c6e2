// Package commands defines the quorum CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Multi-model deliberation service",
	Long: `quorum answers a query by convening a council of LLMs: every model
answers independently, the answers are anonymized and cross-ranked by the
same models, and a chairman model synthesizes the final reply.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
