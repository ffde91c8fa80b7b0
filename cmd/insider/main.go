package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fintrace/insider/cmd/insider/commands"
	"github.com/fintrace/insider/logger"
)

var rootCmd = &cobra.Command{
	Use:   "insider",
	Short: "Resolve people to the companies where they file as corporate insiders",
	Long: `insider - Corporate insider identity resolution over SEC EDGAR.

EDGAR indexes filings by company, not by person, and spells the same person
differently from filing to filing. insider takes a name in any common form
and returns the companies where that person files ownership reports, with
confidence scores, filing evidence, and current/former classification.

Available commands:
  resolve - Resolve a person's name to their insider affiliations
  serve   - Expose resolution as an MCP server on stdio
  cache   - Inspect or clear the resolved-identity cache
  version - Show version information

Examples:
  insider resolve "Gale Klappa"
  insider resolve --json --limit 500 "Klappa, Gale E"
  insider cache stats
  insider serve

The SEC requires a descriptive User-Agent; set INSIDER_EDGAR_USER_AGENT or
edgar.user_agent in insider.toml before first use.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.ResolveCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.CacheCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
