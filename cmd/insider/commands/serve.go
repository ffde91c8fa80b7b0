package commands

import (
	"github.com/spf13/cobra"

	"github.com/fintrace/insider/config"
	"github.com/fintrace/insider/errors"
	"github.com/fintrace/insider/logger"
	"github.com/fintrace/insider/server"
)

// ServeCmd represents the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose resolution as an MCP server on stdio",
	Long: `Start a Model Context Protocol server on stdio exposing two tools:

  resolve_identity  - full resolution with evidence and diagnostics
  current_positions - only currently-held insider roles

Intended to be launched by an MCP client, not interactively.`,
	RunE: runServeCommand,
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	resolver, _, err := buildStack()
	if err != nil {
		return errors.Wrap(err, "failed to build resolver")
	}

	logger.Infow("Starting MCP server on stdio")
	return server.NewMCPServer(resolver, configuredOptions(cfg)).Serve()
}
