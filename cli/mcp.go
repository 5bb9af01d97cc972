// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for assistant integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/handlers"
	"github.com/harperreed/rolodex/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio. Logging must stay off stdout.
func MCPCommand(ctx context.Context, svc *crm.Service, orch *sync.Orchestrator, version string, logger *log.Logger) error {
	logger.Info("starting MCP server", "version", version)

	server := handlers.NewServer(svc, orch, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
