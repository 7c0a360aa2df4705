package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	configResourceURI = "pterodactyl://config"
	helpResourceURI   = "pterodactyl://help"
)

func registerResources(srv *mcp.Server, core *Core) {
	srv.AddResource(&mcp.Resource{
		URI:         configResourceURI,
		Name:        "config",
		Description: "Current panel configuration and credential status (values are never exposed)",
		MIMEType:    "text/markdown",
	}, core.handleConfigResource)

	srv.AddResource(&mcp.Resource{
		URI:         helpResourceURI,
		Name:        "help",
		Description: "Usage reference for every tool exposed by this server",
		MIMEType:    "text/markdown",
	}, handleHelpResource)
}

// handleConfigResource reports whether each credential is set, never
// the credential itself.
func (c *Core) handleConfigResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      configResourceURI,
			MIMEType: "text/markdown",
			Text:     configDoc(c.cfg.PanelURL, c.cfg.HasClientKey(), c.cfg.HasApplicationKey()),
		}},
	}, nil
}

func handleHelpResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      helpResourceURI,
			MIMEType: "text/markdown",
			Text:     helpDoc,
		}},
	}, nil
}

func configDoc(panelURL string, hasClientKey, hasApplicationKey bool) string {
	status := func(set bool) string {
		if set {
			return "configured"
		}
		return "not configured"
	}
	return strings.TrimSpace(fmt.Sprintf(`
# Pterodactyl MCP Server Configuration

**Panel URL:** %s
**Client API Key:** %s
**Application API Key:** %s

## Available APIs
- **Client API:** User-level operations (servers, files, databases)
- **Application API:** Admin-level operations (users, nodes, all servers)

## Environment Variables
- PTERODACTYL_PANEL_URL - Panel base URL (required)
- PTERODACTYL_CLIENT_API_KEY - Client API key (for user operations)
- PTERODACTYL_APPLICATION_API_KEY - Application API key (for admin operations)
- PTERODACTYL_TIMEOUT - Request timeout in seconds (default: 30)
- PTERODACTYL_VERIFY_SSL - Verify TLS certificates (default: true)
`, panelURL, status(hasClientKey), status(hasApplicationKey)))
}

const helpDoc = `# Pterodactyl MCP Server Help

This MCP server provides access to the Pterodactyl Panel API.

## Client API Tools (User Level)
- list_servers() - List accessible servers
- get_server_info(server_id) - Get detailed server information
- get_server_utilization(server_id) - Get real-time resource usage
- send_power_action(server_id, action) - Control server power (start/stop/restart/kill)
- send_console_command(server_id, command) - Send console commands
- list_server_files(server_id, directory) - Browse server files
- get_server_databases(server_id) - List server databases
- get_account_info() - Show the authenticated account

## Application API Tools (Admin Level)
- app_list_users(page) - List all panel users
- app_create_user(username, email, first_name, last_name, password, root_admin) - Create new user
- app_delete_user(user_id) - Delete a user
- app_list_servers(page) - List all servers (admin view)
- app_list_nodes() - List all panel nodes

## Power Actions
- start - Start the server
- stop - Stop the server gracefully
- restart - Restart the server
- kill - Force kill the server (may cause data loss)

## Setup
1. Set PTERODACTYL_PANEL_URL to your panel's base URL
2. Generate API keys in the panel
3. Set PTERODACTYL_CLIENT_API_KEY for user operations
4. Set PTERODACTYL_APPLICATION_API_KEY for admin operations

## Security Notes
- Client API keys have limited scope; application keys have full admin access
- Use the least-privileged key that covers your use case
`
