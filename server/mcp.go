package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ServerOptions struct {
	// Name is the MCP server implementation name. Default: "pteromcp".
	Name string
	// Version is the MCP server implementation version. Default: "0.1.0".
	Version string
}

// NewMCPServer registers every tool, resource and prompt on a fresh MCP
// server. Tool failures are converted to "Error <action>: ..." text
// here and never propagate as protocol errors; the agent learns about a
// failed panel operation only through the returned text.
func NewMCPServer(core *Core, logger *slog.Logger, opts ...ServerOptions) *mcp.Server {
	name := "pteromcp"
	version := "0.1.0"
	if len(opts) > 0 {
		if opts[0].Name != "" {
			name = opts[0].Name
		}
		if opts[0].Version != "" {
			version = opts[0].Version
		}
	}
	srv := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, &mcp.ServerOptions{Logger: logger})

	registerClientTools(srv, core)
	registerApplicationTools(srv, core)
	registerResources(srv, core)
	registerPrompts(srv)

	return srv
}

func registerClientTools(srv *mcp.Server, core *Core) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_servers",
		Description: "List all servers accessible to the authenticated user",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		text, err := core.ListServers(ctx)
		if err != nil {
			return errorText("listing servers", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_server_info",
		Description: "Get detailed information about a specific server",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in ServerIDInput) (*mcp.CallToolResult, any, error) {
		text, err := core.GetServerInfo(ctx, in)
		if err != nil {
			return errorText("getting server info", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_server_utilization",
		Description: "Get real-time resource utilization for a server",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in ServerIDInput) (*mcp.CallToolResult, any, error) {
		text, err := core.GetServerUtilization(ctx, in)
		if err != nil {
			return errorText("getting server utilization", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "send_power_action",
		Description: "Send a power action to a server (start, stop, restart, kill)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in PowerInput) (*mcp.CallToolResult, any, error) {
		text, err := core.SendPowerAction(ctx, in)
		if err != nil {
			return errorText("sending power action", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "send_console_command",
		Description: "Send a command to the server console",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in CommandInput) (*mcp.CallToolResult, any, error) {
		text, err := core.SendConsoleCommand(ctx, in)
		if err != nil {
			return errorText("sending console command", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_server_files",
		Description: "List files in a server directory",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in FilesInput) (*mcp.CallToolResult, any, error) {
		text, err := core.ListServerFiles(ctx, in)
		if err != nil {
			return errorText("listing files", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_server_databases",
		Description: "List databases for a server",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in ServerIDInput) (*mcp.CallToolResult, any, error) {
		text, err := core.GetServerDatabases(ctx, in)
		if err != nil {
			return errorText("getting databases", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_account_info",
		Description: "Get the authenticated user's account details",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		text, err := core.GetAccountInfo(ctx)
		if err != nil {
			return errorText("getting account info", err), nil, nil
		}
		return textResult(text), nil, nil
	})
}

func registerApplicationTools(srv *mcp.Server, core *Core) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "app_list_users",
		Description: "List all users on the panel (Application API - Admin only)",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in PageInput) (*mcp.CallToolResult, any, error) {
		text, err := core.AppListUsers(ctx, in)
		if err != nil {
			return errorText("listing users", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "app_create_user",
		Description: "Create a new user (Application API - Admin only)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in CreateUserInput) (*mcp.CallToolResult, any, error) {
		text, err := core.AppCreateUser(ctx, in)
		if err != nil {
			return errorText("creating user", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "app_delete_user",
		Description: "Delete a user by ID (Application API - Admin only). This cannot be undone.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in DeleteUserInput) (*mcp.CallToolResult, any, error) {
		text, err := core.AppDeleteUser(ctx, in)
		if err != nil {
			return errorText("deleting user", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "app_list_servers",
		Description: "List all servers on the panel (Application API - Admin only)",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in PageInput) (*mcp.CallToolResult, any, error) {
		text, err := core.AppListServers(ctx, in)
		if err != nil {
			return errorText("listing servers", err), nil, nil
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "app_list_nodes",
		Description: "List all nodes on the panel (Application API - Admin only)",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		text, err := core.AppListNodes(ctx)
		if err != nil {
			return errorText("listing nodes", err), nil, nil
		}
		return textResult(text), nil, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorText(action string, err error) *mcp.CallToolResult {
	return textResult(fmt.Sprintf("Error %s: %s", action, err.Error()))
}

// RunStdio serves MCP over stdin/stdout until ctx is canceled.
func RunStdio(ctx context.Context, core *Core, logger *slog.Logger, opts ...ServerOptions) error {
	server := NewMCPServer(core, logger, opts...)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("run mcp stdio server: %w", err)
	}
	return nil
}

// NewHTTPHandler returns an http.Handler serving MCP over SSE.
func NewHTTPHandler(core *Core, logger *slog.Logger, opts ...ServerOptions) http.Handler {
	srv := NewMCPServer(core, logger, opts...)
	return mcp.NewSSEHandler(func(_ *http.Request) *mcp.Server {
		return srv
	}, nil)
}
