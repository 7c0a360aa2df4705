package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerPrompts(srv *mcp.Server) {
	srv.AddPrompt(&mcp.Prompt{
		Name:        "server_management",
		Description: "Scripted walkthrough of the operations available for one server",
		Arguments: []*mcp.PromptArgument{
			{Name: "server_id", Description: "Server identifier", Required: true},
		},
	}, handleServerManagementPrompt)

	srv.AddPrompt(&mcp.Prompt{
		Name:        "troubleshooting",
		Description: "Diagnostic checklist for a reported server issue",
		Arguments: []*mcp.PromptArgument{
			{Name: "issue_description", Description: "What is going wrong", Required: true},
		},
	}, handleTroubleshootingPrompt)
}

func handleServerManagementPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	serverID := req.Params.Arguments["server_id"]

	assistant := []string{
		"I can help you manage your Pterodactyl server. Here are the available operations:",
		"1. **Get server info** - View detailed server information",
		"2. **Check utilization** - Monitor resource usage in real-time",
		"3. **Power control** - Start, stop, restart, or kill the server",
		"4. **Console commands** - Send commands to the server console",
		"5. **File management** - Browse server files",
		"6. **Database management** - View server databases",
	}

	messages := []*mcp.PromptMessage{{
		Role:    "user",
		Content: &mcp.TextContent{Text: fmt.Sprintf("I need help managing Pterodactyl server with ID: %s", serverID)},
	}}
	for _, line := range assistant {
		messages = append(messages, &mcp.PromptMessage{
			Role:    "assistant",
			Content: &mcp.TextContent{Text: line},
		})
	}
	messages = append(messages, &mcp.PromptMessage{
		Role:    "user",
		Content: &mcp.TextContent{Text: "What would you like to do with this server?"},
	})

	return &mcp.GetPromptResult{
		Description: "Server management operations",
		Messages:    messages,
	}, nil
}

func handleTroubleshootingPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	issue := req.Params.Arguments["issue_description"]

	text := fmt.Sprintf(`I'm experiencing an issue with my Pterodactyl server: %s

Please help me troubleshoot this issue by:
1. Checking server status and resource utilization
2. Reviewing recent console output if possible
3. Suggesting appropriate diagnostic steps
4. Providing potential solutions

What information do you need to help diagnose this problem?`, issue)

	return &mcp.GetPromptResult{
		Description: "Troubleshooting a server issue",
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}, nil
}
