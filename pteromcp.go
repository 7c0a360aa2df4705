// Package pteromcp is an MCP server exposing the Pterodactyl panel API
// to LLM agents. It wraps the panel's client (user-scoped) and
// application (admin-scoped) HTTP APIs as tools, resources and prompts.
package pteromcp

import (
	"context"
	"fmt"
	"log/slog"

	"pteromcp/config"
	"pteromcp/panel"
	"pteromcp/server"
)

type Config struct {
	// Logger is the structured logger passed through the stack. If nil,
	// a discard logger is used.
	Logger *slog.Logger

	// Name overrides the MCP server implementation name (default: "pteromcp").
	Name string

	// Version overrides the MCP server implementation version (default: "0.1.0").
	Version string
}

// New loads the process configuration, builds the shared panel adapter
// and returns a Core around it. The returned cleanup releases the
// adapter's pooled connections and must be called exactly once, on
// every exit path.
func New(cfg Config) (*server.Core, func(), error) {
	userCfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	client, err := panel.New(userCfg, cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build panel client: %w", err)
	}

	core := server.NewCore(client, userCfg, cfg.Logger)
	return core, client.Close, nil
}

// RunStdio creates a server from cfg and runs it over stdin/stdout.
func RunStdio(ctx context.Context, cfg Config) error {
	core, cleanup, err := New(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.RunStdio(ctx, core, cfg.Logger, server.ServerOptions{
		Name:    cfg.Name,
		Version: cfg.Version,
	})
}
