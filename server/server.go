// Package server wires the panel adapter into MCP tools, resources and prompts.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pteromcp/config"
	"pteromcp/panel"
	"pteromcp/render"
)

// PanelAPI issues requests against the panel. Satisfied by *panel.Client.
type PanelAPI interface {
	Do(ctx context.Context, req panel.Request) (any, error)
}

// Core holds the shared panel adapter and the per-tool logic. Tool
// methods return structured errors; conversion to the agent-facing
// "Error <action>: ..." text happens only at the MCP boundary in
// NewMCPServer, so a tool call never fails at the protocol level.
type Core struct {
	Panel  PanelAPI
	cfg    config.Config
	logger *slog.Logger
}

func NewCore(api PanelAPI, cfg config.Config, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Core{Panel: api, cfg: cfg, logger: logger}
}

type NoInput struct{}

type ServerIDInput struct {
	ServerID string `json:"server_id" jsonschema:"Server identifier (short ID or UUID)"`
}

type PowerInput struct {
	ServerID string `json:"server_id" jsonschema:"Server identifier (short ID or UUID)"`
	Action   string `json:"action" jsonschema:"Power action: start, stop, restart, or kill"`
}

type CommandInput struct {
	ServerID string `json:"server_id" jsonschema:"Server identifier (short ID or UUID)"`
	Command  string `json:"command" jsonschema:"Console command to send"`
}

type FilesInput struct {
	ServerID  string `json:"server_id" jsonschema:"Server identifier (short ID or UUID)"`
	Directory string `json:"directory,omitempty" jsonschema:"Directory to list (default /)"`
}

type PageInput struct {
	Page int `json:"page,omitempty" jsonschema:"Result page to fetch (default 1)"`
}

type CreateUserInput struct {
	Username  string `json:"username" jsonschema:"Login name for the new user"`
	Email     string `json:"email" jsonschema:"Email address"`
	FirstName string `json:"first_name" jsonschema:"First name"`
	LastName  string `json:"last_name" jsonschema:"Last name"`
	Password  string `json:"password" jsonschema:"Initial password"`
	RootAdmin bool   `json:"root_admin,omitempty" jsonschema:"Grant panel admin rights (default false)"`
}

type DeleteUserInput struct {
	UserID int `json:"user_id" jsonschema:"Numeric panel user ID"`
}

// powerActions maps each valid verb to its past-tense confirmation.
var powerActions = map[string]string{
	"start":   "started",
	"stop":    "stopped",
	"restart": "restarted",
	"kill":    "forcefully killed",
}

func (c *Core) ListServers(ctx context.Context) (string, error) {
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    "/api/client",
		Surface: panel.SurfaceClient,
	})
	if err != nil {
		return "", err
	}
	return render.ServerList(resp), nil
}

func (c *Core) GetServerInfo(ctx context.Context, in ServerIDInput) (string, error) {
	if err := requireServerID(in.ServerID); err != nil {
		return "", err
	}
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    "/api/client/servers/" + in.ServerID,
		Surface: panel.SurfaceClient,
	})
	if err != nil {
		return "", err
	}
	return render.ServerInfo(resp), nil
}

func (c *Core) GetServerUtilization(ctx context.Context, in ServerIDInput) (string, error) {
	if err := requireServerID(in.ServerID); err != nil {
		return "", err
	}
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/api/client/servers/%s/resources", in.ServerID),
		Surface: panel.SurfaceClient,
	})
	if err != nil {
		return "", err
	}
	return render.Utilization(in.ServerID, resp), nil
}

// SendPowerAction validates the verb before any panel call; an invalid
// verb is rejected without network I/O.
func (c *Core) SendPowerAction(ctx context.Context, in PowerInput) (string, error) {
	if err := requireServerID(in.ServerID); err != nil {
		return "", err
	}
	action := strings.ToLower(strings.TrimSpace(in.Action))
	past, ok := powerActions[action]
	if !ok {
		return "", fmt.Errorf("invalid action %q: must be one of start, stop, restart, kill", in.Action)
	}

	_, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("/api/client/servers/%s/power", in.ServerID),
		Surface: panel.SurfaceClient,
		Body:    map[string]any{"signal": action},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully %s server %s", past, in.ServerID), nil
}

func (c *Core) SendConsoleCommand(ctx context.Context, in CommandInput) (string, error) {
	if err := requireServerID(in.ServerID); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Command) == "" {
		return "", errors.New("command is required")
	}

	_, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("/api/client/servers/%s/command", in.ServerID),
		Surface: panel.SurfaceClient,
		Body:    map[string]any{"command": in.Command},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully sent command %q to server %s", in.Command, in.ServerID), nil
}

func (c *Core) ListServerFiles(ctx context.Context, in FilesInput) (string, error) {
	if err := requireServerID(in.ServerID); err != nil {
		return "", err
	}
	directory := in.Directory
	if directory == "" {
		directory = "/"
	}

	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/api/client/servers/%s/files/list", in.ServerID),
		Surface: panel.SurfaceClient,
		Query:   url.Values{"directory": {directory}},
	})
	if err != nil {
		return "", err
	}
	return render.FileList(directory, resp), nil
}

func (c *Core) GetServerDatabases(ctx context.Context, in ServerIDInput) (string, error) {
	if err := requireServerID(in.ServerID); err != nil {
		return "", err
	}
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/api/client/servers/%s/databases", in.ServerID),
		Surface: panel.SurfaceClient,
	})
	if err != nil {
		return "", err
	}
	return render.DatabaseList(in.ServerID, resp), nil
}

func (c *Core) GetAccountInfo(ctx context.Context) (string, error) {
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    "/api/client/account",
		Surface: panel.SurfaceClient,
	})
	if err != nil {
		return "", err
	}
	return render.Account(resp), nil
}

func (c *Core) AppListUsers(ctx context.Context, in PageInput) (string, error) {
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    "/api/application/users",
		Surface: panel.SurfaceApplication,
		Query:   url.Values{"page": {strconv.Itoa(pageOrFirst(in.Page))}},
	})
	if err != nil {
		return "", err
	}
	return render.UserPage(resp), nil
}

func (c *Core) AppCreateUser(ctx context.Context, in CreateUserInput) (string, error) {
	for field, value := range map[string]string{
		"username":   in.Username,
		"email":      in.Email,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"password":   in.Password,
	} {
		if strings.TrimSpace(value) == "" {
			return "", fmt.Errorf("%s is required", field)
		}
	}

	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodPost,
		Path:    "/api/application/users",
		Surface: panel.SurfaceApplication,
		Body: map[string]any{
			"username":   in.Username,
			"email":      in.Email,
			"first_name": in.FirstName,
			"last_name":  in.LastName,
			"password":   in.Password,
			"root_admin": in.RootAdmin,
			"language":   "en",
		},
	})
	if err != nil {
		return "", err
	}
	return render.CreatedUser(in.Username, resp), nil
}

func (c *Core) AppDeleteUser(ctx context.Context, in DeleteUserInput) (string, error) {
	if in.UserID <= 0 {
		return "", errors.New("user_id must be a positive panel user ID")
	}
	_, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodDelete,
		Path:    fmt.Sprintf("/api/application/users/%d", in.UserID),
		Surface: panel.SurfaceApplication,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully deleted user %d", in.UserID), nil
}

func (c *Core) AppListServers(ctx context.Context, in PageInput) (string, error) {
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    "/api/application/servers",
		Surface: panel.SurfaceApplication,
		Query:   url.Values{"page": {strconv.Itoa(pageOrFirst(in.Page))}},
	})
	if err != nil {
		return "", err
	}
	return render.AdminServerPage(resp), nil
}

func (c *Core) AppListNodes(ctx context.Context) (string, error) {
	resp, err := c.Panel.Do(ctx, panel.Request{
		Method:  http.MethodGet,
		Path:    "/api/application/nodes",
		Surface: panel.SurfaceApplication,
	})
	if err != nil {
		return "", err
	}
	return render.NodeList(resp), nil
}

func requireServerID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("server_id is required")
	}
	return nil
}

func pageOrFirst(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
