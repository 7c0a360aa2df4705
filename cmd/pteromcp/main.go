// Command pteromcp runs the MCP server as a stdio subprocess.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pteromcp"
	"pteromcp/config"
)

var version = "dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{}))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, os.Args[1:]); err != nil {
		logger.Error("pteromcp failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return runStdio(ctx, logger)
	}

	switch args[0] {
	case "help", "-h", "--help":
		printHelp(os.Stdout)
		return nil
	case "version", "-v", "--version":
		fmt.Printf("pteromcp %s\n", version)
		return nil
	default:
		printHelp(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runStdio(ctx context.Context, logger *slog.Logger) error {
	err := pteromcp.RunStdio(ctx, pteromcp.Config{Logger: logger})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if errors.Is(err, config.ErrMissingPanelURL) || errors.Is(err, config.ErrNoCredentials) {
		printConfigHelp(os.Stderr)
	}
	return err
}

func printHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, "pteromcp - MCP server for the Pterodactyl panel API")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  pteromcp          Start MCP server over stdio (default)")
	_, _ = fmt.Fprintln(w, "  pteromcp help     Show this help")
	_, _ = fmt.Fprintln(w, "  pteromcp version  Show version")
}

func printConfigHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Required environment variables:")
	_, _ = fmt.Fprintln(w, "  PTERODACTYL_PANEL_URL             Panel base URL, e.g. https://panel.example.com")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "At least one API key is required:")
	_, _ = fmt.Fprintln(w, "  PTERODACTYL_CLIENT_API_KEY        Client API key (user operations)")
	_, _ = fmt.Fprintln(w, "  PTERODACTYL_APPLICATION_API_KEY   Application API key (admin operations)")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Optional:")
	_, _ = fmt.Fprintln(w, "  PTERODACTYL_TIMEOUT               Request timeout in seconds (default: 30)")
	_, _ = fmt.Fprintln(w, "  PTERODACTYL_VERIFY_SSL            Verify TLS certificates (default: true)")
}
