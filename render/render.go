// Package render formats decoded panel JSON as markdown text for the
// agent. Every function is tolerant of missing or mistyped fields and
// falls back to a placeholder rather than failing; the adapter already
// guarantees the input is well-formed JSON.
package render

import (
	"fmt"
	"strings"
)

// ServerList renders the client API's server listing.
func ServerList(resp any) string {
	servers := asSlice(asMap(resp)["data"])
	if len(servers) == 0 {
		return "No servers found."
	}

	var b strings.Builder
	b.WriteString("**Your Servers:**\n")
	for _, s := range servers {
		attrs := asMap(asMap(s)["attributes"])
		limits := asMap(attrs["limits"])

		fmt.Fprintf(&b, "\n- **%s** (`%s`)\n", stringOr(attrs, "name", "Unknown"), stringOr(attrs, "identifier", "N/A"))
		fmt.Fprintf(&b, "  - UUID: %s\n", stringOr(attrs, "uuid", "N/A"))
		fmt.Fprintf(&b, "  - Memory: %.0f MB\n", numberOr(limits, "memory", 0))
		fmt.Fprintf(&b, "  - Disk: %.0f MB\n", numberOr(limits, "disk", 0))
		fmt.Fprintf(&b, "  - CPU: %.0f%%\n", numberOr(limits, "cpu", 0))
	}
	return b.String()
}

// ServerInfo renders one server's detail view.
func ServerInfo(resp any) string {
	attrs := asMap(asMap(resp)["attributes"])
	limits := asMap(attrs["limits"])
	featureLimits := asMap(attrs["feature_limits"])

	owner := "No"
	if boolOr(attrs, "server_owner", false) {
		owner = "Yes"
	}

	lines := []string{
		fmt.Sprintf("**Server: %s**", stringOr(attrs, "name", "Unknown")),
		fmt.Sprintf("- **ID:** %s", stringOr(attrs, "identifier", "N/A")),
		fmt.Sprintf("- **UUID:** %s", stringOr(attrs, "uuid", "N/A")),
		fmt.Sprintf("- **Description:** %s", stringOr(attrs, "description", "None")),
		fmt.Sprintf("- **Owner:** %s", owner),
		"",
		"**Resource Limits:**",
		fmt.Sprintf("- Memory: %.0f MB", numberOr(limits, "memory", 0)),
		fmt.Sprintf("- Swap: %.0f MB", numberOr(limits, "swap", 0)),
		fmt.Sprintf("- Disk: %.0f MB", numberOr(limits, "disk", 0)),
		fmt.Sprintf("- I/O: %.0f ops/s", numberOr(limits, "io", 0)),
		fmt.Sprintf("- CPU: %.0f%%", numberOr(limits, "cpu", 0)),
		"",
		"**Feature Limits:**",
		fmt.Sprintf("- Databases: %.0f", numberOr(featureLimits, "databases", 0)),
		fmt.Sprintf("- Allocations: %.0f", numberOr(featureLimits, "allocations", 0)),
		fmt.Sprintf("- Backups: %.0f", numberOr(featureLimits, "backups", 0)),
	}
	return strings.Join(lines, "\n")
}

// Utilization renders a server's live resource usage.
func Utilization(serverID string, resp any) string {
	attrs := asMap(asMap(resp)["attributes"])
	resources := asMap(attrs["resources"])

	const mb = 1024 * 1024
	memory := numberOr(resources, "memory_bytes", 0) / mb
	memoryLimit := numberOr(resources, "memory_limit_bytes", 0) / mb
	disk := numberOr(resources, "disk_bytes", 0) / mb
	diskLimit := numberOr(resources, "disk_limit_bytes", 0) / mb

	lines := []string{
		fmt.Sprintf("**Server Utilization: %s**", serverID),
		fmt.Sprintf("- **State:** %s", titleCase(stringOr(attrs, "current_state", "unknown"))),
		"",
		"**Resource Usage:**",
		fmt.Sprintf("- **Memory:** %.1f MB / %.1f MB (%.1f%%)", memory, memoryLimit, percent(memory, memoryLimit)),
		fmt.Sprintf("- **Disk:** %.1f MB / %.1f MB (%.1f%%)", disk, diskLimit, percent(disk, diskLimit)),
		fmt.Sprintf("- **CPU:** %.2f%%", numberOr(resources, "cpu_absolute", 0)),
		fmt.Sprintf("- **Network (RX):** %.1f KB", numberOr(resources, "network_rx_bytes", 0)/1024),
		fmt.Sprintf("- **Network (TX):** %.1f KB", numberOr(resources, "network_tx_bytes", 0)/1024),
	}
	return strings.Join(lines, "\n")
}

// FileList renders a directory listing from the client files endpoint.
func FileList(directory string, resp any) string {
	files := asSlice(asMap(resp)["data"])
	if len(files) == 0 {
		return fmt.Sprintf("No files found in directory: %s", directory)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Files in %s:**\n", directory)
	for _, f := range files {
		attrs := asMap(asMap(f)["attributes"])
		name := stringOr(attrs, "name", "Unknown")
		modified := stringOr(attrs, "modified_at", "Unknown")

		if boolOr(attrs, "is_file", true) {
			size := numberOr(attrs, "size", 0)
			sizeStr := ""
			if size > 0 {
				sizeStr = fmt.Sprintf(" (%.0f bytes)", size)
			}
			fmt.Fprintf(&b, "\n[file] **%s**%s\n", name, sizeStr)
		} else {
			fmt.Fprintf(&b, "\n[dir] **%s**\n", name)
		}
		fmt.Fprintf(&b, "   Modified: %s\n", modified)
	}
	return b.String()
}

// DatabaseList renders a server's database listing.
func DatabaseList(serverID string, resp any) string {
	databases := asSlice(asMap(resp)["data"])
	if len(databases) == 0 {
		return "No databases found for this server."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Databases for server %s:**\n", serverID)
	for _, db := range databases {
		attrs := asMap(asMap(db)["attributes"])
		host := asMap(attrs["host"])

		fmt.Fprintf(&b, "\n- **%s**\n", stringOr(attrs, "name", "Unknown"))
		fmt.Fprintf(&b, "  - Host: %s:%s\n", stringOr(host, "address", "Unknown"), anyOr(host, "port", "Unknown"))
		fmt.Fprintf(&b, "  - Username: %s\n", stringOr(attrs, "username", "Unknown"))
		fmt.Fprintf(&b, "  - Max Connections: %s\n", anyOr(attrs, "max_connections", "Unknown"))
	}
	return b.String()
}

// Account renders the authenticated user's account details.
func Account(resp any) string {
	attrs := asMap(asMap(resp)["attributes"])

	admin := "No"
	if boolOr(attrs, "admin", false) {
		admin = "Yes"
	}

	lines := []string{
		fmt.Sprintf("**Account: %s**", stringOr(attrs, "username", "Unknown")),
		fmt.Sprintf("- **Email:** %s", stringOr(attrs, "email", "Unknown")),
		fmt.Sprintf("- **Name:** %s %s", stringOr(attrs, "first_name", ""), stringOr(attrs, "last_name", "")),
		fmt.Sprintf("- **Language:** %s", stringOr(attrs, "language", "Unknown")),
		fmt.Sprintf("- **Admin:** %s", admin),
	}
	return strings.Join(lines, "\n")
}

// UserPage renders one page of the application API's user listing.
func UserPage(resp any) string {
	users := asSlice(asMap(resp)["data"])
	pagination := asMap(asMap(asMap(resp)["meta"])["pagination"])
	if len(users) == 0 {
		return "No users found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Users (Page %.0f of %.0f):**\n",
		numberOr(pagination, "current_page", 1), numberOr(pagination, "total_pages", 1))
	for _, u := range users {
		attrs := asMap(asMap(u)["attributes"])

		admin := "No"
		if boolOr(attrs, "root_admin", false) {
			admin = "Yes"
		}
		tfa := "Disabled"
		if boolOr(attrs, "2fa", false) {
			tfa = "Enabled"
		}

		fmt.Fprintf(&b, "\n- **%s** (`%s`)\n", stringOr(attrs, "username", "Unknown"), anyOr(attrs, "id", "N/A"))
		fmt.Fprintf(&b, "  - Email: %s\n", stringOr(attrs, "email", "Unknown"))
		fmt.Fprintf(&b, "  - Name: %s %s\n", stringOr(attrs, "first_name", ""), stringOr(attrs, "last_name", ""))
		fmt.Fprintf(&b, "  - Admin: %s\n", admin)
		fmt.Fprintf(&b, "  - 2FA: %s\n", tfa)
	}
	fmt.Fprintf(&b, "\nTotal: %.0f users", numberOr(pagination, "total", 0))
	return b.String()
}

// CreatedUser renders the result of a user creation. fallback is the
// requested username, used when the response omits attributes.
func CreatedUser(fallback string, resp any) string {
	attrs := asMap(asMap(resp)["attributes"])
	return fmt.Sprintf("Successfully created user: %s (ID: %s)",
		stringOr(attrs, "username", fallback), anyOr(attrs, "id", "Unknown"))
}

// AdminServerPage renders one page of the application API's server listing.
func AdminServerPage(resp any) string {
	servers := asSlice(asMap(resp)["data"])
	pagination := asMap(asMap(asMap(resp)["meta"])["pagination"])
	if len(servers) == 0 {
		return "No servers found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**All Servers (Page %.0f of %.0f):**\n",
		numberOr(pagination, "current_page", 1), numberOr(pagination, "total_pages", 1))
	for _, s := range servers {
		attrs := asMap(asMap(s)["attributes"])
		limits := asMap(attrs["limits"])

		fmt.Fprintf(&b, "\n- **%s** (`%s`)\n", stringOr(attrs, "name", "Unknown"), anyOr(attrs, "id", "N/A"))
		fmt.Fprintf(&b, "  - UUID: %s\n", stringOr(attrs, "uuid", "N/A"))
		fmt.Fprintf(&b, "  - Node: %s\n", anyOr(attrs, "node", "Unknown"))
		fmt.Fprintf(&b, "  - Status: %s\n", anyOr(attrs, "status", "Unknown"))
		fmt.Fprintf(&b, "  - Memory: %.0f MB\n", numberOr(limits, "memory", 0))
		fmt.Fprintf(&b, "  - Disk: %.0f MB\n", numberOr(limits, "disk", 0))
	}
	fmt.Fprintf(&b, "\nTotal: %.0f servers", numberOr(pagination, "total", 0))
	return b.String()
}

// NodeList renders the application API's node listing.
func NodeList(resp any) string {
	nodes := asSlice(asMap(resp)["data"])
	if len(nodes) == 0 {
		return "No nodes found."
	}

	var b strings.Builder
	b.WriteString("**Nodes:**\n")
	for _, n := range nodes {
		attrs := asMap(asMap(n)["attributes"])

		public := "No"
		if boolOr(attrs, "public", false) {
			public = "Yes"
		}
		maintenance := "No"
		if boolOr(attrs, "maintenance_mode", false) {
			maintenance = "Yes"
		}

		fmt.Fprintf(&b, "\n- **%s** (`%s`)\n", stringOr(attrs, "name", "Unknown"), anyOr(attrs, "id", "N/A"))
		fmt.Fprintf(&b, "  - FQDN: %s\n", stringOr(attrs, "fqdn", "Unknown"))
		fmt.Fprintf(&b, "  - Location ID: %s\n", anyOr(attrs, "location_id", "Unknown"))
		fmt.Fprintf(&b, "  - Memory: %.0f MB\n", numberOr(attrs, "memory", 0))
		fmt.Fprintf(&b, "  - Disk: %.0f MB\n", numberOr(attrs, "disk", 0))
		fmt.Fprintf(&b, "  - Public: %s\n", public)
		fmt.Fprintf(&b, "  - Maintenance: %s\n", maintenance)
	}
	return b.String()
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func stringOr(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// numberOr returns the field as float64; JSON numbers always decode to
// float64 through encoding/json's any path.
func numberOr(m map[string]any, key string, fallback float64) float64 {
	if n, ok := m[key].(float64); ok {
		return n
	}
	return fallback
}

func boolOr(m map[string]any, key string, fallback bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return fallback
}

// anyOr stringifies numeric-or-string fields like IDs and ports.
func anyOr(m map[string]any, key, fallback string) string {
	switch v := m[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return formatNumber(v)
	}
	return fallback
}

// formatNumber formats a JSON number without a trailing ".0" for integers.
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

func percent(used, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return used / limit * 100
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
