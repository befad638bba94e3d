package mcp

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/config"
	"github.com/hpungsan/tabprofile/internal/coordinator"
)

// ServerName is the name reported during the MCP handshake.
const ServerName = "tabprofile"

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"profile_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"profile_set_tabs": {
		def:     setTabsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetTabs },
	},
	"profile_activate": {
		def:     activateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivate },
	},
	"profile_deactivate": {
		def:     deactivateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeactivate },
	},
	"profile_state": {
		def:     stateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleState },
	},
	"profile_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"profile_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"profile_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns every registered tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ToolGroup extracts the group prefix from a tool name
// ("profile_create" → "profile").
func ToolGroup(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// NewServer creates an MCP server exposing the profile tools.
// Tools listed in cfg.DisabledTools are not registered.
func NewServer(coord *coordinator.Coordinator, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(coord)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the MCP server over in and out until ctx is done or in closes.
// Transport errors are written through the context logger.
func Run(ctx context.Context, coord *coordinator.Coordinator, cfg *config.Config, version string, in io.Reader, out io.Writer) error {
	logger := pslog.Ctx(ctx)
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("mcp.disabled_tools.unknown", "tools", unknown)
	}

	stdio := server.NewStdioServer(NewServer(coord, cfg, version))
	stdio.SetErrorLogger(pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel))
	logger.Info("mcp.serve", "disabled", len(cfg.DisabledTools))
	return stdio.Listen(ctx, in, out)
}
