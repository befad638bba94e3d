package mcp

import "github.com/mark3labs/mcp-go/mcp"

var tabItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"url":    map[string]any{"type": "string", "description": "URL the tab opens"},
		"pinned": map[string]any{"type": "boolean", "description": "Whether the tab is pinned"},
	},
	"required": []string{"url"},
}

var createToolDef = mcp.NewTool("profile_create",
	mcp.WithDescription("Create an empty, inactive tab profile."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Unique profile name")),
)

var setTabsToolDef = mcp.NewTool("profile_set_tabs",
	mcp.WithDescription("Replace the saved tabs of a profile. Does not change the browser window."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Profile name")),
	mcp.WithArray("tabs", mcp.Required(), mcp.Description("Ordered tabs to save"), mcp.Items(tabItemSchema)),
)

var activateToolDef = mcp.NewTool("profile_activate",
	mcp.WithDescription("Activate a profile: replace the window's tabs with the profile's tabs. "+
		"Switching back to a profile restores the tabs it had when it was left."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Profile name")),
)

var deactivateToolDef = mcp.NewTool("profile_deactivate",
	mcp.WithDescription("Deactivate the current profile and restore the tabs open before the first activation."),
)

var stateToolDef = mcp.NewTool("profile_state",
	mcp.WithDescription("List all profiles with their saved tabs and the current profile."),
	mcp.WithString("format", mcp.Description("Output format: json (default) or markdown"), mcp.Enum("json", "markdown")),
)

var deleteToolDef = mcp.NewTool("profile_delete",
	mcp.WithDescription("Delete a profile. Deleting the current profile leaves the window as it is."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Profile name")),
)

var exportToolDef = mcp.NewTool("profile_export",
	mcp.WithDescription("Export all profiles to a JSONL file."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path (default: ~/.tabprofile/exports/profiles-<unix>.jsonl)")),
)

var importToolDef = mcp.NewTool("profile_import",
	mcp.WithDescription("Import profiles from a JSONL export file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
	mcp.WithString("mode", mcp.Description("Collision handling: error (default, atomic) or replace"), mcp.Enum("error", "replace")),
)
