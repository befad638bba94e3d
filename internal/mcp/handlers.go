package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tabprofile/internal/coordinator"
	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	coord *coordinator.Coordinator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(coord *coordinator.Coordinator) *Handlers {
	return &Handlers{coord: coord}
}

// NameRequest carries a profile name.
type NameRequest struct {
	Name string `json:"name"`
}

// SetTabsRequest represents the arguments for profile_set_tabs.
type SetTabsRequest struct {
	Name string        `json:"name"`
	Tabs []profile.Tab `json:"tabs"`
}

// StateRequest represents the arguments for profile_state.
type StateRequest struct {
	Format string `json:"format,omitempty"`
}

// ExportRequest represents the arguments for profile_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for profile_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// HandleCreate handles the profile_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionCreate)
	p, err := h.coord.Create(ctx, input.Name)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(coordinator.NewProfileView(p))
}

// HandleSetTabs handles the profile_set_tabs tool call.
func (h *Handlers) HandleSetTabs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetTabsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionSetTabs)
	p, err := h.coord.SetTabs(ctx, input.Name, input.Tabs)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(coordinator.NewProfileView(p))
}

// HandleActivate handles the profile_activate tool call.
func (h *Handlers) HandleActivate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionActivate)
	if err := h.coord.Activate(ctx, input.Name); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"activated": profile.NormalizeName(input.Name)})
}

// HandleDeactivate handles the profile_deactivate tool call.
func (h *Handlers) HandleDeactivate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionDeactivate)
	if err := h.coord.Deactivate(ctx); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deactivated": true})
}

// HandleState handles the profile_state tool call.
func (h *Handlers) HandleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Format != "" && input.Format != "json" && input.Format != "markdown" {
		return errorResult(errors.NewInvalidRequest("format must be one of: json, markdown")), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionGetState)
	st, err := h.coord.State(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Format == "markdown" {
		return mcp.NewToolResultText(profile.Summary(st.ProfileList(), st.Current())), nil
	}
	return successResult(st)
}

// HandleDelete handles the profile_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionDelete)
	if err := h.coord.Delete(ctx, input.Name); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"name": profile.NormalizeName(input.Name), "deleted": true})
}

// HandleExport handles the profile_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionExport)
	out, err := h.coord.Export(ctx, input.Path)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleImport handles the profile_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	ctx = coordinator.CommandContext(ctx, coordinator.ActionImport)
	out, err := h.coord.Import(ctx, input.Path, coordinator.ImportMode(input.Mode))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// errorResult creates an MCP error result from any error.
// Wrapped errors keep the wrapper's context in the message. INTERNAL errors
// never expose details.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pErr, ok := errors.As(err); ok {
		message := pErr.Message
		prefix := strings.TrimSuffix(err.Error(), pErr.Error())
		if pErr.Code != errors.ErrInternal && prefix != err.Error() && prefix != "" {
			message = prefix + message
		}
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": message,
			"status":  pErr.Status,
		}
		if pErr.Code != errors.ErrInternal && len(pErr.Details) > 0 {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
