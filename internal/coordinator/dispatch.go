package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// Command actions.
const (
	ActionCreate     = "createProfile"
	ActionSetTabs    = "setProfileTabs"
	ActionActivate   = "activateProfile"
	ActionDeactivate = "deactivateProfile"
	ActionGetState   = "getState"
	ActionDelete     = "deleteProfile"
	ActionExport     = "exportProfiles"
	ActionImport     = "importProfiles"
)

// Actions lists every action Dispatch accepts.
var Actions = []string{
	ActionCreate, ActionSetTabs, ActionActivate, ActionDeactivate,
	ActionGetState, ActionDelete, ActionExport, ActionImport,
}

// Command is a control-panel message.
type Command struct {
	Action string        `json:"action"`
	Name   string        `json:"name,omitempty"`
	Tabs   []profile.Tab `json:"tabs,omitempty"`
	Path   string        `json:"path,omitempty"`
	Mode   string        `json:"mode,omitempty"`
}

// Response answers exactly one Command. getState responses carry the
// profiles and currentProfile fields at the top level.
type Response struct {
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Code    errors.ErrorCode `json:"code,omitempty"`

	*StateOutput
	Profile *ProfileView  `json:"profile,omitempty"`
	Export  *ExportOutput `json:"export,omitempty"`
	Import  *ImportOutput `json:"import,omitempty"`
}

// Dispatch runs a command and reports its outcome. It never returns an
// error: failures are carried in the response.
func (c *Coordinator) Dispatch(ctx context.Context, cmd Command) Response {
	ctx = CommandContext(ctx, cmd.Action)
	logger := pslog.Ctx(ctx)
	start := time.Now()

	resp, err := c.dispatch(ctx, cmd)
	if err != nil {
		resp = ErrorResponse(err)
		if pErr, ok := errors.As(err); ok && pErr.IsValidation() {
			logger.Debug("command.rejected", "code", string(pErr.Code), "error", pErr.Message)
		} else {
			logger.Warn("command.failed", "err", err)
		}
		return resp
	}
	logger.Debug("command.done", "duration_ms", time.Since(start).Milliseconds())
	return resp
}

// CommandContext returns ctx with a logger tagged by a fresh command id and
// the action name.
func CommandContext(ctx context.Context, action string) context.Context {
	logger := pslog.Ctx(ctx).With("cmd", uuid.NewString(), "action", action)
	return pslog.ContextWithLogger(ctx, logger)
}

func (c *Coordinator) dispatch(ctx context.Context, cmd Command) (Response, error) {
	ok := Response{Success: true}
	switch cmd.Action {
	case ActionCreate:
		p, err := c.Create(ctx, cmd.Name)
		if err != nil {
			return Response{}, err
		}
		ok.Profile = NewProfileView(p)
	case ActionSetTabs:
		p, err := c.SetTabs(ctx, cmd.Name, cmd.Tabs)
		if err != nil {
			return Response{}, err
		}
		ok.Profile = NewProfileView(p)
	case ActionActivate:
		if err := c.Activate(ctx, cmd.Name); err != nil {
			return Response{}, err
		}
	case ActionDeactivate:
		if err := c.Deactivate(ctx); err != nil {
			return Response{}, err
		}
	case ActionGetState:
		st, err := c.State(ctx)
		if err != nil {
			return Response{}, err
		}
		ok.StateOutput = st
	case ActionDelete:
		if err := c.Delete(ctx, cmd.Name); err != nil {
			return Response{}, err
		}
	case ActionExport:
		out, err := c.Export(ctx, cmd.Path)
		if err != nil {
			return Response{}, err
		}
		ok.Export = out
	case ActionImport:
		out, err := c.Import(ctx, cmd.Path, ImportMode(cmd.Mode))
		if err != nil {
			return Response{}, err
		}
		ok.Import = out
	default:
		return Response{}, errors.NewUnknownAction(cmd.Action)
	}
	return ok, nil
}

// ErrorResponse converts an error to a failed response. Internal error
// details never reach the response.
func ErrorResponse(err error) Response {
	pErr, ok := errors.As(err)
	if !ok {
		pErr = errors.NewInternal(err)
	}
	return Response{Success: false, Error: pErr.Message, Code: pErr.Code}
}
