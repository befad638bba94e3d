package web

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/hpungsan/tabprofile/internal/coordinator"
	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
)

// maxCommandBytes bounds a POST /api/command body.
const maxCommandBytes = 4 << 20

// crossOrigin refuses state-changing browser requests from other origins.
var crossOrigin = http.NewCrossOriginProtection()

// Handlers contains HTTP route handlers.
type Handlers struct {
	coord    *coordinator.Coordinator
	renderer *Renderer
}

// HandleCommand handles POST /api/command: one Command in, one Response out.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if err := checkCommandRequest(r); err != nil {
		renderResponse(w, coordinator.ErrorResponse(err))
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	dec.DisallowUnknownFields()

	var cmd coordinator.Command
	if err := dec.Decode(&cmd); err != nil {
		renderResponse(w, coordinator.ErrorResponse(errors.NewInvalidRequest("invalid command: "+err.Error())))
		return
	}
	renderResponse(w, h.coord.Dispatch(r.Context(), cmd))
}

// checkCommandRequest admits only same-origin JSON posts. Requiring
// application/json forces a CORS preflight for any browser caller.
func checkCommandRequest(r *http.Request) error {
	if err := crossOrigin.Check(r); err != nil {
		return errors.NewForbidden("cross-origin request refused")
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewInvalidRequest("Content-Type must be application/json")
	}
	return nil
}

// HandleState handles GET /api/state.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	renderResponse(w, h.coord.Dispatch(r.Context(), coordinator.Command{Action: coordinator.ActionGetState}))
}

// HandleStatus handles GET /, a read-only page listing profiles and their tabs.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := coordinator.CommandContext(r.Context(), coordinator.ActionGetState)
	st, err := h.coord.State(ctx)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "status", StatusPageData{
		PageData: PageData{
			Title:   "Tab profiles",
			Version: h.renderer.version,
		},
		Current:      st.Current(),
		Count:        len(st.Profiles),
		RenderedHTML: renderMarkdown(profile.Summary(st.ProfileList(), st.Current())),
	})
}

// renderResponse writes a command Response with the status its error code maps to.
func renderResponse(w http.ResponseWriter, resp coordinator.Response) {
	status := http.StatusOK
	if !resp.Success {
		status = errors.StatusOf(resp.Code)
	}
	renderJSON(w, status, resp)
}
