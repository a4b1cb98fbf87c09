package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/haruplan/haruplan/internal/api/metrics"
	"github.com/haruplan/haruplan/internal/api/respond"
	"github.com/haruplan/haruplan/internal/nlp"
	"github.com/haruplan/haruplan/internal/services"
)

// AssistantHandler serves the natural-language command endpoint.
type AssistantHandler struct {
	svc        *services.AssistantService
	defaultLoc *time.Location
}

func NewAssistantHandler(svc *services.AssistantService, defaultLoc *time.Location) *AssistantHandler {
	return &AssistantHandler{svc: svc, defaultLoc: defaultLoc}
}

// Command POST /api/assistant/command
//
// The optional referenceTime pins "today" for relative date resolution;
// clients in other zones should always send it. Without it the server
// clock in the user's registered time zone is used.
func (h *AssistantHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text          string `json:"text"`
		ReferenceTime string `json:"referenceTime,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Text == "" {
		respond.WriteBadRequest(w, "text is required")
		return
	}

	loc := h.defaultLoc
	if tz := UserTimeZone(r); tz != "" {
		if userLoc, err := time.LoadLocation(tz); err == nil {
			loc = userLoc
		}
	}
	now := time.Now().In(loc)
	if req.ReferenceTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.ReferenceTime)
		if err != nil {
			respond.WriteBadRequest(w, "referenceTime must be RFC3339")
			return
		}
		now = parsed.In(loc)
	}

	res, err := h.svc.Execute(r.Context(), UserID(r), req.Text, now)
	if err != nil {
		if pe := nlp.AsParseError(err); pe != nil {
			metrics.ObserveCommandFailure(string(pe.Code))
		}
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
