package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/haruplan/haruplan/internal/api/respond"
	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/services"
)

// EventHandler is a thin HTTP transport over the EventService.
type EventHandler struct {
	svc *services.EventService
}

func NewEventHandler(svc *services.EventService) *EventHandler { return &EventHandler{svc: svc} }

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateEvent POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	ev.UserID = UserID(r)
	out, err := h.svc.CreateEvent(r.Context(), &ev)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListEvents GET /api/events?from=&to=&limit=
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	req := model.ListEventsRequest{UserID: UserID(r)}
	var err error
	if req.From, err = queryTime(r, "from"); err != nil {
		respond.WriteBadRequest(w, "from must be RFC3339")
		return
	}
	if req.To, err = queryTime(r, "to"); err != nil {
		respond.WriteBadRequest(w, "to must be RFC3339")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			respond.WriteBadRequest(w, "limit must be an integer")
			return
		}
	}
	events, err := h.svc.ListEvents(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}

// GetEvent GET /api/events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		respond.WriteBadRequest(w, "invalid event id")
		return
	}
	ev, err := h.svc.GetEvent(r.Context(), UserID(r), id)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ev)
}

// UpdateEvent PUT /api/events/{eventId}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		respond.WriteBadRequest(w, "invalid event id")
		return
	}
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	ev.UserID = UserID(r)
	ev.EventID = id
	out, err := h.svc.UpdateEvent(r.Context(), &ev)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteEvent DELETE /api/events/{eventId}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventId")
	if !ok {
		respond.WriteBadRequest(w, "invalid event id")
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), UserID(r), id); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
