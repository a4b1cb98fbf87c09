package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/emersion/go-ical"

	"github.com/haruplan/haruplan/internal/api/respond"
	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/services"
)

// FeedHandler exports a user's events as an iCalendar feed so external
// calendar apps can subscribe.
type FeedHandler struct {
	svc *services.EventService
}

func NewFeedHandler(svc *services.EventService) *FeedHandler { return &FeedHandler{svc: svc} }

// Feed GET /api/events/feed.ics
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context(), model.ListEventsRequest{UserID: UserID(r)})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//haruplan//haruplan-server//KO")

	now := time.Now().UTC()
	for _, ev := range events {
		comp := ical.NewEvent()
		comp.Props.SetText(ical.PropUID, fmt.Sprintf("event-%d@haruplan", ev.EventID))
		comp.Props.SetDateTime(ical.PropDateTimeStamp, now)
		comp.Props.SetText(ical.PropSummary, ev.Title)
		comp.Props.SetDateTime(ical.PropDateTimeStart, ev.StartTime)
		comp.Props.SetDateTime(ical.PropDateTimeEnd, ev.EndTime)
		if ev.Description != nil {
			comp.Props.SetText(ical.PropDescription, *ev.Description)
		}
		if ev.Location != nil {
			comp.Props.SetText(ical.PropLocation, *ev.Location)
		}
		cal.Children = append(cal.Children, comp.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="haruplan.ics"`)
	_, _ = w.Write(buf.Bytes())
}
