package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/notify"
	"github.com/haruplan/haruplan/internal/store"
)

// DefaultEventDuration is applied when a timed event has no explicit end.
const DefaultEventDuration = time.Hour

// EventService handles calendar event operations.
type EventService struct {
	store    store.Store
	notifier *notify.Notifier
}

func NewEventService(s store.Store, n *notify.Notifier) *EventService {
	return &EventService{store: s, notifier: n}
}

// CreateEvent validates and persists an event, then announces it.
// A zero EndTime is derived from StartTime: end of day for all-day
// events, one hour later otherwise.
func (s *EventService) CreateEvent(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if ev.Title == "" {
		return nil, errors.Wrap(model.ErrValidation, "title is required")
	}
	if ev.StartTime.IsZero() {
		return nil, errors.Wrap(model.ErrValidation, "startTime is required")
	}
	if ev.EndTime.IsZero() {
		if ev.AllDay {
			ev.EndTime = ev.StartTime.AddDate(0, 0, 1)
		} else {
			ev.EndTime = ev.StartTime.Add(DefaultEventDuration)
		}
	}
	if ev.EndTime.Before(ev.StartTime) {
		return nil, errors.Wrap(model.ErrValidation, "endTime precedes startTime")
	}
	created, err := s.store.Events().Create(ctx, ev)
	if err != nil {
		return nil, err
	}
	s.notifier.EventCreated(ctx, created)
	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, userID string, eventID int64) (*model.Event, error) {
	return s.store.Events().GetByID(ctx, userID, eventID)
}

func (s *EventService) ListEvents(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error) {
	return s.store.Events().List(ctx, req)
}

func (s *EventService) UpdateEvent(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if ev.Title == "" {
		return nil, errors.Wrap(model.ErrValidation, "title is required")
	}
	return s.store.Events().Update(ctx, ev)
}

func (s *EventService) DeleteEvent(ctx context.Context, userID string, eventID int64) error {
	return s.store.Events().Delete(ctx, userID, eventID)
}

// FindEventsByTitle returns the user's events with the given title,
// newest first. Used by the assistant to resolve spoken references.
func (s *EventService) FindEventsByTitle(ctx context.Context, userID, title string) ([]*model.Event, error) {
	return s.store.Events().FindByTitle(ctx, userID, title)
}
