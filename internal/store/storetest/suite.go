package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := uuid.New().String()
	username := "u-" + userID[:8]
	email := username + "@example.test"

	// Users
	u := &model.User{UserID: userID, Username: username, Email: email, PasswordHash: "x", TimeZone: "Asia/Seoul"}
	if _, err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().GetByID(ctx, userID); err != nil || got == nil || got.Username != username {
		t.Fatalf("GetUserByID: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByUsername(ctx, username); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUserByUsername: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByEmail(ctx, email); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUserByEmail: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Create(ctx, &model.User{UserID: uuid.New().String(), Username: username, Email: "other@example.test", PasswordHash: "x", TimeZone: "UTC"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate username should conflict, got %v", err)
	}

	// Events
	start := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	ev, err := s.Events().Create(ctx, &model.Event{
		UserID:       userID,
		Title:        "회의",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Participants: []string{"존"},
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.EventID == 0 {
		t.Fatalf("CreateEvent: zero event id")
	}
	if got, err := s.Events().GetByID(ctx, userID, ev.EventID); err != nil || got == nil || got.Title != "회의" || len(got.Participants) != 1 {
		t.Fatalf("GetEvent: got=%v err=%v", got, err)
	}
	if found, err := s.Events().FindByTitle(ctx, userID, "회의"); err != nil || len(found) != 1 {
		t.Fatalf("FindByTitle: n=%d err=%v", len(found), err)
	}

	// Second event outside the query window
	later := start.AddDate(0, 0, 7)
	if _, err := s.Events().Create(ctx, &model.Event{UserID: userID, Title: "점심", StartTime: later, EndTime: later.Add(time.Hour)}); err != nil {
		t.Fatalf("CreateEvent second: %v", err)
	}
	from := start.Add(-time.Hour)
	to := start.Add(24 * time.Hour)
	if lst, err := s.Events().List(ctx, model.ListEventsRequest{UserID: userID, From: &from, To: &to}); err != nil || len(lst) != 1 {
		t.Fatalf("ListEvents window: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Events().List(ctx, model.ListEventsRequest{UserID: userID, Limit: 1}); err != nil || len(lst) != 1 {
		t.Fatalf("ListEvents limit: n=%d err=%v", len(lst), err)
	}

	ev.Title = "주간 회의"
	if updated, err := s.Events().Update(ctx, ev); err != nil || updated.Title != "주간 회의" {
		t.Fatalf("UpdateEvent: got=%v err=%v", updated, err)
	}

	// Tasks
	due := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	tk, err := s.Tasks().Create(ctx, &model.Task{UserID: userID, Title: "보고서 제출", DueDate: &due, DueAllDay: true})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if tk.TaskID == 0 || tk.Status != model.StatusTodo || tk.Priority != model.PriorityMedium {
		t.Fatalf("CreateTask defaults: %+v", tk)
	}
	if got, err := s.Tasks().GetByID(ctx, userID, tk.TaskID); err != nil || got.DueDate == nil || !got.DueAllDay {
		t.Fatalf("GetTask: got=%v err=%v", got, err)
	}

	done, err := s.Tasks().SetStatus(ctx, userID, tk.TaskID, model.StatusDone)
	if err != nil || done.Status != model.StatusDone || done.CompletedAt == nil {
		t.Fatalf("SetStatus done: got=%+v err=%v", done, err)
	}
	reopened, err := s.Tasks().SetStatus(ctx, userID, tk.TaskID, model.StatusTodo)
	if err != nil || reopened.Status != model.StatusTodo || reopened.CompletedAt != nil {
		t.Fatalf("SetStatus reopen should clear completion stamp: got=%+v err=%v", reopened, err)
	}

	todo := model.StatusTodo
	if lst, err := s.Tasks().List(ctx, model.ListTasksRequest{UserID: userID, Status: &todo}); err != nil || len(lst) != 1 {
		t.Fatalf("ListTasks by status: n=%d err=%v", len(lst), err)
	}
	dueBy := due.Add(time.Hour)
	if lst, err := s.Tasks().List(ctx, model.ListTasksRequest{UserID: userID, DueBy: &dueBy}); err != nil || len(lst) != 1 {
		t.Fatalf("ListTasks dueBy: n=%d err=%v", len(lst), err)
	}

	tk.Priority = model.PriorityHigh
	if updated, err := s.Tasks().Update(ctx, tk); err != nil || updated.Priority != model.PriorityHigh {
		t.Fatalf("UpdateTask: got=%v err=%v", updated, err)
	}

	// Not-found semantics
	if _, err := s.Events().GetByID(ctx, userID, 999999); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetEvent missing: want ErrNotFound got %v", err)
	}
	if _, err := s.Tasks().SetStatus(ctx, userID, 999999, model.StatusDone); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("SetStatus missing: want ErrNotFound got %v", err)
	}
	if err := s.Events().Delete(ctx, "someone-else", ev.EventID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteEvent wrong owner: want ErrNotFound got %v", err)
	}

	// Deletes
	if err := s.Tasks().Delete(ctx, userID, tk.TaskID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := s.Events().Delete(ctx, userID, ev.EventID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := s.HealthPing(ctx); err != nil {
		t.Fatalf("HealthPing: %v", err)
	}
}
