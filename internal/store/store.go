package store

import (
	"context"

	"github.com/haruplan/haruplan/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Users() Users
	Events() Events
	Tasks() Tasks

	// HealthPing verifies the backing database is reachable.
	HealthPing(ctx context.Context) error
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Delete(ctx context.Context, userID string) error
}

type Events interface {
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	GetByID(ctx context.Context, userID string, eventID int64) (*model.Event, error)
	// FindByTitle matches events case-insensitively on title, newest first.
	FindByTitle(ctx context.Context, userID, title string) ([]*model.Event, error)
	List(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error)
	Update(ctx context.Context, e *model.Event) (*model.Event, error)
	Delete(ctx context.Context, userID string, eventID int64) error
}

type Tasks interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, userID string, taskID int64) (*model.Task, error)
	List(ctx context.Context, req model.ListTasksRequest) ([]*model.Task, error)
	Update(ctx context.Context, t *model.Task) (*model.Task, error)
	// SetStatus transitions a task and maintains its completion stamp.
	SetStatus(ctx context.Context, userID string, taskID int64, status model.TaskStatus) (*model.Task, error)
	Delete(ctx context.Context, userID string, taskID int64) error
}
