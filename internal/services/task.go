package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/notify"
	"github.com/haruplan/haruplan/internal/store"
)

// TaskService handles todo item operations.
type TaskService struct {
	store    store.Store
	notifier *notify.Notifier
}

func NewTaskService(s store.Store, n *notify.Notifier) *TaskService {
	return &TaskService{store: s, notifier: n}
}

// CreateTask validates and persists a task, then announces it.
func (s *TaskService) CreateTask(ctx context.Context, tk *model.Task) (*model.Task, error) {
	if tk.Title == "" {
		return nil, errors.Wrap(model.ErrValidation, "title is required")
	}
	if tk.Priority != "" && !model.ValidPriority(tk.Priority) {
		return nil, errors.Wrapf(model.ErrValidation, "unknown priority %q", tk.Priority)
	}
	if tk.Status != "" && !model.ValidStatus(tk.Status) {
		return nil, errors.Wrapf(model.ErrValidation, "unknown status %q", tk.Status)
	}
	created, err := s.store.Tasks().Create(ctx, tk)
	if err != nil {
		return nil, err
	}
	s.notifier.TaskCreated(ctx, created)
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID string, taskID int64) (*model.Task, error) {
	return s.store.Tasks().GetByID(ctx, userID, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, req model.ListTasksRequest) ([]*model.Task, error) {
	return s.store.Tasks().List(ctx, req)
}

func (s *TaskService) UpdateTask(ctx context.Context, tk *model.Task) (*model.Task, error) {
	if tk.Title == "" {
		return nil, errors.Wrap(model.ErrValidation, "title is required")
	}
	if !model.ValidPriority(tk.Priority) {
		return nil, errors.Wrapf(model.ErrValidation, "unknown priority %q", tk.Priority)
	}
	if !model.ValidStatus(tk.Status) {
		return nil, errors.Wrapf(model.ErrValidation, "unknown status %q", tk.Status)
	}
	return s.store.Tasks().Update(ctx, tk)
}

// SetTaskStatus transitions a task and maintains its completion stamp.
func (s *TaskService) SetTaskStatus(ctx context.Context, userID string, taskID int64, status model.TaskStatus) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, errors.Wrapf(model.ErrValidation, "unknown status %q", status)
	}
	return s.store.Tasks().SetStatus(ctx, userID, taskID, status)
}

func (s *TaskService) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	return s.store.Tasks().Delete(ctx, userID, taskID)
}
