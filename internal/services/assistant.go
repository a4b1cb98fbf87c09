package services

import (
	"context"
	"fmt"
	"time"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/nlp"
)

// CommandResult is the outcome of one executed assistant instruction.
type CommandResult struct {
	Intent  nlp.Intent     `json:"intent"`
	Message string         `json:"message"`
	Event   *model.Event   `json:"event,omitempty"`
	Events  []*model.Event `json:"events,omitempty"`
	Task    *model.Task    `json:"task,omitempty"`
	Tasks   []*model.Task  `json:"tasks,omitempty"`
}

// AssistantService interprets free-text instructions and executes the
// resulting commands against the event and task services.
type AssistantService struct {
	interp *nlp.Interpreter
	events *EventService
	tasks  *TaskService
}

func NewAssistantService(interp *nlp.Interpreter, events *EventService, tasks *TaskService) *AssistantService {
	return &AssistantService{interp: interp, events: events, tasks: tasks}
}

// Execute parses text against the reference instant now and runs the
// command for the given user. Parse failures are returned as
// *nlp.ParseError; a command whose required fields could not be
// extracted fails the same way with the missing field names.
func (s *AssistantService) Execute(ctx context.Context, userID, text string, now time.Time) (*CommandResult, error) {
	req, err := s.interp.Interpret(text, now)
	if err != nil {
		return nil, err
	}
	if len(req.Unresolved) > 0 {
		return nil, &nlp.ParseError{Code: nlp.FailPartialCommand, Text: text, Missing: req.Unresolved}
	}

	switch req.Intent {
	case nlp.IntentCreateEvent:
		return s.createEvent(ctx, userID, req)
	case nlp.IntentCreateTask:
		return s.createTask(ctx, userID, req)
	case nlp.IntentListEvents:
		return s.listEvents(ctx, userID, req, now)
	case nlp.IntentListTasks:
		return s.listTasks(ctx, userID, req)
	case nlp.IntentUpdateTaskStatus:
		return s.updateTaskStatus(ctx, userID, req)
	case nlp.IntentDeleteEvent:
		return s.deleteEvent(ctx, userID, req)
	case nlp.IntentDeleteTask:
		return s.deleteTask(ctx, userID, req)
	}
	return nil, &nlp.ParseError{Code: nlp.FailUnknownIntent, Text: text}
}

func (s *AssistantService) createEvent(ctx context.Context, userID string, req *nlp.CommandRequest) (*CommandResult, error) {
	ev := &model.Event{
		UserID:       userID,
		Title:        req.Title,
		StartTime:    req.When.At(),
		AllDay:       !req.When.HasTime,
		Participants: req.Participants,
	}
	created, err := s.events.CreateEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Intent:  req.Intent,
		Message: fmt.Sprintf("'%s' 일정을 등록했습니다.", created.Title),
		Event:   created,
	}, nil
}

func (s *AssistantService) createTask(ctx context.Context, userID string, req *nlp.CommandRequest) (*CommandResult, error) {
	tk := &model.Task{UserID: userID, Title: req.Title}
	if req.When != nil {
		due := req.When.At()
		tk.DueDate = &due
		tk.DueAllDay = !req.When.HasTime
	}
	created, err := s.tasks.CreateTask(ctx, tk)
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Intent:  req.Intent,
		Message: fmt.Sprintf("'%s' 할 일을 추가했습니다.", created.Title),
		Task:    created,
	}, nil
}

func (s *AssistantService) listEvents(ctx context.Context, userID string, req *nlp.CommandRequest, now time.Time) (*CommandResult, error) {
	list := model.ListEventsRequest{UserID: userID}
	if req.When != nil {
		// A day cue narrows the listing to that day; a bare week cue
		// covers the seven days from the week start.
		from := req.When.Date
		days := 1
		if req.When.WholeWeek {
			days = 7
		}
		to := from.AddDate(0, 0, days)
		list.From, list.To = &from, &to
	} else {
		from := now
		list.From = &from
	}
	events, err := s.events.ListEvents(ctx, list)
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Intent:  req.Intent,
		Message: fmt.Sprintf("일정 %d건을 찾았습니다.", len(events)),
		Events:  events,
	}, nil
}

func (s *AssistantService) listTasks(ctx context.Context, userID string, req *nlp.CommandRequest) (*CommandResult, error) {
	list := model.ListTasksRequest{UserID: userID}
	if req.Status != "" {
		status := model.TaskStatus(req.Status)
		list.Status = &status
	}
	if req.When != nil {
		days := 1
		if req.When.WholeWeek {
			days = 7
		}
		dueBy := req.When.Date.AddDate(0, 0, days)
		list.DueBy = &dueBy
	}
	tasks, err := s.tasks.ListTasks(ctx, list)
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Intent:  req.Intent,
		Message: fmt.Sprintf("할 일 %d건을 찾았습니다.", len(tasks)),
		Tasks:   tasks,
	}, nil
}

func (s *AssistantService) updateTaskStatus(ctx context.Context, userID string, req *nlp.CommandRequest) (*CommandResult, error) {
	updated, err := s.tasks.SetTaskStatus(ctx, userID, req.TaskRef, model.TaskStatus(req.Status))
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Intent:  req.Intent,
		Message: fmt.Sprintf("#%d 할 일 상태를 '%s'(으)로 변경했습니다.", updated.TaskID, updated.Status),
		Task:    updated,
	}, nil
}

// deleteEvent resolves the spoken title to a stored event. When several
// events share the title, the most recent one is removed.
func (s *AssistantService) deleteEvent(ctx context.Context, userID string, req *nlp.CommandRequest) (*CommandResult, error) {
	matches, err := s.events.FindEventsByTitle(ctx, userID, req.Title)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, model.ErrNotFound
	}
	target := matches[0]
	if err := s.events.DeleteEvent(ctx, userID, target.EventID); err != nil {
		return nil, err
	}
	return &CommandResult{
		Intent:  req.Intent,
		Message: fmt.Sprintf("'%s' 일정을 삭제했습니다.", target.Title),
		Event:   target,
	}, nil
}

func (s *AssistantService) deleteTask(ctx context.Context, userID string, req *nlp.CommandRequest) (*CommandResult, error) {
	target, err := s.tasks.GetTask(ctx, userID, req.TaskRef)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.DeleteTask(ctx, userID, target.TaskID); err != nil {
		return nil, err
	}
	return &CommandResult{
		Intent:  req.Intent,
		Message: fmt.Sprintf("#%d 할 일을 삭제했습니다.", target.TaskID),
		Task:    target,
	}, nil
}
