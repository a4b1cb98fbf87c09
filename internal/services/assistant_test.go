package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/nlp"
	"github.com/haruplan/haruplan/internal/notify"
	"github.com/haruplan/haruplan/internal/store"
	"github.com/haruplan/haruplan/internal/store/sqlite"
)

var seoul = time.FixedZone("KST", 9*60*60)

type fixture struct {
	store     store.Store
	events    *EventService
	tasks     *TaskService
	assistant *AssistantService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)

	n := notify.New("", zerolog.Nop())
	events := NewEventService(s, n)
	tasks := NewTaskService(s, n)
	interp := nlp.NewInterpreter(nlp.NewKoreanTagger(), nlp.InterpreterConfig{
		WeekStart: time.Monday,
	})
	return &fixture{
		store:     s,
		events:    events,
		tasks:     tasks,
		assistant: NewAssistantService(interp, events, tasks),
	}
}

func TestExecuteCreateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Sunday morning.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	res, err := f.assistant.Execute(ctx, "u1", "내일 오후 2시에 존과 회의 일정 추가해줘", now)
	require.NoError(t, err)
	assert.Equal(t, nlp.IntentCreateEvent, res.Intent)
	assert.NotEmpty(t, res.Message)
	require.NotNil(t, res.Event)
	assert.Equal(t, "회의", res.Event.Title)
	assert.True(t, res.Event.StartTime.Equal(time.Date(2024, 3, 11, 14, 0, 0, 0, seoul)))
	assert.False(t, res.Event.AllDay)
	assert.Equal(t, []string{"존"}, res.Event.Participants)

	stored, err := f.store.Events().GetByID(ctx, "u1", res.Event.EventID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(res.Event.StartTime))
}

func TestExecuteCreateTaskWithDeadline(t *testing.T) {
	f := newFixture(t)
	// Monday.
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, seoul)

	res, err := f.assistant.Execute(context.Background(), "u1", "금요일까지 보고서 제출 작업 추가해줘", now)
	require.NoError(t, err)
	assert.Equal(t, nlp.IntentCreateTask, res.Intent)
	require.NotNil(t, res.Task)
	assert.Equal(t, "보고서 제출", res.Task.Title)
	require.NotNil(t, res.Task.DueDate)
	assert.True(t, res.Task.DueDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, seoul)))
	assert.True(t, res.Task.DueAllDay)
	assert.Equal(t, model.StatusTodo, res.Task.Status)
}

func TestExecuteUpdateTaskStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.CreateTask(ctx, &model.Task{UserID: "u1", Title: "보고서"})
	require.NoError(t, err)

	res, err := f.assistant.Execute(ctx, "u1", "작업 #1 완료로 표시해줘", time.Date(2024, 3, 11, 9, 0, 0, 0, seoul))
	require.NoError(t, err)
	assert.Equal(t, nlp.IntentUpdateTaskStatus, res.Intent)
	require.NotNil(t, res.Task)
	assert.Equal(t, created.TaskID, res.Task.TaskID)
	assert.Equal(t, model.StatusDone, res.Task.Status)
	assert.NotNil(t, res.Task.CompletedAt)
}

func TestExecuteDeleteEventRemovesNewestMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, err := f.events.CreateEvent(ctx, &model.Event{
		UserID: "u1", Title: "회의",
		StartTime: time.Date(2024, 3, 11, 10, 0, 0, 0, seoul),
	})
	require.NoError(t, err)
	newer, err := f.events.CreateEvent(ctx, &model.Event{
		UserID: "u1", Title: "회의",
		StartTime: time.Date(2024, 3, 12, 10, 0, 0, 0, seoul),
	})
	require.NoError(t, err)

	res, err := f.assistant.Execute(ctx, "u1", "회의 삭제해줘", time.Date(2024, 3, 11, 9, 0, 0, 0, seoul))
	require.NoError(t, err)
	assert.Equal(t, nlp.IntentDeleteEvent, res.Intent)
	require.NotNil(t, res.Event)
	assert.Equal(t, newer.EventID, res.Event.EventID)

	_, err = f.store.Events().GetByID(ctx, "u1", newer.EventID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.store.Events().GetByID(ctx, "u1", older.EventID)
	assert.NoError(t, err)
}

func TestExecuteListEventsForDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	_, err := f.events.CreateEvent(ctx, &model.Event{
		UserID: "u1", Title: "점심",
		StartTime: time.Date(2024, 3, 11, 12, 0, 0, 0, seoul),
	})
	require.NoError(t, err)
	_, err = f.events.CreateEvent(ctx, &model.Event{
		UserID: "u1", Title: "워크숍",
		StartTime: time.Date(2024, 3, 20, 10, 0, 0, 0, seoul),
	})
	require.NoError(t, err)

	res, err := f.assistant.Execute(ctx, "u1", "내일 일정 보여줘", now)
	require.NoError(t, err)
	assert.Equal(t, nlp.IntentListEvents, res.Intent)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "점심", res.Events[0].Title)
}

func TestExecuteListEventsForWholeWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Sunday 2024-03-10; the Monday-start week runs Mar 4–10.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	_, err := f.events.CreateEvent(ctx, &model.Event{
		UserID: "u1", Title: "주간 회의",
		StartTime: time.Date(2024, 3, 5, 10, 0, 0, 0, seoul),
	})
	require.NoError(t, err)
	_, err = f.events.CreateEvent(ctx, &model.Event{
		UserID: "u1", Title: "검토",
		StartTime: time.Date(2024, 3, 8, 14, 0, 0, 0, seoul),
	})
	require.NoError(t, err)
	_, err = f.events.CreateEvent(ctx, &model.Event{
		UserID: "u1", Title: "워크숍",
		StartTime: time.Date(2024, 3, 13, 10, 0, 0, 0, seoul),
	})
	require.NoError(t, err)

	res, err := f.assistant.Execute(ctx, "u1", "이번 주 일정 보여줘", now)
	require.NoError(t, err)
	assert.Equal(t, nlp.IntentListEvents, res.Intent)
	require.Len(t, res.Events, 2)
	titles := []string{res.Events[0].Title, res.Events[1].Title}
	assert.ElementsMatch(t, []string{"주간 회의", "검토"}, titles)
}

func TestExecutePartialCommand(t *testing.T) {
	f := newFixture(t)

	_, err := f.assistant.Execute(context.Background(), "u1", "일정 추가해줘", time.Date(2024, 3, 10, 9, 0, 0, 0, seoul))
	require.Error(t, err)
	require.True(t, nlp.IsFailure(err, nlp.FailPartialCommand))
	assert.ElementsMatch(t, []string{"title", "start"}, nlp.AsParseError(err).Missing)
}

func TestExecuteDeleteTaskNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.assistant.Execute(context.Background(), "u1", "#9 삭제해줘", time.Date(2024, 3, 10, 9, 0, 0, 0, seoul))
	assert.True(t, errors.Is(err, model.ErrNotFound))
}
