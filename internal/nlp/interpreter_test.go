package nlp

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	return NewInterpreter(NewKoreanTagger(), InterpreterConfig{
		WeekStart: time.Monday,
	})
}

func TestInterpretCreateEventScenario(t *testing.T) {
	in := newTestInterpreter(t)
	// Sunday 2024-03-10 09:00.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	req, err := in.Interpret("내일 오후 2시에 회의 일정 추가해줘", now)
	require.NoError(t, err)
	assert.Equal(t, IntentCreateEvent, req.Intent)
	assert.Equal(t, "회의", req.Title)
	require.NotNil(t, req.When)
	assert.Equal(t, time.Date(2024, 3, 11, 14, 0, 0, 0, seoul), req.When.At())
	assert.Empty(t, req.Unresolved)
}

func TestInterpretCreateTaskScenario(t *testing.T) {
	in := newTestInterpreter(t)
	// Monday 2024-03-11.
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, seoul)

	req, err := in.Interpret("금요일까지 보고서 제출 작업 추가해줘", now)
	require.NoError(t, err)
	assert.Equal(t, IntentCreateTask, req.Intent)
	assert.Equal(t, "보고서 제출", req.Title)
	require.NotNil(t, req.When)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, seoul), req.When.Date)
	assert.False(t, req.When.HasTime, "due date is all-day")
	assert.Empty(t, req.Unresolved)
}

func TestInterpretUpdateTaskStatusScenario(t *testing.T) {
	in := newTestInterpreter(t)

	req, err := in.Interpret("작업 #5 완료로 표시해줘", time.Date(2024, 3, 10, 9, 0, 0, 0, seoul))
	require.NoError(t, err)
	assert.Equal(t, IntentUpdateTaskStatus, req.Intent)
	assert.Equal(t, int64(5), req.TaskRef)
	assert.Equal(t, "done", req.Status)
	assert.Empty(t, req.Unresolved)
}

func TestInterpretUnknownPreservesText(t *testing.T) {
	in := newTestInterpreter(t)

	_, err := in.Interpret("asdkjasd", time.Date(2024, 3, 10, 9, 0, 0, 0, seoul))
	require.Error(t, err)
	require.True(t, IsFailure(err, FailUnknownIntent))
	assert.Equal(t, "asdkjasd", AsParseError(err).Text)
}

func TestInterpretAmbiguousListsCandidates(t *testing.T) {
	in := newTestInterpreter(t)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	_, err := in.Interpret("이번 주 월요일 그리고 다음 주 화요일에 회의 추가해줘", now)
	require.Error(t, err)
	require.True(t, IsFailure(err, FailAmbiguous))
	assert.Len(t, AsParseError(err).Candidates, 2)
}

func TestInterpretParticipants(t *testing.T) {
	in := newTestInterpreter(t)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	req, err := in.Interpret("내일 오후 2시에 존과 회의 일정 추가해줘", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"존"}, req.Participants)
	assert.Equal(t, "회의", req.Title)
}

func TestInterpretPartialCommandReportsMissing(t *testing.T) {
	in := newTestInterpreter(t)

	// Creation cue with no title span and no date.
	req, err := in.Interpret("일정 추가해줘", time.Date(2024, 3, 10, 9, 0, 0, 0, seoul))
	require.NoError(t, err)
	assert.Equal(t, IntentCreateEvent, req.Intent)
	assert.ElementsMatch(t, []string{"title", "start"}, req.Unresolved)
}

func TestInterpretInputTooLong(t *testing.T) {
	in := NewInterpreter(NewKoreanTagger(), InterpreterConfig{MaxInputLen: 10})

	_, err := in.Interpret(strings.Repeat("가", 11), time.Now())
	require.True(t, IsFailure(err, FailInputTooLong))
}

func TestInterpretModelUnavailableSurfaces(t *testing.T) {
	broken := TaggerFunc(func([]string) ([]Pos, error) { return nil, errors.New("boom") })
	in := NewInterpreter(broken, InterpreterConfig{})

	_, err := in.Interpret("내일 회의 추가해줘", time.Now())
	require.True(t, IsFailure(err, FailModelUnavailable))
}

// For all (text, reference-now, locale): repeated invocations yield an
// identical CommandRequest or an identical failure.
func TestInterpretDeterminism(t *testing.T) {
	in := newTestInterpreter(t)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)
	inputs := []string{
		"내일 오후 2시에 회의 일정 추가해줘",
		"금요일까지 보고서 제출 작업 추가해줘",
		"작업 #5 완료로 표시해줘",
		"asdkjasd",
	}
	for _, text := range inputs {
		a, errA := in.Interpret(text, now)
		b, errB := in.Interpret(text, now)
		assert.Equal(t, a, b, text)
		if errA != nil || errB != nil {
			require.Error(t, errA)
			require.Error(t, errB)
			assert.Equal(t, errA.Error(), errB.Error(), text)
		}
	}
}
