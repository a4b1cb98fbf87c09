package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruplan/haruplan/internal/config"
	"github.com/haruplan/haruplan/internal/store/sqlite"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	router, err := NewRouter(config.NewForTesting(), st, zerolog.Nop())
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func registerAndLogin(t *testing.T, router *mux.Router) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/auth/register", "", map[string]string{
		"username": "mina",
		"email":    "mina@example.test",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"username": "mina",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	decode(t, rec, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/health/db", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, "GET", "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Username string `json:"username"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "mina", me.Username)

	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"username": "mina", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "GET", "/api/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, router, "GET", "/api/events", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventCRUD(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, "POST", "/api/events", token, map[string]interface{}{
		"title":     "주간 회의",
		"startTime": "2025-06-02T15:00:00+09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ev struct {
		EventID int64  `json:"eventId"`
		Title   string `json:"title"`
	}
	decode(t, rec, &ev)
	require.NotZero(t, ev.EventID)

	rec = doJSON(t, router, "GET", "/api/events/1", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/events?from=2025-06-02T00:00:00%2B09:00&to=2025-06-03T00:00:00%2B09:00", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = doJSON(t, router, "PUT", "/api/events/1", token, map[string]interface{}{
		"title":     "전체 회의",
		"startTime": "2025-06-02T16:00:00+09:00",
		"endTime":   "2025-06-02T17:00:00+09:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &ev)
	assert.Equal(t, "전체 회의", ev.Title)

	rec = doJSON(t, router, "DELETE", "/api/events/1", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, "GET", "/api/events/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventValidation(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, "POST", "/api/events", token, map[string]interface{}{
		"startTime": "2025-06-02T15:00:00+09:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, "GET", "/api/events?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskCRUDAndStatus(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, "POST", "/api/tasks", token, map[string]interface{}{
		"title":   "보고서 제출",
		"dueDate": "2025-06-06T00:00:00+09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tk struct {
		TaskID int64  `json:"taskId"`
		Status string `json:"status"`
	}
	decode(t, rec, &tk)
	assert.Equal(t, "todo", tk.Status)

	rec = doJSON(t, router, "PATCH", "/api/tasks/1/status", token, map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var done struct {
		Status      string  `json:"status"`
		CompletedAt *string `json:"completedAt"`
	}
	decode(t, rec, &done)
	assert.Equal(t, "done", done.Status)
	assert.NotNil(t, done.CompletedAt)

	rec = doJSON(t, router, "PATCH", "/api/tasks/1/status", token, map[string]string{"status": "finished"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, "GET", "/api/tasks?status=done", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = doJSON(t, router, "DELETE", "/api/tasks/1", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, "GET", "/api/tasks/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssistantCommand(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, "POST", "/api/assistant/command", token, map[string]string{
		"text":          "내일 오후 2시에 회의 일정 추가해줘",
		"referenceTime": "2025-06-01T09:00:00+09:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Intent  string `json:"intent"`
		Message string `json:"message"`
		Event   *struct {
			Title     string `json:"title"`
			StartTime string `json:"startTime"`
		} `json:"event"`
	}
	decode(t, rec, &res)
	assert.Equal(t, "create_event", res.Intent)
	require.NotNil(t, res.Event)
	assert.Equal(t, "회의", res.Event.Title)
	assert.True(t, strings.HasPrefix(res.Event.StartTime, "2025-06-02T14:00:00"))

	rec = doJSON(t, router, "POST", "/api/assistant/command", token, map[string]string{
		"text":          "내일 일정 보여줘",
		"referenceTime": "2025-06-01T09:00:00+09:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listRes struct {
		Intent string            `json:"intent"`
		Events []json.RawMessage `json:"events"`
	}
	decode(t, rec, &listRes)
	assert.Equal(t, "list_events", listRes.Intent)
	assert.Len(t, listRes.Events, 1)
}

func TestAssistantCommandFailures(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, "POST", "/api/assistant/command", token, map[string]string{
		"text": "일정 추가해줘",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var fail struct {
		FailureCode string   `json:"failureCode"`
		Missing     []string `json:"missing"`
	}
	decode(t, rec, &fail)
	assert.Equal(t, "partial_command", fail.FailureCode)
	assert.ElementsMatch(t, []string{"title", "start"}, fail.Missing)

	rec = doJSON(t, router, "POST", "/api/assistant/command", token, map[string]string{
		"text": "asdkjasd",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	decode(t, rec, &fail)
	assert.Equal(t, "unknown_intent", fail.FailureCode)

	rec = doJSON(t, router, "POST", "/api/assistant/command", token, map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarFeed(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, "POST", "/api/events", token, map[string]interface{}{
		"title":     "주간 회의",
		"startTime": "2025-06-02T15:00:00+09:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "GET", "/api/events/feed.ics", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "주간 회의")
}
