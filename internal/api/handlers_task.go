package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/haruplan/haruplan/internal/api/respond"
	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/services"
)

// TaskHandler is a thin HTTP transport over the TaskService.
type TaskHandler struct {
	svc *services.TaskService
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler { return &TaskHandler{svc: svc} }

// CreateTask POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var tk model.Task
	if err := json.NewDecoder(r.Body).Decode(&tk); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	tk.UserID = UserID(r)
	out, err := h.svc.CreateTask(r.Context(), &tk)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListTasks GET /api/tasks?status=&priority=&dueBy=&limit=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	req := model.ListTasksRequest{UserID: UserID(r)}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.TaskStatus(raw)
		if !model.ValidStatus(status) {
			respond.WriteBadRequest(w, "unknown status "+raw)
			return
		}
		req.Status = &status
	}
	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority := model.TaskPriority(raw)
		if !model.ValidPriority(priority) {
			respond.WriteBadRequest(w, "unknown priority "+raw)
			return
		}
		req.Priority = &priority
	}
	var err error
	if req.DueBy, err = queryTime(r, "dueBy"); err != nil {
		respond.WriteBadRequest(w, "dueBy must be RFC3339")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			respond.WriteBadRequest(w, "limit must be an integer")
			return
		}
	}
	tasks, err := h.svc.ListTasks(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "count": len(tasks)})
}

// GetTask GET /api/tasks/{taskId}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "taskId")
	if !ok {
		respond.WriteBadRequest(w, "invalid task id")
		return
	}
	tk, err := h.svc.GetTask(r.Context(), UserID(r), id)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, tk)
}

// UpdateTask PUT /api/tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "taskId")
	if !ok {
		respond.WriteBadRequest(w, "invalid task id")
		return
	}
	var tk model.Task
	if err := json.NewDecoder(r.Body).Decode(&tk); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	tk.UserID = UserID(r)
	tk.TaskID = id
	out, err := h.svc.UpdateTask(r.Context(), &tk)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// SetTaskStatus PATCH /api/tasks/{taskId}/status
func (h *TaskHandler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "taskId")
	if !ok {
		respond.WriteBadRequest(w, "invalid task id")
		return
	}
	var req struct {
		Status model.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.SetTaskStatus(r.Context(), UserID(r), id, req.Status)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteTask DELETE /api/tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "taskId")
	if !ok {
		respond.WriteBadRequest(w, "invalid task id")
		return
	}
	if err := h.svc.DeleteTask(r.Context(), UserID(r), id); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
