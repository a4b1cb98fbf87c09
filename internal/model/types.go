package model

import "time"

// User represents an account in the system.
type User struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  *string   `json:"displayName,omitempty"`
	TimeZone     string    `json:"timeZone"`
	IsActive     bool      `json:"isActive"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusArchived   TaskStatus = "archived"
)

// ValidPriority reports whether p is a known priority level.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Event is a scheduled calendar entry. Events carry numeric ids so
// spoken references stay short.
type Event struct {
	EventID         int64     `json:"eventId"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Location        *string   `json:"location,omitempty"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	AllDay          bool      `json:"allDay"`
	Participants    []string  `json:"participants,omitempty"`
	Color           *string   `json:"color,omitempty"`
	RecurringRule   *string   `json:"recurringRule,omitempty"`
	ReminderMinutes *int      `json:"reminderMinutes,omitempty"`
	CreationTime    time.Time `json:"creationTime"`
	UpdateTime      time.Time `json:"updateTime"`
}

// Task is a to-do item with an optional due date. DueAllDay marks a
// date-only deadline, distinct from one due at midnight.
type Task struct {
	TaskID       int64        `json:"taskId"`
	UserID       string       `json:"userId"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	DueAllDay    bool         `json:"dueAllDay"`
	Priority     TaskPriority `json:"priority"`
	Status       TaskStatus   `json:"status"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	CreationTime time.Time    `json:"creationTime"`
	UpdateTime   time.Time    `json:"updateTime"`
}

// ListEventsRequest captures filters used when listing events.
type ListEventsRequest struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// ListTasksRequest captures filters used when listing tasks.
type ListTasksRequest struct {
	UserID   string
	Status   *TaskStatus
	Priority *TaskPriority
	DueBy    *time.Time
	Limit    int
}
