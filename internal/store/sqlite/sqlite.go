// Package sqlite implements store.Store on modernc.org/sqlite for local
// single-node deployments. The schema is embedded and applied on open.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	_ "embed"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Open opens (or creates) a SQLite database at path and enables WAL
// journal mode for read-heavy workloads. Pass ":memory:" for tests.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		// Ensure the parent directory exists to avoid SQLITE_CANTOPEN.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the database at path, applies the embedded schema and
// returns the store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires the store over an existing connection (used by tests).
func NewWithDB(db *sql.DB) (store.Store, error) {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			if _, err := db.Exec(s); err != nil {
				return nil, fmt.Errorf("apply schema: %w", err)
			}
		}
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users   { return &users{db: s.db} }
func (s *sqliteStore) Events() store.Events { return &events{db: s.db} }
func (s *sqliteStore) Tasks() store.Tasks   { return &tasks{db: s.db} }

func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `INSERT INTO users (user_id, username, email, password_hash, display_name, time_zone, is_active, creation_time, update_time) VALUES (?,?,?,?,?,?,?,?,?)`,
		m.UserID, m.Username, m.Email, m.PasswordHash, m.DisplayName, m.TimeZone, boolInt(true), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	out := *m
	out.IsActive = true
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx, userQuery+` WHERE user_id = ?`, userID))
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx, userQuery+` WHERE username = ?`, username))
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx, userQuery+` WHERE email = ?`, email))
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const userQuery = `SELECT user_id, username, email, password_hash, display_name, time_zone, is_active, creation_time, update_time FROM users`

func scanUser(row *sql.Row) (*model.User, error) {
	var m model.User
	var active int
	err := row.Scan(&m.UserID, &m.Username, &m.Email, &m.PasswordHash, &m.DisplayName, &m.TimeZone, &active, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.IsActive = active != 0
	return &m, nil
}

// --- Events ---

type events struct{ db *sql.DB }

const eventColumns = `event_id, user_id, title, description, location, start_time, end_time, all_day, participants, color, recurring_rule, reminder_minutes, creation_time, update_time`

func (e *events) Create(ctx context.Context, m *model.Event) (*model.Event, error) {
	now := time.Now().UTC()
	res, err := e.db.ExecContext(ctx, `INSERT INTO events (user_id, title, description, location, start_time, end_time, all_day, participants, color, recurring_rule, reminder_minutes, creation_time, update_time) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.UserID, m.Title, m.Description, m.Location, m.StartTime.UTC(), m.EndTime.UTC(), boolInt(m.AllDay), marshalParticipants(m.Participants), m.Color, m.RecurringRule, m.ReminderMinutes, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *m
	out.EventID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (e *events) GetByID(ctx context.Context, userID string, eventID int64) (*model.Event, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = ? AND event_id = ?`, userID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, model.ErrNotFound
	}
	return list[0], nil
}

func (e *events) FindByTitle(ctx context.Context, userID, title string) ([]*model.Event, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = ? AND lower(title) = lower(?) ORDER BY start_time DESC`, userID, title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (e *events) List(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE user_id = ?`
	args := []interface{}{req.UserID}
	if req.From != nil {
		q += ` AND start_time >= ?`
		args = append(args, req.From.UTC())
	}
	if req.To != nil {
		q += ` AND start_time < ?`
		args = append(args, req.To.UTC())
	}
	q += ` ORDER BY start_time ASC`
	if req.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, req.Limit)
	}
	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (e *events) Update(ctx context.Context, m *model.Event) (*model.Event, error) {
	now := time.Now().UTC()
	res, err := e.db.ExecContext(ctx, `UPDATE events SET title = ?, description = ?, location = ?, start_time = ?, end_time = ?, all_day = ?, participants = ?, color = ?, recurring_rule = ?, reminder_minutes = ?, update_time = ? WHERE user_id = ? AND event_id = ?`,
		m.Title, m.Description, m.Location, m.StartTime.UTC(), m.EndTime.UTC(), boolInt(m.AllDay), marshalParticipants(m.Participants), m.Color, m.RecurringRule, m.ReminderMinutes, now, m.UserID, m.EventID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return e.GetByID(ctx, m.UserID, m.EventID)
}

func (e *events) Delete(ctx context.Context, userID string, eventID int64) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE user_id = ? AND event_id = ?`, userID, eventID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var out []*model.Event
	for rows.Next() {
		var m model.Event
		var allDay int
		var participants sql.NullString
		if err := rows.Scan(&m.EventID, &m.UserID, &m.Title, &m.Description, &m.Location, &m.StartTime, &m.EndTime, &allDay, &participants, &m.Color, &m.RecurringRule, &m.ReminderMinutes, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
		m.AllDay = allDay != 0
		if participants.Valid && participants.String != "" {
			_ = json.Unmarshal([]byte(participants.String), &m.Participants)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Tasks ---

type tasks struct{ db *sql.DB }

const taskColumns = `task_id, user_id, title, description, due_date, due_all_day, priority, status, completed_at, creation_time, update_time`

func (t *tasks) Create(ctx context.Context, m *model.Task) (*model.Task, error) {
	now := time.Now().UTC()
	if m.Priority == "" {
		m.Priority = model.PriorityMedium
	}
	if m.Status == "" {
		m.Status = model.StatusTodo
	}
	res, err := t.db.ExecContext(ctx, `INSERT INTO tasks (user_id, title, description, due_date, due_all_day, priority, status, completed_at, creation_time, update_time) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		m.UserID, m.Title, m.Description, utcOrNil(m.DueDate), boolInt(m.DueAllDay), string(m.Priority), string(m.Status), utcOrNil(m.CompletedAt), now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *m
	out.TaskID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (t *tasks) GetByID(ctx context.Context, userID string, taskID int64) (*model.Task, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND task_id = ?`, userID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, model.ErrNotFound
	}
	return list[0], nil
}

func (t *tasks) List(ctx context.Context, req model.ListTasksRequest) ([]*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []interface{}{req.UserID}
	if req.Status != nil {
		q += ` AND status = ?`
		args = append(args, string(*req.Status))
	}
	if req.Priority != nil {
		q += ` AND priority = ?`
		args = append(args, string(*req.Priority))
	}
	if req.DueBy != nil {
		q += ` AND due_date IS NOT NULL AND due_date <= ?`
		args = append(args, req.DueBy.UTC())
	}
	q += ` ORDER BY task_id ASC`
	if req.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, req.Limit)
	}
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (t *tasks) Update(ctx context.Context, m *model.Task) (*model.Task, error) {
	now := time.Now().UTC()
	res, err := t.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, due_date = ?, due_all_day = ?, priority = ?, status = ?, completed_at = ?, update_time = ? WHERE user_id = ? AND task_id = ?`,
		m.Title, m.Description, utcOrNil(m.DueDate), boolInt(m.DueAllDay), string(m.Priority), string(m.Status), utcOrNil(m.CompletedAt), now, m.UserID, m.TaskID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return t.GetByID(ctx, m.UserID, m.TaskID)
}

func (t *tasks) SetStatus(ctx context.Context, userID string, taskID int64, status model.TaskStatus) (*model.Task, error) {
	now := time.Now().UTC()
	var completed interface{}
	if status == model.StatusDone {
		completed = now
	}
	res, err := t.db.ExecContext(ctx, `UPDATE tasks SET status = ?, completed_at = ?, update_time = ? WHERE user_id = ? AND task_id = ?`,
		string(status), completed, now, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return t.GetByID(ctx, userID, taskID)
}

func (t *tasks) Delete(ctx context.Context, userID string, taskID int64) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND task_id = ?`, userID, taskID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanTasks(rows *sql.Rows) ([]*model.Task, error) {
	var out []*model.Task
	for rows.Next() {
		var m model.Task
		var allDay int
		var due, completed sql.NullTime
		if err := rows.Scan(&m.TaskID, &m.UserID, &m.Title, &m.Description, &due, &allDay, &m.Priority, &m.Status, &completed, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
		m.DueAllDay = allDay != 0
		if due.Valid {
			d := due.Time
			m.DueDate = &d
		}
		if completed.Valid {
			c := completed.Time
			m.CompletedAt = &c
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- helpers ---

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func utcOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func marshalParticipants(p []string) interface{} {
	if len(p) == 0 {
		return nil
	}
	b, _ := json.Marshal(p)
	return string(b)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
