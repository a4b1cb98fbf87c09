// Package postgres implements store.Store over the pgx stdlib driver.
// Schema migrations are applied out of band (compose/init scripts), so
// Open only verifies connectivity.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/store"
)

// Open opens a PostgreSQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres-backed store over database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users   { return &users{db: s.db} }
func (s *pgStore) Events() store.Events { return &events{db: s.db} }
func (s *pgStore) Tasks() store.Tasks   { return &tasks{db: s.db} }

func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---

type users struct{ db *sql.DB }

const userColumns = `user_id, username, email, password_hash, display_name, time_zone, is_active, creation_time, update_time`

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, username, email, password_hash, display_name, time_zone, is_active, creation_time, update_time)
        VALUES ($1,$2,$3,$4,$5,$6,TRUE,now(),now())
        RETURNING creation_time, update_time
    `, m.UserID, m.Username, m.Email, m.PasswordHash, m.DisplayName, m.TimeZone)
	out := *m
	out.IsActive = true
	if err := row.Scan(&out.CreationTime, &out.UpdateTime); err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID))
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var m model.User
	err := row.Scan(&m.UserID, &m.Username, &m.Email, &m.PasswordHash, &m.DisplayName, &m.TimeZone, &m.IsActive, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Events ---

type events struct{ db *sql.DB }

const eventColumns = `event_id, user_id, title, description, location, start_time, end_time, all_day, participants, color, recurring_rule, reminder_minutes, creation_time, update_time`

func (e *events) Create(ctx context.Context, m *model.Event) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO events (user_id, title, description, location, start_time, end_time, all_day, participants, color, recurring_rule, reminder_minutes, creation_time, update_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
        RETURNING event_id, creation_time, update_time
    `, m.UserID, m.Title, m.Description, m.Location, m.StartTime.UTC(), m.EndTime.UTC(), m.AllDay, marshalParticipants(m.Participants), m.Color, m.RecurringRule, m.ReminderMinutes)
	out := *m
	if err := row.Scan(&out.EventID, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *events) GetByID(ctx context.Context, userID string, eventID int64) (*model.Event, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = $1 AND event_id = $2`, userID, eventID)
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
	rows, err := e.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = $1 AND lower(title) = lower($2) ORDER BY start_time DESC`, userID, title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (e *events) List(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1`
	args := []interface{}{req.UserID}
	if req.From != nil {
		args = append(args, req.From.UTC())
		q += fmt.Sprintf(` AND start_time >= $%d`, len(args))
	}
	if req.To != nil {
		args = append(args, req.To.UTC())
		q += fmt.Sprintf(` AND start_time < $%d`, len(args))
	}
	q += ` ORDER BY start_time ASC`
	if req.Limit > 0 {
		args = append(args, req.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (e *events) Update(ctx context.Context, m *model.Event) (*model.Event, error) {
	res, err := e.db.ExecContext(ctx, `
        UPDATE events SET title=$1, description=$2, location=$3, start_time=$4, end_time=$5, all_day=$6, participants=$7, color=$8, recurring_rule=$9, reminder_minutes=$10, update_time=now()
        WHERE user_id=$11 AND event_id=$12
    `, m.Title, m.Description, m.Location, m.StartTime.UTC(), m.EndTime.UTC(), m.AllDay, marshalParticipants(m.Participants), m.Color, m.RecurringRule, m.ReminderMinutes, m.UserID, m.EventID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return e.GetByID(ctx, m.UserID, m.EventID)
}

func (e *events) Delete(ctx context.Context, userID string, eventID int64) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var out []*model.Event
	for rows.Next() {
		var m model.Event
		var participants sql.NullString
		if err := rows.Scan(&m.EventID, &m.UserID, &m.Title, &m.Description, &m.Location, &m.StartTime, &m.EndTime, &m.AllDay, &participants, &m.Color, &m.RecurringRule, &m.ReminderMinutes, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
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
	if m.Priority == "" {
		m.Priority = model.PriorityMedium
	}
	if m.Status == "" {
		m.Status = model.StatusTodo
	}
	row := t.db.QueryRowContext(ctx, `
        INSERT INTO tasks (user_id, title, description, due_date, due_all_day, priority, status, completed_at, creation_time, update_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),now())
        RETURNING task_id, creation_time, update_time
    `, m.UserID, m.Title, m.Description, utcOrNil(m.DueDate), m.DueAllDay, string(m.Priority), string(m.Status), utcOrNil(m.CompletedAt))
	out := *m
	if err := row.Scan(&out.TaskID, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *tasks) GetByID(ctx context.Context, userID string, taskID int64) (*model.Task, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND task_id = $2`, userID, taskID)
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
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []interface{}{req.UserID}
	if req.Status != nil {
		args = append(args, string(*req.Status))
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if req.Priority != nil {
		args = append(args, string(*req.Priority))
		q += fmt.Sprintf(` AND priority = $%d`, len(args))
	}
	if req.DueBy != nil {
		args = append(args, req.DueBy.UTC())
		q += fmt.Sprintf(` AND due_date IS NOT NULL AND due_date <= $%d`, len(args))
	}
	q += ` ORDER BY task_id ASC`
	if req.Limit > 0 {
		args = append(args, req.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (t *tasks) Update(ctx context.Context, m *model.Task) (*model.Task, error) {
	res, err := t.db.ExecContext(ctx, `
        UPDATE tasks SET title=$1, description=$2, due_date=$3, due_all_day=$4, priority=$5, status=$6, completed_at=$7, update_time=now()
        WHERE user_id=$8 AND task_id=$9
    `, m.Title, m.Description, utcOrNil(m.DueDate), m.DueAllDay, string(m.Priority), string(m.Status), utcOrNil(m.CompletedAt), m.UserID, m.TaskID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return t.GetByID(ctx, m.UserID, m.TaskID)
}

func (t *tasks) SetStatus(ctx context.Context, userID string, taskID int64, status model.TaskStatus) (*model.Task, error) {
	var completed interface{}
	if status == model.StatusDone {
		completed = time.Now().UTC()
	}
	res, err := t.db.ExecContext(ctx, `UPDATE tasks SET status=$1, completed_at=$2, update_time=now() WHERE user_id=$3 AND task_id=$4`,
		string(status), completed, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return t.GetByID(ctx, userID, taskID)
}

func (t *tasks) Delete(ctx context.Context, userID string, taskID int64) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND task_id = $2`, userID, taskID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanTasks(rows *sql.Rows) ([]*model.Task, error) {
	var out []*model.Task
	for rows.Next() {
		var m model.Task
		var due, completed sql.NullTime
		if err := rows.Scan(&m.TaskID, &m.UserID, &m.Title, &m.Description, &due, &m.DueAllDay, &m.Priority, &m.Status, &completed, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
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
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
