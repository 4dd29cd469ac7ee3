// Package sqlstore provides a SQL implementation of TaskRepository for SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/infra/timeconv"
)

// Dialect identifies the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const schemaTasks = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	household_id TEXT NOT NULL,
	title TEXT NOT NULL,
	assigned_to TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT '',
	details TEXT NOT NULL DEFAULT '',
	repeat_frequency TEXT,
	repeat_interval INTEGER,
	created_at TEXT NOT NULL,
	due_date TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	has_spawned_next BOOLEAN NOT NULL DEFAULT FALSE,
	archived BOOLEAN NOT NULL DEFAULT FALSE
)`

const schemaIndex = `CREATE INDEX IF NOT EXISTS tasks_household_idx ON tasks (household_id, archived)`

const taskColumns = `id, household_id, title, assigned_to, priority, details, repeat_frequency,
	repeat_interval, created_at, due_date, completed, has_spawned_next, archived`

// taskRow is the database representation of a task.
// Fields are ordered to minimize memory padding.
type taskRow struct {
	RepeatFrequency sql.NullString `db:"repeat_frequency"`
	RepeatInterval  sql.NullInt64  `db:"repeat_interval"`
	ID              string         `db:"id"`
	HouseholdID     string         `db:"household_id"`
	Title           string         `db:"title"`
	AssignedTo      string         `db:"assigned_to"`
	Priority        string         `db:"priority"`
	Details         string         `db:"details"`
	CreatedAt       string         `db:"created_at"`
	DueDate         string         `db:"due_date"`
	Completed       bool           `db:"completed"`
	HasSpawnedNext  bool           `db:"has_spawned_next"`
	Archived        bool           `db:"archived"`
}

// Store implements domain.TaskRepository on top of sqlx.
type Store struct {
	db          *sqlx.DB
	loc         *time.Location
	newID       func() string
	dialect     Dialect
	maxAttempts int
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the location dates are converted to when read.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithMaxAttempts sets how many times a conflicting transaction is retried.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// Ensure Store implements the repository and initializer ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// OpenSQLite opens (and creates if needed) a SQLite database file.
func OpenSQLite(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newStore(db, DialectSQLite, opts), nil
}

// OpenPostgres connects to PostgreSQL through the pgx driver.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return newStore(db, DialectPostgres, opts), nil
}

func newStore(db *sqlx.DB, dialect Dialect, opts []Option) *Store {
	s := &Store{
		db:          db,
		dialect:     dialect,
		loc:         time.Local,
		newID:       uuid.NewString,
		maxAttempts: domain.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sqliteDSN builds a file: DSN with a busy timeout and immediate write transactions.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	u.RawQuery = q.Encode()
	return u.String()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the backend the store talks to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Initialize creates the schema if it doesn't exist.
func (s *Store) Initialize() error {
	for _, ddl := range []string{schemaTasks, schemaIndex} {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// IsInitialized checks if the tasks table exists.
func (s *Store) IsInitialized() bool {
	_, err := s.db.Exec("SELECT 1 FROM tasks LIMIT 1")
	return err == nil
}

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, householdID, id string) (*domain.Task, error) {
	q := s.db.Rebind("SELECT " + taskColumns + " FROM tasks WHERE household_id = ? AND id = ? AND archived = ?")
	var row taskRow
	if err := s.db.GetContext(ctx, &row, q, householdID, id, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return row.toDomain(s.loc)
}

// List retrieves all live tasks of a household ordered by creation time.
func (s *Store) List(ctx context.Context, householdID string) ([]*domain.Task, error) {
	return s.list(ctx, householdID, false)
}

// ListHistory retrieves archived tasks of a household.
func (s *Store) ListHistory(ctx context.Context, householdID string) ([]*domain.Task, error) {
	return s.list(ctx, householdID, true)
}

func (s *Store) list(ctx context.Context, householdID string, archived bool) ([]*domain.Task, error) {
	q := s.db.Rebind("SELECT " + taskColumns + " FROM tasks WHERE household_id = ? AND archived = ?")
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, q, householdID, archived); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain(s.loc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

// Create stores a new task under a fresh ID.
func (s *Store) Create(ctx context.Context, householdID string, task *domain.Task) (*domain.Task, error) {
	var created *domain.Task
	err := s.RunInTransaction(ctx, householdID, func(tx domain.TaskTx) error {
		var err error
		created, err = tx.Create(task)
		return err
	})
	return created, err
}

// Update applies a partial update.
func (s *Store) Update(ctx context.Context, householdID, id string, patch domain.TaskPatch) error {
	return s.RunInTransaction(ctx, householdID, func(tx domain.TaskTx) error {
		return tx.Update(id, patch)
	})
}

// Delete removes a task by ID.
func (s *Store) Delete(ctx context.Context, householdID, id string) error {
	q := s.db.Rebind("DELETE FROM tasks WHERE household_id = ? AND id = ? AND archived = ?")
	if _, err := s.db.ExecContext(ctx, q, householdID, id, false); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// RunInTransaction runs fn inside a database transaction, retrying on lock
// contention and serialization failures.
func (s *Store) RunInTransaction(ctx context.Context, householdID string, fn func(tx domain.TaskTx) error) error {
	for attempt := 1; ; attempt++ {
		err := s.runOnce(ctx, householdID, fn)
		if err == nil || !isConflict(err) {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("household %s after %d attempts: %w: %w", householdID, attempt, domain.ErrTransactionConflict, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

func (s *Store) runOnce(ctx context.Context, householdID string, fn func(tx domain.TaskTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&sqlTx{ctx: ctx, tx: tx, store: s, householdID: householdID}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// sqlTx is the TaskTx view of an open database transaction.
type sqlTx struct {
	ctx         context.Context
	tx          *sqlx.Tx
	store       *Store
	householdID string
}

// Get reads a task, locking its row on PostgreSQL.
func (t *sqlTx) Get(id string) (*domain.Task, error) {
	q := "SELECT " + taskColumns + " FROM tasks WHERE household_id = ? AND id = ? AND archived = ?"
	if t.store.dialect == DialectPostgres {
		q += " FOR UPDATE"
	}
	var row taskRow
	if err := t.tx.GetContext(t.ctx, &row, t.tx.Rebind(q), t.householdID, id, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return row.toDomain(t.store.loc)
}

func (t *sqlTx) Create(task *domain.Task) (*domain.Task, error) {
	created := task.Clone()
	created.ID = t.store.newID()
	created.HouseholdID = t.householdID

	const q = `INSERT INTO tasks (` + taskColumns + `) VALUES (:id, :household_id, :title, :assigned_to,
	:priority, :details, :repeat_frequency, :repeat_interval, :created_at, :due_date, :completed,
	:has_spawned_next, :archived)`
	if _, err := t.tx.NamedExecContext(t.ctx, q, fromDomain(created)); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

func (t *sqlTx) Update(id string, patch domain.TaskPatch) error {
	task, err := t.Get(id)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	patch.Apply(task)

	const q = `UPDATE tasks SET title = :title, assigned_to = :assigned_to, priority = :priority,
	details = :details, repeat_frequency = :repeat_frequency, repeat_interval = :repeat_interval,
	due_date = :due_date, completed = :completed, has_spawned_next = :has_spawned_next
	WHERE household_id = :household_id AND id = :id`
	if _, err := t.tx.NamedExecContext(t.ctx, q, fromDomain(task)); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (t *sqlTx) Archive(id string) error {
	q := t.tx.Rebind("UPDATE tasks SET archived = ? WHERE household_id = ? AND id = ? AND archived = ?")
	res, err := t.tx.ExecContext(t.ctx, q, true, t.householdID, id, false)
	if err != nil {
		return fmt.Errorf("archive task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

func fromDomain(t *domain.Task) taskRow {
	row := taskRow{
		ID:             t.ID,
		HouseholdID:    t.HouseholdID,
		Title:          t.Title,
		AssignedTo:     t.AssignedTo,
		Priority:       string(t.Priority),
		Details:        t.Details,
		CreatedAt:      t.CreatedAt.UTC().Format(time.RFC3339Nano),
		DueDate:        t.DueDate.UTC().Format(time.RFC3339Nano),
		Completed:      t.Completed,
		HasSpawnedNext: t.HasSpawnedNext,
	}
	if t.Repeat != nil {
		row.RepeatFrequency = sql.NullString{String: string(t.Repeat.Frequency), Valid: true}
		row.RepeatInterval = sql.NullInt64{Int64: int64(t.Repeat.Interval), Valid: true}
	}
	return row
}

func (r *taskRow) toDomain(loc *time.Location) (*domain.Task, error) {
	created, err := timeconv.ParseString(r.CreatedAt, loc)
	if err != nil {
		return nil, fmt.Errorf("task %s creation time: %w", r.ID, err)
	}
	due, err := timeconv.ParseString(r.DueDate, loc)
	if err != nil {
		return nil, fmt.Errorf("task %s due date: %w", r.ID, err)
	}
	t := &domain.Task{
		ID:             r.ID,
		HouseholdID:    r.HouseholdID,
		Title:          r.Title,
		AssignedTo:     r.AssignedTo,
		Priority:       domain.Priority(r.Priority),
		Details:        r.Details,
		Completed:      r.Completed,
		HasSpawnedNext: r.HasSpawnedNext,
		CreatedAt:      created,
		DueDate:        due,
	}
	if r.RepeatFrequency.Valid {
		t.Repeat = &domain.Repeat{
			Frequency: domain.Frequency(r.RepeatFrequency.String),
			Interval:  int(r.RepeatInterval.Int64),
		}
	}
	return t, nil
}

// sqliteBusy is SQLITE_BUSY; extended codes share the low byte.
const sqliteBusy = 5

// isConflict reports whether err is worth retrying the whole transaction for.
func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()&0xff == sqliteBusy
	}
	return false
}
