// Package jsonstore provides a JSON file-based implementation of TaskRepository.
//
// All households live in one file. Every write, transactions included, runs under
// an exclusive flock on a sidecar lock file and replaces the data file atomically,
// so a transaction can never be observed half-applied.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/infra/timeconv"
)

const formatVersion = 1

// storeData represents the JSON file structure.
type storeData struct {
	Households map[string]*householdData `json:"households"`
	Meta       meta                      `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	Version int `json:"version"`
}

// householdData holds one household's live tasks and history, keyed by task ID.
type householdData struct {
	Tasks   map[string]*taskRecord `json:"tasks"`
	History map[string]*taskRecord `json:"history,omitempty"`
}

// taskRecord is the JSON representation of a task (without ID, which is the map key).
// Dates are decoded loosely so files written by other tools load as well.
// Fields are ordered to minimize memory padding.
type taskRecord struct {
	CreatedAt      any             `json:"createdAt"`
	DueDate        any             `json:"dueDate"`
	Repeat         *domain.Repeat  `json:"repeat,omitempty"`
	Title          string          `json:"title"`
	AssignedTo     string          `json:"assignedTo,omitempty"`
	Priority       domain.Priority `json:"priority,omitempty"`
	Details        string          `json:"details,omitempty"`
	Completed      bool            `json:"completed"`
	HasSpawnedNext bool            `json:"hasSpawnedNext,omitempty"`
}

// Store implements domain.TaskRepository using a JSON file.
type Store struct {
	loc      *time.Location
	newID    func() string
	path     string
	lockPath string
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the location dates are converted to when read.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// New creates a new Store for the given file path.
// The file must be created with Initialize before use.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		lockPath: path + ".lock",
		loc:      time.Local,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Store implements the repository and initializer ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, householdID, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(ctx, func(data *storeData) error {
		h := data.Households[householdID]
		if h == nil {
			return nil
		}
		rec, ok := h.Tasks[id]
		if !ok {
			return nil
		}
		t, err := rec.toDomain(householdID, id, s.loc)
		task = t
		return err
	})
	return task, err
}

// List retrieves all live tasks of a household ordered by creation time.
func (s *Store) List(ctx context.Context, householdID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(ctx, func(data *storeData) error {
		h := data.Households[householdID]
		if h == nil {
			return nil
		}
		var err error
		tasks, err = s.decodeAll(householdID, h.Tasks)
		return err
	})
	return tasks, err
}

// ListHistory retrieves archived tasks of a household.
func (s *Store) ListHistory(ctx context.Context, householdID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(ctx, func(data *storeData) error {
		h := data.Households[householdID]
		if h == nil {
			return nil
		}
		var err error
		tasks, err = s.decodeAll(householdID, h.History)
		return err
	})
	return tasks, err
}

// Create stores a new task under a fresh ID.
func (s *Store) Create(ctx context.Context, householdID string, task *domain.Task) (*domain.Task, error) {
	var created *domain.Task
	err := s.withLockWrite(ctx, func(data *storeData) (bool, error) {
		var err error
		created, err = s.txFor(data, householdID).Create(task)
		return true, err
	})
	return created, err
}

// Update applies a partial update.
func (s *Store) Update(ctx context.Context, householdID, id string, patch domain.TaskPatch) error {
	return s.withLockWrite(ctx, func(data *storeData) (bool, error) {
		return true, s.txFor(data, householdID).Update(id, patch)
	})
}

// Delete removes a task by ID.
func (s *Store) Delete(ctx context.Context, householdID, id string) error {
	return s.withLockWrite(ctx, func(data *storeData) (bool, error) {
		h := data.Households[householdID]
		if h == nil || h.Tasks[id] == nil {
			return false, nil
		}
		delete(h.Tasks, id)
		return true, nil
	})
}

// RunInTransaction runs fn while holding the exclusive lock.
// The file is rewritten only if fn returns nil and wrote something.
func (s *Store) RunInTransaction(ctx context.Context, householdID string, fn func(tx domain.TaskTx) error) error {
	return s.withLockWrite(ctx, func(data *storeData) (bool, error) {
		tx := s.txFor(data, householdID)
		if err := fn(tx); err != nil {
			return false, err
		}
		return tx.dirty, nil
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	return s.write(&storeData{
		Households: make(map[string]*householdData),
		Meta:       meta{Version: formatVersion},
	})
}

func (s *Store) decodeAll(householdID string, records map[string]*taskRecord) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(records))
	for id, rec := range records {
		t, err := rec.toDomain(householdID, id, s.loc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return tasks, nil
}

// txFor returns a transaction view over one household of data.
func (s *Store) txFor(data *storeData, householdID string) *fileTx {
	return &fileTx{store: s, data: data, householdID: householdID}
}

// fileTx mutates the in-memory data; the caller persists it when dirty.
type fileTx struct {
	store       *Store
	data        *storeData
	householdID string
	dirty       bool
}

func (tx *fileTx) household(create bool) *householdData {
	h := tx.data.Households[tx.householdID]
	if h == nil && create {
		h = &householdData{Tasks: make(map[string]*taskRecord)}
		tx.data.Households[tx.householdID] = h
	}
	return h
}

func (tx *fileTx) Get(id string) (*domain.Task, error) {
	h := tx.household(false)
	if h == nil {
		return nil, nil
	}
	rec, ok := h.Tasks[id]
	if !ok {
		return nil, nil
	}
	return rec.toDomain(tx.householdID, id, tx.store.loc)
}

func (tx *fileTx) Create(task *domain.Task) (*domain.Task, error) {
	created := task.Clone()
	created.ID = tx.store.newID()
	created.HouseholdID = tx.householdID
	tx.household(true).Tasks[created.ID] = fromDomain(created)
	tx.dirty = true
	return created, nil
}

func (tx *fileTx) Update(id string, patch domain.TaskPatch) error {
	task, err := tx.Get(id)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	patch.Apply(task)
	tx.household(true).Tasks[id] = fromDomain(task)
	tx.dirty = true
	return nil
}

func (tx *fileTx) Archive(id string) error {
	h := tx.household(false)
	if h == nil || h.Tasks[id] == nil {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	if h.History == nil {
		h.History = make(map[string]*taskRecord)
	}
	h.History[id] = h.Tasks[id]
	delete(h.Tasks, id)
	tx.dirty = true
	return nil
}

func fromDomain(t *domain.Task) *taskRecord {
	rec := &taskRecord{
		CreatedAt:      t.CreatedAt.Format(time.RFC3339Nano),
		DueDate:        t.DueDate.Format(time.RFC3339Nano),
		Title:          t.Title,
		AssignedTo:     t.AssignedTo,
		Priority:       t.Priority,
		Details:        t.Details,
		Completed:      t.Completed,
		HasSpawnedNext: t.HasSpawnedNext,
	}
	if t.Repeat != nil {
		r := *t.Repeat
		rec.Repeat = &r
	}
	return rec
}

func (r *taskRecord) toDomain(householdID, id string, loc *time.Location) (*domain.Task, error) {
	due, err := timeconv.Normalize(r.DueDate, loc)
	if err != nil {
		return nil, fmt.Errorf("task %s due date: %w", id, err)
	}
	var created time.Time
	if r.CreatedAt != nil {
		if created, err = timeconv.Normalize(r.CreatedAt, loc); err != nil {
			return nil, fmt.Errorf("task %s creation time: %w", id, err)
		}
	}
	t := &domain.Task{
		ID:             id,
		HouseholdID:    householdID,
		Title:          r.Title,
		AssignedTo:     r.AssignedTo,
		Priority:       r.Priority,
		Details:        r.Details,
		Completed:      r.Completed,
		HasSpawnedNext: r.HasSpawnedNext,
		CreatedAt:      created,
		DueDate:        due,
	}
	if r.Repeat != nil {
		rep := *r.Repeat
		t.Repeat = &rep
	}
	return t, nil
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(ctx context.Context, fn func(*storeData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result
// when fn reports a change.
func (s *Store) withLockWrite(ctx context.Context, fn func(*storeData) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	changed, err := fn(data)
	if err != nil || !changed {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	// Ensure maps are initialized
	if data.Households == nil {
		data.Households = make(map[string]*householdData)
	}
	for _, h := range data.Households {
		if h.Tasks == nil {
			h.Tasks = make(map[string]*taskRecord)
		}
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	data.Meta.Version = formatVersion
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
