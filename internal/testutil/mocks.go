// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/chores/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTaskRepository is a test double for domain.TaskRepository.
// Transactions are serialized and run against a copy that is swapped in on success.
// Fields are ordered to minimize memory padding.
type MockTaskRepository struct {
	Tasks   map[string]*domain.Task // Live tasks keyed by ID
	History map[string]*domain.Task // Archived tasks keyed by ID

	// BeforeTx runs before a transaction acquires the lock.
	BeforeTx func()

	GetErr      error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	TxErr       error // Returned by RunInTransaction without running fn
	TxCreateErr error // Returned by TaskTx.Create
	TxUpdateErr error // Returned by TaskTx.Update

	// FailUpdateFor makes Update and TaskTx.Update fail for the listed task IDs.
	FailUpdateFor map[string]error

	NextIDN  int
	TxCalls  int
	TxCommit int

	mu sync.Mutex
}

// NewMockTaskRepository creates a new MockTaskRepository with initialized maps.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		Tasks:         make(map[string]*domain.Task),
		History:       make(map[string]*domain.Task),
		FailUpdateFor: make(map[string]error),
		NextIDN:       1,
	}
}

// Add stores a task directly, assigning an ID when it has none. It returns the stored task.
func (m *MockTaskRepository) Add(task *domain.Task) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == "" {
		task.ID = m.mintID()
	}
	m.Tasks[task.ID] = task
	return task
}

// Snapshot returns copies of all live tasks of a household.
func (m *MockTaskRepository) Snapshot(householdID string) []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return collect(m.Tasks, householdID)
}

// Get retrieves a task by ID.
func (m *MockTaskRepository) Get(_ context.Context, householdID, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	task, ok := m.Tasks[id]
	if !ok || task.HouseholdID != householdID {
		return nil, nil
	}
	return task.Clone(), nil
}

// List returns all live tasks of the household.
func (m *MockTaskRepository) List(_ context.Context, householdID string) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return collect(m.Tasks, householdID), nil
}

// Create stores a new task.
func (m *MockTaskRepository) Create(_ context.Context, householdID string, task *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	stored := task.Clone()
	stored.ID = m.mintID()
	stored.HouseholdID = householdID
	m.Tasks[stored.ID] = stored
	return stored.Clone(), nil
}

// Update applies a patch.
func (m *MockTaskRepository) Update(_ context.Context, householdID, id string, patch domain.TaskPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if err := m.FailUpdateFor[id]; err != nil {
		return err
	}
	task, ok := m.Tasks[id]
	if !ok || task.HouseholdID != householdID {
		return domain.ErrTaskNotFound
	}
	patch.Apply(task)
	return nil
}

// Delete removes a task.
func (m *MockTaskRepository) Delete(_ context.Context, householdID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if task, ok := m.Tasks[id]; ok && task.HouseholdID == householdID {
		delete(m.Tasks, id)
	}
	return nil
}

// ListHistory returns archived tasks of the household.
func (m *MockTaskRepository) ListHistory(_ context.Context, householdID string) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return collect(m.History, householdID), nil
}

// RunInTransaction runs fn against a private copy and commits it if fn succeeds.
func (m *MockTaskRepository) RunInTransaction(_ context.Context, householdID string, fn func(tx domain.TaskTx) error) error {
	if m.BeforeTx != nil {
		m.BeforeTx()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxCalls++
	if m.TxErr != nil {
		return m.TxErr
	}

	tx := &mockTx{
		repo:        m,
		householdID: householdID,
		tasks:       cloneMap(m.Tasks),
		history:     cloneMap(m.History),
		nextIDN:     m.NextIDN,
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.Tasks = tx.tasks
	m.History = tx.history
	m.NextIDN = tx.nextIDN
	m.TxCommit++
	return nil
}

func (m *MockTaskRepository) mintID() string {
	id := fmt.Sprintf("task-%d", m.NextIDN)
	m.NextIDN++
	return id
}

type mockTx struct {
	repo        *MockTaskRepository
	tasks       map[string]*domain.Task
	history     map[string]*domain.Task
	householdID string
	nextIDN     int
}

func (tx *mockTx) Get(id string) (*domain.Task, error) {
	if tx.repo.GetErr != nil {
		return nil, tx.repo.GetErr
	}
	task, ok := tx.tasks[id]
	if !ok || task.HouseholdID != tx.householdID {
		return nil, nil
	}
	return task.Clone(), nil
}

func (tx *mockTx) Create(task *domain.Task) (*domain.Task, error) {
	if tx.repo.TxCreateErr != nil {
		return nil, tx.repo.TxCreateErr
	}
	stored := task.Clone()
	stored.ID = fmt.Sprintf("task-%d", tx.nextIDN)
	tx.nextIDN++
	stored.HouseholdID = tx.householdID
	tx.tasks[stored.ID] = stored
	return stored.Clone(), nil
}

func (tx *mockTx) Update(id string, patch domain.TaskPatch) error {
	if tx.repo.TxUpdateErr != nil {
		return tx.repo.TxUpdateErr
	}
	if err := tx.repo.FailUpdateFor[id]; err != nil {
		return err
	}
	task, ok := tx.tasks[id]
	if !ok || task.HouseholdID != tx.householdID {
		return domain.ErrTaskNotFound
	}
	patch.Apply(task)
	return nil
}

func (tx *mockTx) Archive(id string) error {
	task, ok := tx.tasks[id]
	if !ok || task.HouseholdID != tx.householdID {
		return domain.ErrTaskNotFound
	}
	delete(tx.tasks, id)
	tx.history[id] = task
	return nil
}

func collect(src map[string]*domain.Task, householdID string) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(src))
	for _, t := range src {
		if t.HouseholdID == householdID {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks
}

func cloneMap(src map[string]*domain.Task) map[string]*domain.Task {
	dst := make(map[string]*domain.Task, len(src))
	for id, t := range src {
		dst[id] = t.Clone()
	}
	return dst
}

// Ensure interfaces are implemented.
var (
	_ domain.TaskRepository = (*MockTaskRepository)(nil)
	_ domain.TaskTx         = (*mockTx)(nil)
	_ domain.Notifier       = (*MockNotifier)(nil)
	_ domain.ReminderQueue  = (*MockNotifier)(nil)
	_ domain.Logger         = (*MockLogger)(nil)
	_ domain.Clock          = (*MockClock)(nil)
)

// MockNotifier is a test double for domain.Notifier and domain.ReminderQueue.
// The queue side reports what was scheduled, without de-duplication.
type MockNotifier struct {
	ScheduleErr error
	CancelErr   error
	QueueErr    error
	Scheduled   []domain.Reminder
	Cancelled   []string // Task IDs
	mu          sync.Mutex
}

// Schedule records the reminder.
func (m *MockNotifier) Schedule(_ context.Context, r domain.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScheduleErr != nil {
		return m.ScheduleErr
	}
	m.Scheduled = append(m.Scheduled, r)
	return nil
}

// Cancel records the cancellation.
func (m *MockNotifier) Cancel(_ context.Context, _, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelErr != nil {
		return m.CancelErr
	}
	m.Cancelled = append(m.Cancelled, taskID)
	return nil
}

// Pending returns scheduled reminders of the household (all when empty).
func (m *MockNotifier) Pending(_ context.Context, householdID string) ([]domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueueErr != nil {
		return nil, m.QueueErr
	}
	var out []domain.Reminder
	for _, r := range m.Scheduled {
		if householdID == "" || r.HouseholdID == householdID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Due returns scheduled reminders at or before now.
func (m *MockNotifier) Due(_ context.Context, now time.Time) ([]domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueueErr != nil {
		return nil, m.QueueErr
	}
	var out []domain.Reminder
	for _, r := range m.Scheduled {
		if !r.At.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

// LogEntry is one recorded MockLogger call.
type LogEntry struct {
	Level       string
	HouseholdID string
	Category    string
	Msg         string
}

// MockLogger is a test double for domain.Logger.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) record(level, householdID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, HouseholdID: householdID, Category: category, Msg: msg})
}

func (m *MockLogger) Debug(householdID, category, msg string) {
	m.record("DEBUG", householdID, category, msg)
}
func (m *MockLogger) Info(householdID, category, msg string) {
	m.record("INFO", householdID, category, msg)
}
func (m *MockLogger) Warn(householdID, category, msg string) {
	m.record("WARN", householdID, category, msg)
}
func (m *MockLogger) Error(householdID, category, msg string) {
	m.record("ERROR", householdID, category, msg)
}

// Has reports whether an entry at level contains substr.
func (m *MockLogger) Has(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// MockStoreInitializer is a test double for domain.StoreInitializer.
type MockStoreInitializer struct {
	InitErr     error
	Initialized bool
	InitCalls   int
}

// Initialize marks the store initialized.
func (m *MockStoreInitializer) Initialize() error {
	m.InitCalls++
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}

// IsInitialized returns the recorded state.
func (m *MockStoreInitializer) IsInitialized() bool {
	return m.Initialized
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitDataErr      error
	InitGlobalErr    error
	DataConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitDataCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		DataConfigInfo: domain.ConfigInfo{
			Path:   "/home/test/.local/share/chores/config.toml",
			Exists: false,
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path:   "/home/test/.config/chores/config.toml",
			Exists: false,
		},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetDataConfigInfo returns the configured data directory config info.
func (m *MockConfigManager) GetDataConfigInfo() domain.ConfigInfo {
	return m.DataConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitDataConfig records the call and returns configured error.
func (m *MockConfigManager) InitDataConfig(_ *domain.Config) error {
	m.InitDataCalled = true
	return m.InitDataErr
}

// InitGlobalConfig records the call and returns configured error.
func (m *MockConfigManager) InitGlobalConfig(_ *domain.Config) error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}
