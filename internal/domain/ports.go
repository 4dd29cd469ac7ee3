package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error

	// IsInitialized checks if the store has been initialized.
	IsInitialized() bool
}

// TaskRepository manages task persistence, scoped by household.
type TaskRepository interface {
	// Get retrieves a task by ID. Returns nil if not found.
	Get(ctx context.Context, householdID, id string) (*Task, error)

	// List retrieves all live tasks of a household.
	List(ctx context.Context, householdID string) ([]*Task, error)

	// Create stores a new task and returns it with its assigned ID.
	Create(ctx context.Context, householdID string, task *Task) (*Task, error)

	// Update applies a partial update. Returns ErrTaskNotFound if the task is absent.
	Update(ctx context.Context, householdID, id string, patch TaskPatch) error

	// Delete removes a task. Deleting an absent task is not an error.
	Delete(ctx context.Context, householdID, id string) error

	// ListHistory retrieves archived tasks of a household.
	ListHistory(ctx context.Context, householdID string) ([]*Task, error)

	// RunInTransaction runs fn atomically against one household.
	// Nothing fn wrote is visible to others unless fn returns nil and the commit succeeds.
	// Conflicts are retried by the store; when retries run out the error wraps
	// ErrTransactionConflict.
	RunInTransaction(ctx context.Context, householdID string, fn func(tx TaskTx) error) error
}

// TaskTx is the view of a household inside a transaction.
// Reads observe the transaction's own writes.
type TaskTx interface {
	// Get re-reads a task inside the transaction. Returns nil if not found.
	Get(id string) (*Task, error)

	// Create adds a new task and returns it with its assigned ID.
	Create(task *Task) (*Task, error)

	// Update applies a partial update. Returns ErrTaskNotFound if the task is absent.
	Update(id string, patch TaskPatch) error

	// Archive moves a task from the live set to history.
	Archive(id string) error
}

// Logger records use-case events per household.
type Logger interface {
	Debug(householdID, category, msg string)
	Info(householdID, category, msg string)
	Warn(householdID, category, msg string)
	Error(householdID, category, msg string)
}

// NopLogger discards all entries.
type NopLogger struct{}

func (NopLogger) Debug(string, string, string) {}
func (NopLogger) Info(string, string, string)  {}
func (NopLogger) Warn(string, string, string)  {}
func (NopLogger) Error(string, string, string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
// A nil Location means time.Local.
type RealClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
