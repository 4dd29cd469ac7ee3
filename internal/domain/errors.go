package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrEmptyTitle          = errors.New("title cannot be empty")
	ErrEmptyHousehold      = errors.New("household cannot be empty")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidInterval     = errors.New("repeat interval must be at least 1")
	ErrInvalidFrequency    = errors.New("invalid repeat frequency")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrNotRecurring        = errors.New("task does not recur")
	ErrNoFieldsToUpdate    = errors.New("no fields to update")
	ErrTransactionConflict = errors.New("transaction conflict: retries exhausted")
	ErrAlreadyInitialized  = errors.New("chores store already initialized")
	ErrNotInitialized      = errors.New("chores store not initialized (run 'chores init' first)")
	ErrUnknownStore        = errors.New("unknown store type")
	ErrConfigExists        = errors.New("config file already exists")
	ErrNoLogs              = errors.New("no log file")
	ErrEmptyFile           = errors.New("file is empty")
	ErrNoTasksInFile       = errors.New("no tasks found in file")
	ErrMigrationConflict   = errors.New("destination already holds a different task")
)
