package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// CopyTaskInput contains the parameters for copying a task.
// Fields are ordered to minimize memory padding.
type CopyTaskInput struct {
	Title       *string    // New title (optional, defaults to "<original> (copy)")
	DueDate     *time.Time // New due date (optional, defaults to the source's)
	HouseholdID string
	SourceID    string // Source task ID to copy
}

// CopyTaskOutput contains the result of copying a task.
type CopyTaskOutput struct {
	Task *domain.Task
}

// CopyTask is the use case for copying a task.
type CopyTask struct {
	tasks     domain.TaskRepository
	reminders *shared.Reminders
	clock     domain.Clock
	logger    domain.Logger
}

// NewCopyTask creates a new CopyTask use case.
func NewCopyTask(tasks domain.TaskRepository, reminders *shared.Reminders, clock domain.Clock, logger domain.Logger) *CopyTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &CopyTask{
		tasks:     tasks,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute copies a task with the given input.
// The copy keeps assignee, priority, details and the repeat rule.
// It starts incomplete and without a spawned successor, so it is an independent series.
func (uc *CopyTask) Execute(ctx context.Context, in CopyTaskInput) (*CopyTaskOutput, error) {
	source, err := shared.GetTask(ctx, uc.tasks, in.HouseholdID, in.SourceID)
	if err != nil {
		return nil, err
	}

	task := source.Clone()
	task.ID = ""
	task.Completed = false
	task.HasSpawnedNext = false
	task.CreatedAt = uc.clock.Now()
	task.Title = source.Title + " (copy)"
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, in.HouseholdID, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	uc.logger.Info(in.HouseholdID, "task", fmt.Sprintf("copied %s to %s", source.ID, created.ID))
	uc.reminders.Sync(ctx, created)

	return &CopyTaskOutput{Task: created}, nil
}
