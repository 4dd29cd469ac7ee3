package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// NewTaskInput contains the parameters for creating a task.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	DueDate     time.Time       // Required
	Repeat      *domain.Repeat  // Optional recurrence rule
	HouseholdID string          // Owning household
	Title       string          // Required
	AssignedTo  string          // Empty means anyone
	Priority    domain.Priority // Empty means none
	Details     string          // Optional free text
}

// NewTaskOutput contains the result of creating a task.
type NewTaskOutput struct {
	Task *domain.Task
}

// NewTask is the use case for creating a task by hand.
type NewTask struct {
	tasks     domain.TaskRepository
	reminders *shared.Reminders
	clock     domain.Clock
	logger    domain.Logger
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(tasks domain.TaskRepository, reminders *shared.Reminders, clock domain.Clock, logger domain.Logger) *NewTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &NewTask{
		tasks:     tasks,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute validates and stores a new task, then schedules its reminder.
func (uc *NewTask) Execute(ctx context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	task := &domain.Task{
		HouseholdID: in.HouseholdID,
		Title:       strings.TrimSpace(in.Title),
		AssignedTo:  strings.TrimSpace(in.AssignedTo),
		CreatedAt:   uc.clock.Now(),
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Details:     in.Details,
	}
	if in.Repeat != nil && in.Repeat.Frequency != domain.FrequencyOnce {
		r := *in.Repeat
		task.Repeat = &r
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, in.HouseholdID, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	uc.logger.Info(in.HouseholdID, "task", fmt.Sprintf("created %s %q", created.ID, created.Title))
	uc.reminders.Sync(ctx, created)

	return &NewTaskOutput{Task: created}, nil
}
