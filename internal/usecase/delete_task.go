package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	HouseholdID string
	TaskID      string
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task *domain.Task // The deleted task
}

// DeleteTask is the use case for deleting a task.
type DeleteTask struct {
	tasks     domain.TaskRepository
	reminders *shared.Reminders
	logger    domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, reminders *shared.Reminders, logger domain.Logger) *DeleteTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &DeleteTask{
		tasks:     tasks,
		reminders: reminders,
		logger:    logger,
	}
}

// Execute deletes the task and cancels its reminder.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	task, err := shared.GetTask(ctx, uc.tasks, in.HouseholdID, in.TaskID)
	if err != nil {
		return nil, err
	}

	if err := uc.tasks.Delete(ctx, in.HouseholdID, in.TaskID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	uc.logger.Info(in.HouseholdID, "task", fmt.Sprintf("deleted %s %q", task.ID, task.Title))
	uc.reminders.Cancel(ctx, in.HouseholdID, task.ID)

	return &DeleteTaskOutput{Task: task}, nil
}
