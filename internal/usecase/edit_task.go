package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// EditTaskInput contains the parameters for editing a task.
type EditTaskInput struct {
	Patch       domain.TaskPatch
	HouseholdID string
	TaskID      string
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task // The task after the edit
}

// EditTask is the use case for partial updates of a task's fields.
type EditTask struct {
	tasks     domain.TaskRepository
	reminders *shared.Reminders
	logger    domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(tasks domain.TaskRepository, reminders *shared.Reminders, logger domain.Logger) *EditTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &EditTask{
		tasks:     tasks,
		reminders: reminders,
		logger:    logger,
	}
}

// Execute applies the patch after validating the resulting task.
// Completion changes made here never spawn; use ToggleComplete for that.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	if in.Patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	task, err := shared.GetTask(ctx, uc.tasks, in.HouseholdID, in.TaskID)
	if err != nil {
		return nil, err
	}

	in.Patch.Apply(task)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, in.HouseholdID, in.TaskID, in.Patch); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	uc.logger.Info(in.HouseholdID, "task", fmt.Sprintf("edited %s", task.ID))
	uc.reminders.Sync(ctx, task)

	return &EditTaskOutput{Task: task}, nil
}
