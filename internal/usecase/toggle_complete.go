package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// ToggleCompleteInput contains the parameters for toggling completion.
type ToggleCompleteInput struct {
	HouseholdID string
	TaskID      string
}

// ToggleCompleteOutput contains the result of toggling completion.
type ToggleCompleteOutput struct {
	Task  *domain.Task // Task with its new completed state
	Child *domain.Task // Successor spawned by this call, if any
}

// ToggleComplete flips a task's completed flag and spawns the successor of a
// recurring task that just became completed.
type ToggleComplete struct {
	tasks     domain.TaskRepository
	spawner   *SpawnNext
	reminders *shared.Reminders
	logger    domain.Logger
}

// NewToggleComplete creates a new ToggleComplete use case.
func NewToggleComplete(tasks domain.TaskRepository, spawner *SpawnNext, reminders *shared.Reminders, logger domain.Logger) *ToggleComplete {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ToggleComplete{
		tasks:     tasks,
		spawner:   spawner,
		reminders: reminders,
		logger:    logger,
	}
}

// Execute toggles completion.
// A failed write is returned without spawning. A failed spawn after a successful
// write returns the updated task together with the error; the next toggle or sweep retries it.
func (uc *ToggleComplete) Execute(ctx context.Context, in ToggleCompleteInput) (*ToggleCompleteOutput, error) {
	task, err := shared.GetTask(ctx, uc.tasks, in.HouseholdID, in.TaskID)
	if err != nil {
		return nil, err
	}

	completed := !task.Completed
	if err := uc.tasks.Update(ctx, in.HouseholdID, task.ID, domain.CompletedPatch(completed)); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	task.Completed = completed
	uc.logger.Info(in.HouseholdID, "toggle", fmt.Sprintf("task %s completed=%t", task.ID, completed))

	out := &ToggleCompleteOutput{Task: task}
	if !completed {
		uc.reminders.Sync(ctx, task)
		return out, nil
	}

	uc.reminders.Cancel(ctx, in.HouseholdID, task.ID)
	if !task.IsRecurring() {
		return out, nil
	}

	spawned, err := uc.spawner.Execute(ctx, SpawnNextInput{HouseholdID: in.HouseholdID, TaskID: task.ID})
	if err != nil {
		uc.logger.Warn(in.HouseholdID, "toggle", fmt.Sprintf("spawn next for %s: %v", task.ID, err))
		return out, fmt.Errorf("spawn next: %w", err)
	}
	if spawned.Spawned() {
		task.HasSpawnedNext = true
		out.Child = spawned.Child
		uc.reminders.Sync(ctx, spawned.Child)
	} else if spawned.Parent != nil {
		task.HasSpawnedNext = spawned.Parent.HasSpawnedNext
	}
	return out, nil
}
