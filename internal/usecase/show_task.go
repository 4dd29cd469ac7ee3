package usecase

import (
	"context"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	HouseholdID string
	TaskID      string
}

// ShowTaskOutput contains a task and its derived state.
// Fields are ordered to minimize memory padding.
type ShowTaskOutput struct {
	Task       *domain.Task
	Group      domain.Group
	OverdueAt  string // Instant the task turns overdue, in the clock's location
	IsOverdue  bool
	IsVisible  bool // False once the task is ready for archival
	NeedsSpawn bool // An overdue sweep would spawn its successor
}

// ShowTask is the use case for displaying a single task.
type ShowTask struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository, clock domain.Clock) *ShowTask {
	return &ShowTask{
		tasks: tasks,
		clock: clock,
	}
}

// Execute retrieves the task and evaluates it against the current time.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(ctx, uc.tasks, in.HouseholdID, in.TaskID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	return &ShowTaskOutput{
		Task:       task,
		Group:      domain.GroupOf(task, now),
		OverdueAt:  domain.OverdueAt(task.DueDate, now.Location()).Format("2006-01-02 15:04"),
		IsOverdue:  !task.Completed && domain.IsOverdue(task, now),
		IsVisible:  domain.ShouldShowTask(task, now),
		NeedsSpawn: domain.NeedsSpawn(task, now),
	}, nil
}
