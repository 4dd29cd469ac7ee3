package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// ImportTasksInput contains the parameters for importing tasks from a file.
type ImportTasksInput struct {
	HouseholdID string
	Content     string // File content (Markdown with frontmatter)
	DryRun      bool   // If true, parse and validate without creating tasks
}

// ImportTasksOutput contains the result of importing tasks.
type ImportTasksOutput struct {
	Tasks []*domain.Task // Created tasks (or tasks that would be created in dry-run mode)
}

// ImportTasks is the use case for creating tasks from a file.
type ImportTasks struct {
	tasks     domain.TaskRepository
	reminders *shared.Reminders
	clock     domain.Clock
	logger    domain.Logger
	parseDate domain.DateParser
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(
	tasks domain.TaskRepository,
	reminders *shared.Reminders,
	clock domain.Clock,
	logger domain.Logger,
	parseDate domain.DateParser,
) *ImportTasks {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ImportTasks{
		tasks:     tasks,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
		parseDate: parseDate,
	}
}

// Execute validates every draft first, then creates them in file order.
// A file with any invalid block creates nothing.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	pending := make([]*domain.Task, 0, len(drafts))
	for i, draft := range drafts {
		task, err := draft.ToTask(in.HouseholdID, now, uc.parseDate)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		pending = append(pending, task)
	}

	if in.DryRun {
		return &ImportTasksOutput{Tasks: pending}, nil
	}

	result := &ImportTasksOutput{Tasks: make([]*domain.Task, 0, len(pending))}
	for i, task := range pending {
		created, err := uc.tasks.Create(ctx, in.HouseholdID, task)
		if err != nil {
			return result, fmt.Errorf("task %d: create task: %w", i+1, err)
		}
		uc.logger.Info(in.HouseholdID, "task", fmt.Sprintf("imported %s %q", created.ID, created.Title))
		uc.reminders.Sync(ctx, created)
		result.Tasks = append(result.Tasks, created)
	}

	return result, nil
}
