package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// ArchiveCompletedInput contains the parameters for archiving.
type ArchiveCompletedInput struct {
	HouseholdID string
	DryRun      bool // Report what would be archived without moving anything
}

// ArchiveCompletedOutput contains the result of archiving.
type ArchiveCompletedOutput struct {
	Archived []*domain.Task
}

// ArchiveCompleted moves completed tasks due before today into the household history.
// It removes exactly the tasks ShouldShowTask hides from live lists.
type ArchiveCompleted struct {
	tasks     domain.TaskRepository
	reminders *shared.Reminders
	clock     domain.Clock
	logger    domain.Logger
}

// NewArchiveCompleted creates a new ArchiveCompleted use case.
func NewArchiveCompleted(
	tasks domain.TaskRepository,
	reminders *shared.Reminders,
	clock domain.Clock,
	logger domain.Logger,
) *ArchiveCompleted {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ArchiveCompleted{
		tasks:     tasks,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute archives every eligible task, one transaction per task.
// Eligibility is re-checked inside the transaction.
func (uc *ArchiveCompleted) Execute(ctx context.Context, in ArchiveCompletedInput) (*ArchiveCompletedOutput, error) {
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	tasks, err := uc.tasks.List(ctx, in.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := uc.clock.Now()
	out := &ArchiveCompletedOutput{}
	var errs []error
	for _, t := range tasks {
		if !domain.ShouldArchive(t, now) {
			continue
		}
		if in.DryRun {
			out.Archived = append(out.Archived, t)
			continue
		}

		moved := false
		err := uc.tasks.RunInTransaction(ctx, in.HouseholdID, func(tx domain.TaskTx) error {
			moved = false
			fresh, err := tx.Get(t.ID)
			if err != nil {
				return err
			}
			if fresh == nil || !domain.ShouldArchive(fresh, now) {
				return nil
			}
			if err := tx.Archive(t.ID); err != nil {
				return err
			}
			moved = true
			return nil
		})
		if err != nil {
			uc.logger.Warn(in.HouseholdID, "archive", fmt.Sprintf("archive %s: %v", t.ID, err))
			errs = append(errs, fmt.Errorf("task %s: %w", t.ID, err))
			continue
		}
		if moved {
			out.Archived = append(out.Archived, t)
			uc.reminders.Cancel(ctx, in.HouseholdID, t.ID)
		}
	}

	domain.SortTasks(out.Archived)
	if !in.DryRun {
		uc.logger.Info(in.HouseholdID, "archive", fmt.Sprintf("archived %d tasks", len(out.Archived)))
	}
	return out, errors.Join(errs...)
}
