package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
)

// SpawnNextInput contains the parameters for spawning a successor.
type SpawnNextInput struct {
	HouseholdID string // Owning household
	TaskID      string // Parent task ID
}

// SpawnNextOutput contains the result of a spawn attempt.
type SpawnNextOutput struct {
	Child  *domain.Task // Created successor, nil when nothing was spawned
	Parent *domain.Task // Parent as read inside the transaction
}

// Spawned reports whether this call created the successor.
func (o *SpawnNextOutput) Spawned() bool {
	return o != nil && o.Child != nil
}

// SpawnNext creates the next occurrence of a recurring task at most once.
// The parent is re-read inside a store transaction, so the in-memory copy held by
// the caller is never trusted. Losing the race to another spawner is not an error.
type SpawnNext struct {
	tasks  domain.TaskRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewSpawnNext creates a new SpawnNext use case.
func NewSpawnNext(tasks domain.TaskRepository, clock domain.Clock, logger domain.Logger) *SpawnNext {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &SpawnNext{
		tasks:  tasks,
		clock:  clock,
		logger: logger,
	}
}

// Execute runs the read-check-write sequence in one transaction.
func (uc *SpawnNext) Execute(ctx context.Context, in SpawnNextInput) (*SpawnNextOutput, error) {
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	var out SpawnNextOutput
	err := uc.tasks.RunInTransaction(ctx, in.HouseholdID, func(tx domain.TaskTx) error {
		// Reset on retry
		out = SpawnNextOutput{}

		parent, err := tx.Get(in.TaskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if parent == nil {
			return fmt.Errorf("%s: %w", in.TaskID, domain.ErrTaskNotFound)
		}
		out.Parent = parent

		if !parent.IsRecurring() || parent.HasSpawnedNext {
			return nil
		}

		next, err := parent.Successor(uc.clock.Now())
		if err != nil {
			return fmt.Errorf("compute successor: %w", err)
		}
		child, err := tx.Create(next)
		if err != nil {
			return fmt.Errorf("create successor: %w", err)
		}
		if err := tx.Update(parent.ID, domain.TaskPatch{MarkSpawned: true}); err != nil {
			return fmt.Errorf("mark spawned: %w", err)
		}
		parent.HasSpawnedNext = true
		out.Child = child
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Child != nil {
		uc.logger.Info(in.HouseholdID, "spawn",
			fmt.Sprintf("spawned %s from %s due %s", out.Child.ID, in.TaskID, out.Child.DueDate.Format("2006-01-02")))
	} else {
		uc.logger.Debug(in.HouseholdID, "spawn", fmt.Sprintf("nothing to spawn for %s", in.TaskID))
	}
	return &out, nil
}
