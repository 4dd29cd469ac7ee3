package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// SweepOverdueInput contains the parameters for an overdue sweep.
type SweepOverdueInput struct {
	HouseholdID string
}

// SweepOverdueOutput summarizes a sweep.
type SweepOverdueOutput struct {
	Children   []*domain.Task // Successors created by this sweep
	Checked    int            // Tasks examined
	Candidates int            // Tasks that needed a spawn
	Failed     int            // Candidates whose spawn returned an error
}

// SweepOverdue spawns successors for every overdue recurring task of a household
// that has not spawned yet. Each candidate is handled independently.
type SweepOverdue struct {
	tasks     domain.TaskRepository
	spawner   *SpawnNext
	reminders *shared.Reminders
	clock     domain.Clock
	logger    domain.Logger
}

// NewSweepOverdue creates a new SweepOverdue use case.
func NewSweepOverdue(
	tasks domain.TaskRepository,
	spawner *SpawnNext,
	reminders *shared.Reminders,
	clock domain.Clock,
	logger domain.Logger,
) *SweepOverdue {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &SweepOverdue{
		tasks:     tasks,
		spawner:   spawner,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// Execute runs the sweep. Per-task failures are logged and joined into the
// returned error after every candidate has been attempted; the output is always returned.
func (uc *SweepOverdue) Execute(ctx context.Context, in SweepOverdueInput) (*SweepOverdueOutput, error) {
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	tasks, err := uc.tasks.List(ctx, in.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := uc.clock.Now()
	candidates := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if domain.NeedsSpawn(t, now) {
			candidates = append(candidates, t)
		}
	}
	domain.SortTasks(candidates)

	out := &SweepOverdueOutput{
		Checked:    len(tasks),
		Candidates: len(candidates),
	}

	var errs []error
	for _, t := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := uc.spawner.Execute(ctx, SpawnNextInput{HouseholdID: in.HouseholdID, TaskID: t.ID})
		if err != nil {
			out.Failed++
			uc.logger.Warn(in.HouseholdID, "sweep", fmt.Sprintf("spawn next for %s: %v", t.ID, err))
			errs = append(errs, fmt.Errorf("task %s: %w", t.ID, err))
			continue
		}
		if res.Spawned() {
			out.Children = append(out.Children, res.Child)
			uc.reminders.Sync(ctx, res.Child)
		}
	}

	uc.logger.Info(in.HouseholdID, "sweep",
		fmt.Sprintf("checked %d, candidates %d, spawned %d, failed %d", out.Checked, out.Candidates, len(out.Children), out.Failed))
	return out, errors.Join(errs...)
}
