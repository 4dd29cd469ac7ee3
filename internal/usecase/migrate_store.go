package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/runoshun/chores/internal/domain"
)

// MigrateStoreInput contains parameters for MigrateStore.
type MigrateStoreInput struct {
	HouseholdID string

	// SkipHistory migrates live tasks only.
	SkipHistory bool
}

// MigrateStoreOutput contains migration results.
type MigrateStoreOutput struct {
	Total    int
	Migrated int
	Skipped  int
}

// MigrateStore copies one household from one backend to another.
// Tasks get new IDs in the destination; a task counts as already migrated when
// the destination holds an identical task with the same title and creation time.
// Times are compared at millisecond precision, the coarsest any backend stores.
type MigrateStore struct {
	source   domain.TaskRepository
	dest     domain.TaskRepository
	destInit domain.StoreInitializer
}

// NewMigrateStore creates a new MigrateStore use case.
func NewMigrateStore(source, dest domain.TaskRepository, destInit domain.StoreInitializer) *MigrateStore {
	return &MigrateStore{source: source, dest: dest, destInit: destInit}
}

// Execute migrates live tasks and, unless skipped, the household history.
// Existing destination tasks are skipped if identical; otherwise it fails.
func (uc *MigrateStore) Execute(ctx context.Context, in MigrateStoreInput) (*MigrateStoreOutput, error) {
	if uc.destInit == nil {
		return nil, errors.New("destination store initializer is nil")
	}
	if uc.source == nil || uc.dest == nil {
		return nil, errors.New("source or destination store is nil")
	}
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	if err := uc.destInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize destination store: %w", err)
	}

	live, err := uc.source.List(ctx, in.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list source tasks: %w", err)
	}
	var history []*domain.Task
	if !in.SkipHistory {
		if history, err = uc.source.ListHistory(ctx, in.HouseholdID); err != nil {
			return nil, fmt.Errorf("list source history: %w", err)
		}
	}

	destLive, err := uc.dest.List(ctx, in.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list destination tasks: %w", err)
	}
	destHistory, err := uc.dest.ListHistory(ctx, in.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list destination history: %w", err)
	}

	out := &MigrateStoreOutput{Total: len(live) + len(history)}
	migrate := func(task *domain.Task, existing []*domain.Task, archived bool) error {
		if match := findMigrated(task, existing); match != nil {
			if !tasksEqual(normalizeTaskForCompare(task), normalizeTaskForCompare(match)) {
				return fmt.Errorf("%w: task %s", domain.ErrMigrationConflict, task.ID)
			}
			out.Skipped++
			return nil
		}
		err := uc.dest.RunInTransaction(ctx, in.HouseholdID, func(tx domain.TaskTx) error {
			created, err := tx.Create(task)
			if err != nil {
				return err
			}
			if archived {
				return tx.Archive(created.ID)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("save destination task %s: %w", task.ID, err)
		}
		out.Migrated++
		return nil
	}

	for _, task := range live {
		if err := migrate(task, destLive, false); err != nil {
			return nil, err
		}
	}
	for _, task := range history {
		if err := migrate(task, destHistory, true); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// findMigrated looks for a previous copy of task among existing.
func findMigrated(task *domain.Task, existing []*domain.Task) *domain.Task {
	for _, e := range existing {
		if e.Title == task.Title && e.CreatedAt.Truncate(time.Millisecond).Equal(task.CreatedAt.Truncate(time.Millisecond)) {
			return e
		}
	}
	return nil
}

func normalizeTaskForCompare(task *domain.Task) *domain.Task {
	cloned := task.Clone()
	cloned.ID = ""
	cloned.HouseholdID = ""
	cloned.CreatedAt = cloned.CreatedAt.UTC().Truncate(time.Millisecond)
	cloned.DueDate = cloned.DueDate.UTC().Truncate(time.Millisecond)
	return cloned
}

func tasksEqual(a, b *domain.Task) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
