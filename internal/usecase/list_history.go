package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/runoshun/chores/internal/domain"
)

// ListHistoryInput contains the parameters for listing archived tasks.
type ListHistoryInput struct {
	HouseholdID string
	Limit       int // Maximum number of entries (0 = all)
}

// ListHistoryOutput contains archived tasks, most recent due date first.
type ListHistoryOutput struct {
	Tasks []*domain.Task
}

// ListHistory is the use case for browsing archived tasks.
type ListHistory struct {
	tasks domain.TaskRepository
}

// NewListHistory creates a new ListHistory use case.
func NewListHistory(tasks domain.TaskRepository) *ListHistory {
	return &ListHistory{tasks: tasks}
}

// Execute lists the household history.
func (uc *ListHistory) Execute(ctx context.Context, in ListHistoryInput) (*ListHistoryOutput, error) {
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	tasks, err := uc.tasks.ListHistory(ctx, in.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
		if c := b.DueDate.Compare(a.DueDate); c != 0 {
			return c
		}
		return domain.CompareByPriorityAndDate(a, b)
	})
	if in.Limit > 0 && len(tasks) > in.Limit {
		tasks = tasks[:in.Limit]
	}
	return &ListHistoryOutput{Tasks: tasks}, nil
}
