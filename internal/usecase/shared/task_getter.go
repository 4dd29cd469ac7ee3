// Package shared contains helpers used by several use cases.
package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := repo.Get(ctx, householdID, taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(ctx context.Context, repo domain.TaskRepository, householdID, taskID string) (*domain.Task, error) {
	if householdID == "" {
		return nil, domain.ErrEmptyHousehold
	}
	task, err := repo.Get(ctx, householdID, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%s: %w", taskID, domain.ErrTaskNotFound)
	}
	return task, nil
}
