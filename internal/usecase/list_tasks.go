package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/chores/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	HouseholdID   string
	AssignedTo    string // Filter to tasks this member should act on (empty = all)
	IncludeHidden bool   // Include completed tasks from before today
}

// TaskGroup is one rendered bucket of tasks.
type TaskGroup struct {
	Group domain.Group
	Tasks []*domain.Task
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks  []*domain.Task // Sorted by priority then due date
	Groups []TaskGroup    // Non-empty groups in display order
}

// ListTasks is the use case for listing the live tasks of a household.
type ListTasks struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository, clock domain.Clock) *ListTasks {
	return &ListTasks{
		tasks: tasks,
		clock: clock,
	}
}

// Execute lists visible tasks sorted by priority and due date, grouped for display.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	if in.HouseholdID == "" {
		return nil, domain.ErrEmptyHousehold
	}

	tasks, err := uc.tasks.List(ctx, in.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := uc.clock.Now()
	filtered := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !in.IncludeHidden && !domain.ShouldShowTask(t, now) {
			continue
		}
		if in.AssignedTo != "" && !t.IsAssignedTo(in.AssignedTo) {
			continue
		}
		filtered = append(filtered, t)
	}
	domain.SortTasks(filtered)

	return &ListTasksOutput{
		Tasks:  filtered,
		Groups: groupTasks(filtered, now),
	}, nil
}

// groupTasks buckets already sorted tasks, keeping their order within each group.
func groupTasks(tasks []*domain.Task, now time.Time) []TaskGroup {
	byGroup := make(map[domain.Group][]*domain.Task)
	for _, t := range tasks {
		g := domain.GroupOf(t, now)
		byGroup[g] = append(byGroup[g], t)
	}

	groups := make([]TaskGroup, 0, len(byGroup))
	for _, g := range domain.AllGroups() {
		if len(byGroup[g]) > 0 {
			groups = append(groups, TaskGroup{Group: g, Tasks: byGroup[g]})
		}
	}
	return groups
}
