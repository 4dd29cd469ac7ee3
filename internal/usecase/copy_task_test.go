package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/runoshun/chores/internal/usecase/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTask_Execute_Defaults(t *testing.T) {
	// Setup
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := testutil.NewMockTaskRepository()
	source := weeklyTask("src", day(2024, 6, 3))
	source.Completed = true
	source.HasSpawnedNext = true
	repo.Add(source)
	clock := &testutil.MockClock{NowTime: now}
	uc := NewCopyTask(repo, shared.NewReminders(nil, nil, clock, domain.ReminderConfig{}), clock, nil)

	// Execute
	out, err := uc.Execute(context.Background(), CopyTaskInput{HouseholdID: testHousehold, SourceID: "src"})

	// Assert
	require.NoError(t, err)
	copied := out.Task
	assert.NotEqual(t, "src", copied.ID)
	assert.Equal(t, "Vacuum (copy)", copied.Title)
	assert.Equal(t, "sam", copied.AssignedTo)
	assert.Equal(t, day(2024, 6, 3), copied.DueDate)
	assert.Equal(t, now, copied.CreatedAt)
	assert.False(t, copied.Completed)
	assert.False(t, copied.HasSpawnedNext)
	assert.True(t, copied.IsRecurring())
}

func TestCopyTask_Execute_Overrides(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	repo.Add(weeklyTask("src", day(2024, 6, 3)))
	clock := &testutil.MockClock{NowTime: day(2024, 6, 1)}
	uc := NewCopyTask(repo, nil, clock, nil)
	title := "Vacuum car"
	due := day(2024, 6, 8)

	// Execute
	out, err := uc.Execute(context.Background(), CopyTaskInput{HouseholdID: testHousehold, SourceID: "src", Title: &title, DueDate: &due})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Vacuum car", out.Task.Title)
	assert.Equal(t, due, out.Task.DueDate)
}

func TestCopyTask_Execute_NotFound(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	uc := NewCopyTask(repo, nil, &testutil.MockClock{}, nil)

	_, err := uc.Execute(context.Background(), CopyTaskInput{HouseholdID: testHousehold, SourceID: "nope"})

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestCopyTask_Execute_EmptyTitle(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(weeklyTask("src", day(2024, 6, 3)))
	uc := NewCopyTask(repo, nil, &testutil.MockClock{}, nil)
	blank := "  "

	_, err := uc.Execute(context.Background(), CopyTaskInput{HouseholdID: testHousehold, SourceID: "src", Title: &blank})

	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}
