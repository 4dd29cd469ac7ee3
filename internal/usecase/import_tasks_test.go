package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/runoshun/chores/internal/usecase/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importFile = `---
title: Water plants
due: 2024-06-03
repeat: every 3 days
priority: low
---
Ferns first.

---
title: Recycling
due: 2024-06-04
repeat: weekly
assigned: sam
---
`

func parseDayUTC(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

func newImportFixture(now time.Time) (*ImportTasks, *testutil.MockTaskRepository, *testutil.MockNotifier) {
	repo := testutil.NewMockTaskRepository()
	clock := &testutil.MockClock{NowTime: now}
	notifier := &testutil.MockNotifier{}
	reminders := shared.NewReminders(notifier, nil, clock, domain.ReminderConfig{Hour: 9})
	return NewImportTasks(repo, reminders, clock, nil, parseDayUTC), repo, notifier
}

func TestImportTasks_Execute_Success(t *testing.T) {
	// Setup
	uc, repo, notifier := newImportFixture(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	// Execute
	out, err := uc.Execute(context.Background(), ImportTasksInput{HouseholdID: testHousehold, Content: importFile})

	// Assert
	require.NoError(t, err)
	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "Water plants", out.Tasks[0].Title)
	assert.Equal(t, "Ferns first.", out.Tasks[0].Details)
	assert.Equal(t, 3, out.Tasks[0].Repeat.Interval)
	assert.Equal(t, "sam", out.Tasks[1].AssignedTo)
	assert.Len(t, repo.Tasks, 2)
	assert.Len(t, notifier.Scheduled, 2)
}

func TestImportTasks_Execute_DryRun(t *testing.T) {
	// Setup
	uc, repo, notifier := newImportFixture(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	// Execute
	out, err := uc.Execute(context.Background(), ImportTasksInput{HouseholdID: testHousehold, Content: importFile, DryRun: true})

	// Assert
	require.NoError(t, err)
	assert.Len(t, out.Tasks, 2)
	assert.Empty(t, out.Tasks[0].ID)
	assert.Empty(t, repo.Tasks)
	assert.Empty(t, notifier.Scheduled)
}

func TestImportTasks_Execute_InvalidBlockCreatesNothing(t *testing.T) {
	// Setup
	uc, repo, _ := newImportFixture(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	content := importFile + `---
title: Broken
due: 2024-06-05
repeat: hourly
---
`

	// Execute
	_, err := uc.Execute(context.Background(), ImportTasksInput{HouseholdID: testHousehold, Content: content})

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)
	assert.Contains(t, err.Error(), "task 3")
	assert.Empty(t, repo.Tasks)
}

func TestImportTasks_Execute_CreateError(t *testing.T) {
	// Setup
	uc, repo, _ := newImportFixture(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	repo.CreateErr = errors.New("disk full")

	// Execute
	out, err := uc.Execute(context.Background(), ImportTasksInput{HouseholdID: testHousehold, Content: importFile})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task 1: create task")
	assert.Empty(t, out.Tasks)
}

func TestImportTasks_Execute_EmptyHousehold(t *testing.T) {
	uc, _, _ := newImportFixture(time.Now())

	_, err := uc.Execute(context.Background(), ImportTasksInput{Content: importFile})

	assert.ErrorIs(t, err, domain.ErrEmptyHousehold)
}
