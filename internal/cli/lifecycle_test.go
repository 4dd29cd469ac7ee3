package cli

import (
	"errors"
	"testing"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDoneCommand_RecurringSpawnsOnce(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	task := addTask(repo, "Take out trash", day(5), weekly)
	container := newTestContainer(t, repo)

	// Execute
	out, err := runCommand(t, newDoneCommand(container), task.ID)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Marked task-1 as done: Take out trash")
	assert.Contains(t, out, "Next occurrence task-2 due 2024-03-12")
	assert.True(t, repo.Tasks[task.ID].Completed)
	assert.True(t, repo.Tasks[task.ID].HasSpawnedNext)

	// Toggle back and forth: no second child
	_, err = runCommand(t, newDoneCommand(container), task.ID)
	require.NoError(t, err)
	out, err = runCommand(t, newDoneCommand(container), task.ID)
	require.NoError(t, err)
	assert.NotContains(t, out, "Next occurrence")
	assert.Len(t, repo.Tasks, 2)
}

func TestNewDoneCommand_OneOff(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	task := addTask(repo, "Fix shelf", day(5), nil)
	container := newTestContainer(t, repo)

	// Execute
	out, err := runCommand(t, newDoneCommand(container), task.ID)

	// Assert
	require.NoError(t, err)
	assert.NotContains(t, out, "Next occurrence")
	assert.Len(t, repo.Tasks, 1)
}

func TestNewDoneCommand_SpawnFailureStillReportsCompletion(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	task := addTask(repo, "Take out trash", day(5), weekly)
	repo.TxErr = errors.New("store offline")
	container := newTestContainer(t, repo)

	// Execute
	out, err := runCommand(t, newDoneCommand(container), task.ID)

	// Assert
	assert.ErrorContains(t, err, "store offline")
	assert.Contains(t, out, "Marked task-1 as done")
	assert.True(t, repo.Tasks[task.ID].Completed)
	assert.False(t, repo.Tasks[task.ID].HasSpawnedNext)
}

func TestNewSpawnCommand_Idempotent(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	task := addTask(repo, "Water plants", day(5), &domain.Repeat{Frequency: domain.FrequencyDaily, Interval: 3})
	container := newTestContainer(t, repo)

	// Execute
	first, err := runCommand(t, newSpawnCommand(container), task.ID)
	require.NoError(t, err)
	second, err := runCommand(t, newSpawnCommand(container), task.ID)
	require.NoError(t, err)

	// Assert
	assert.Contains(t, first, "Created next occurrence task-2 due 2024-03-08")
	assert.Contains(t, second, "already has its next occurrence")
	assert.Len(t, repo.Tasks, 2)
}

func TestNewSpawnCommand_NotRecurring(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	task := addTask(repo, "Fix shelf", day(5), nil)
	container := newTestContainer(t, repo)

	// Execute
	_, err := runCommand(t, newSpawnCommand(container), task.ID)

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotRecurring)
}

func TestNewSweepCommand(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	addTask(repo, "Overdue weekly", day(3), weekly)
	addTask(repo, "Due today", day(5), weekly)
	addTask(repo, "Overdue once", day(2), nil)
	container := newTestContainer(t, repo)

	// Execute
	out, err := runCommand(t, newSweepCommand(container))

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Created task-4: Overdue weekly (due 2024-03-10)")
	assert.Contains(t, out, "Checked 3 task(s), spawned 1, failed 0")

	// A second sweep finds nothing to do
	out, err = runCommand(t, newSweepCommand(container))
	require.NoError(t, err)
	assert.Contains(t, out, "spawned 0, failed 0")
}

func TestNewSweepCommand_ReportsFailures(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	addTask(repo, "Overdue weekly", day(3), weekly)
	repo.TxErr = errors.New("store offline")
	container := newTestContainer(t, repo)

	// Execute
	out, err := runCommand(t, newSweepCommand(container))

	// Assert
	assert.ErrorContains(t, err, "store offline")
	assert.Contains(t, out, "failed 1")
}

func TestNewArchiveCommand(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	old := addTask(repo, "Old done", day(1), nil)
	repo.Tasks[old.ID].Completed = true
	today := addTask(repo, "Done today", day(5), nil)
	repo.Tasks[today.ID].Completed = true
	addTask(repo, "Open", day(1), nil)
	container := newTestContainer(t, repo)

	// Execute: dry run first
	out, err := runCommand(t, newArchiveCommand(container), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would archive 1 task(s)")
	assert.Len(t, repo.Tasks, 3)

	out, err = runCommand(t, newArchiveCommand(container))

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Archived task-1: Old done")
	assert.Len(t, repo.Tasks, 2)
	assert.Contains(t, repo.History, old.ID)
}
