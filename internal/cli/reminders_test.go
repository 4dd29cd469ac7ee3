package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemindersListCommand(t *testing.T) {
	// Setup
	container := newTestContainer(t, testutil.NewMockTaskRepository())
	notifier := &testutil.MockNotifier{Scheduled: []domain.Reminder{
		{HouseholdID: domain.DefaultHousehold, TaskID: "task-1", Title: "Trash", At: testNow.Add(-time.Hour), AssignedTo: "sam"},
		{HouseholdID: domain.DefaultHousehold, TaskID: "task-2", Title: "Plants", At: testNow.Add(24 * time.Hour)},
		{HouseholdID: "cabin", TaskID: "task-3", Title: "Firewood", At: testNow.Add(-time.Hour)},
	}}
	container.Notifier = notifier
	container.ReminderQueue = notifier

	// Execute
	out, err := runCommand(t, newRemindersCommand(container), "list")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Trash")
	assert.Contains(t, out, "sam")
	assert.Contains(t, out, "Plants")
	assert.NotContains(t, out, "Firewood")
}

func TestRemindersListCommand_DueAll(t *testing.T) {
	// Setup
	container := newTestContainer(t, testutil.NewMockTaskRepository())
	notifier := &testutil.MockNotifier{Scheduled: []domain.Reminder{
		{HouseholdID: domain.DefaultHousehold, TaskID: "task-1", Title: "Trash", At: testNow.Add(-time.Hour)},
		{HouseholdID: domain.DefaultHousehold, TaskID: "task-2", Title: "Plants", At: testNow.Add(24 * time.Hour)},
		{HouseholdID: "cabin", TaskID: "task-3", Title: "Firewood", At: testNow.Add(-time.Hour)},
	}}
	container.Notifier = notifier
	container.ReminderQueue = notifier

	// Execute
	out, err := runCommand(t, newRemindersCommand(container), "list", "--due", "--all")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Trash")
	assert.Contains(t, out, "Firewood")
	assert.NotContains(t, out, "Plants")
}

func TestRemindersListCommand_Empty(t *testing.T) {
	// Setup
	container := newTestContainer(t, testutil.NewMockTaskRepository())
	notifier := &testutil.MockNotifier{}
	container.ReminderQueue = notifier

	// Execute
	out, err := runCommand(t, newRemindersCommand(container), "list")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "No reminders\n", out)
}

func TestRemindersAckCommand(t *testing.T) {
	// Setup
	container := newTestContainer(t, testutil.NewMockTaskRepository())
	notifier := &testutil.MockNotifier{}
	container.Notifier = notifier

	// Execute
	out, err := runCommand(t, newRemindersCommand(container), "ack", "task-1")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Acknowledged reminder for task-1")
	assert.Equal(t, []string{"task-1"}, notifier.Cancelled)
}

func TestLogsCommand(t *testing.T) {
	// Setup
	container := newTestContainer(t, testutil.NewMockTaskRepository())
	path := domain.HouseholdLogPath(container.Config.DataDir, domain.DefaultHousehold)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o600))

	// Execute
	out, err := runCommand(t, newLogsCommand(container), "-n", "2")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", out)
}

func TestLogsCommand_NoLogs(t *testing.T) {
	// Setup
	container := newTestContainer(t, testutil.NewMockTaskRepository())

	// Execute
	_, err := runCommand(t, newLogsCommand(container), "--global")

	// Assert
	assert.ErrorIs(t, err, domain.ErrNoLogs)
}
