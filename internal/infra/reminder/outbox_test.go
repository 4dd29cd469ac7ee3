package reminder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/chores/internal/domain"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC)
}

func TestOutbox_ScheduleReplacesByTask(t *testing.T) {
	// Setup
	ctx := context.Background()
	o := NewOutbox(filepath.Join(t.TempDir(), "reminders.yaml"))

	// Execute
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(3, 9), TaskID: "a", HouseholdID: "home", Title: "Dishes"}))
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(4, 9), TaskID: "a", HouseholdID: "home", Title: "Dishes"}))
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(2, 9), TaskID: "a", HouseholdID: "cabin", Title: "Logs"}))

	// Assert
	home, err := o.Pending(ctx, "home")
	require.NoError(t, err)
	require.Len(t, home, 1)
	assert.True(t, home[0].At.Equal(at(4, 9)))

	all, err := o.Pending(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cabin", all[0].HouseholdID, "sorted by firing time")
}

func TestOutbox_Cancel(t *testing.T) {
	// Setup
	ctx := context.Background()
	o := NewOutbox(filepath.Join(t.TempDir(), "reminders.yaml"))
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(3, 9), TaskID: "a", HouseholdID: "home"}))
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(3, 9), TaskID: "b", HouseholdID: "home"}))

	// Execute
	require.NoError(t, o.Cancel(ctx, "home", "a"))
	require.NoError(t, o.Cancel(ctx, "home", "missing"))

	// Assert
	pending, err := o.Pending(ctx, "home")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].TaskID)
}

func TestOutbox_Due(t *testing.T) {
	// Setup
	ctx := context.Background()
	o := NewOutbox(filepath.Join(t.TempDir(), "reminders.yaml"))
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(3, 9), TaskID: "past", HouseholdID: "home"}))
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(5, 9), TaskID: "now", HouseholdID: "home"}))
	require.NoError(t, o.Schedule(ctx, domain.Reminder{At: at(9, 9), TaskID: "future", HouseholdID: "home"}))

	// Execute
	due, err := o.Due(ctx, at(5, 9))

	// Assert
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "past", due[0].TaskID)
	assert.Equal(t, "now", due[1].TaskID)
}

func TestOutbox_MissingFileIsEmpty(t *testing.T) {
	o := NewOutbox(filepath.Join(t.TempDir(), "nested", "reminders.yaml"))

	pending, err := o.Pending(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutbox_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reminders: [::"), 0o600))
	o := NewOutbox(path)

	_, err := o.Pending(context.Background(), "")

	assert.Error(t, err)
}

func TestOutbox_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := NewOutbox(filepath.Join(t.TempDir(), "reminders.yaml"))

	err := o.Schedule(ctx, domain.Reminder{TaskID: "a"})

	assert.ErrorIs(t, err, context.Canceled)
}
