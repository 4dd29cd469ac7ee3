package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReminders(cfg domain.ReminderConfig) (*Reminders, *testutil.MockNotifier, *testutil.MockLogger) {
	notifier := &testutil.MockNotifier{}
	logger := &testutil.MockLogger{}
	clock := &testutil.MockClock{NowTime: time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC)}
	return NewReminders(notifier, logger, clock, cfg), notifier, logger
}

func TestReminders_SyncSchedulesFutureTask(t *testing.T) {
	r, notifier, _ := newTestReminders(domain.ReminderConfig{Hour: 8})
	task := &domain.Task{ID: "t1", HouseholdID: "home", Title: "Trash", DueDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)}

	r.Sync(context.Background(), task)

	require.Len(t, notifier.Scheduled, 1)
	assert.Equal(t, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), notifier.Scheduled[0].At)
	assert.Empty(t, notifier.Cancelled)
}

func TestReminders_SyncCancelsCompletedTask(t *testing.T) {
	r, notifier, _ := newTestReminders(domain.ReminderConfig{Hour: 8})
	task := &domain.Task{ID: "t1", HouseholdID: "home", Completed: true, DueDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)}

	r.Sync(context.Background(), task)

	assert.Empty(t, notifier.Scheduled)
	assert.Equal(t, []string{"t1"}, notifier.Cancelled)
}

func TestReminders_Disabled(t *testing.T) {
	disabled := false
	r, notifier, _ := newTestReminders(domain.ReminderConfig{Enabled: &disabled, Hour: 8})
	task := &domain.Task{ID: "t1", HouseholdID: "home", DueDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)}

	r.Sync(context.Background(), task)
	r.Cancel(context.Background(), "home", "t1")

	assert.Empty(t, notifier.Scheduled)
	assert.Empty(t, notifier.Cancelled)
}

func TestReminders_FailuresAreLogged(t *testing.T) {
	r, notifier, logger := newTestReminders(domain.ReminderConfig{Hour: 8})
	notifier.ScheduleErr = errors.New("outbox locked")
	notifier.CancelErr = errors.New("outbox locked")
	task := &domain.Task{ID: "t1", HouseholdID: "home", DueDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)}

	r.Sync(context.Background(), task)
	r.Cancel(context.Background(), "home", "t1")

	assert.True(t, logger.Has("WARN", "schedule reminder for t1"))
	assert.True(t, logger.Has("WARN", "cancel reminder for t1"))
}

func TestReminders_NilIsNoop(t *testing.T) {
	var r *Reminders
	assert.NotPanics(t, func() {
		r.Sync(context.Background(), &domain.Task{})
		r.Cancel(context.Background(), "home", "t1")
	})
}
