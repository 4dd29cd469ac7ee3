package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
)

// Reminders turns task state changes into reminder decisions.
// Notifier failures are logged and never returned.
type Reminders struct {
	notifier domain.Notifier
	logger   domain.Logger
	clock    domain.Clock
	hour     int
	enabled  bool
}

// NewReminders creates a Reminders helper. A nil notifier or logger means no-op.
func NewReminders(notifier domain.Notifier, logger domain.Logger, clock domain.Clock, cfg domain.ReminderConfig) *Reminders {
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Reminders{
		notifier: notifier,
		logger:   logger,
		clock:    clock,
		hour:     cfg.Hour,
		enabled:  cfg.IsEnabled(),
	}
}

// Sync schedules a reminder for task if one is due in the future, otherwise cancels any pending one.
func (r *Reminders) Sync(ctx context.Context, task *domain.Task) {
	if r == nil || !r.enabled {
		return
	}
	rem, ok := domain.PlanReminder(task, r.clock.Now(), r.hour)
	if !ok {
		r.Cancel(ctx, task.HouseholdID, task.ID)
		return
	}
	if err := r.notifier.Schedule(ctx, rem); err != nil {
		r.logger.Warn(task.HouseholdID, "reminder", fmt.Sprintf("schedule reminder for %s: %v", task.ID, err))
		return
	}
	r.logger.Debug(task.HouseholdID, "reminder", fmt.Sprintf("scheduled reminder for %s at %s", task.ID, rem.At.Format("2006-01-02 15:04")))
}

// Cancel drops any pending reminder for the task.
func (r *Reminders) Cancel(ctx context.Context, householdID, taskID string) {
	if r == nil || !r.enabled {
		return
	}
	if err := r.notifier.Cancel(ctx, householdID, taskID); err != nil {
		r.logger.Warn(householdID, "reminder", fmt.Sprintf("cancel reminder for %s: %v", taskID, err))
	}
}
