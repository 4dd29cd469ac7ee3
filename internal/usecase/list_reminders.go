package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/chores/internal/domain"
)

// ListRemindersInput contains the parameters for listing reminders.
type ListRemindersInput struct {
	HouseholdID string // Empty means every household
	DueOnly     bool   // Only reminders whose time has come
}

// ListRemindersOutput contains the reminders found.
type ListRemindersOutput struct {
	Reminders []domain.Reminder
}

// ListReminders is the use case for inspecting the reminder outbox.
type ListReminders struct {
	queue domain.ReminderQueue
	clock domain.Clock
}

// NewListReminders creates a new ListReminders use case.
func NewListReminders(queue domain.ReminderQueue, clock domain.Clock) *ListReminders {
	return &ListReminders{queue: queue, clock: clock}
}

// Execute returns pending or due reminders ordered by firing time.
func (uc *ListReminders) Execute(ctx context.Context, in ListRemindersInput) (*ListRemindersOutput, error) {
	if !in.DueOnly {
		pending, err := uc.queue.Pending(ctx, in.HouseholdID)
		if err != nil {
			return nil, fmt.Errorf("list reminders: %w", err)
		}
		return &ListRemindersOutput{Reminders: pending}, nil
	}

	due, err := uc.queue.Due(ctx, uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	out := &ListRemindersOutput{}
	for _, r := range due {
		if in.HouseholdID == "" || r.HouseholdID == in.HouseholdID {
			out.Reminders = append(out.Reminders, r)
		}
	}
	return out, nil
}

// AckReminderInput identifies a delivered reminder.
type AckReminderInput struct {
	HouseholdID string
	TaskID      string
}

// AckReminder removes a delivered reminder from the outbox.
type AckReminder struct {
	notifier domain.Notifier
}

// NewAckReminder creates a new AckReminder use case.
func NewAckReminder(notifier domain.Notifier) *AckReminder {
	return &AckReminder{notifier: notifier}
}

// Execute drops the reminder for the task.
func (uc *AckReminder) Execute(ctx context.Context, in AckReminderInput) error {
	if in.HouseholdID == "" {
		return domain.ErrEmptyHousehold
	}
	if err := uc.notifier.Cancel(ctx, in.HouseholdID, in.TaskID); err != nil {
		return fmt.Errorf("acknowledge reminder: %w", err)
	}
	return nil
}
