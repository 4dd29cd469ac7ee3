package domain

import (
	"context"
	"time"
)

// DefaultReminderHour is the local hour a reminder fires on the due date.
const DefaultReminderHour = 9

// Reminder is a request to notify household members about a task.
// Fields are ordered to minimize memory padding.
type Reminder struct {
	At          time.Time `yaml:"at"`
	TaskID      string    `yaml:"taskId"`
	HouseholdID string    `yaml:"householdId"`
	Title       string    `yaml:"title"`
	AssignedTo  string    `yaml:"assignedTo,omitempty"` // Empty means every member
}

// PlanReminder decides whether a reminder should exist for t.
// The reminder fires at hour:00 on the due date in now's location.
// Completed tasks and reminders whose time has passed yield false.
func PlanReminder(t *Task, now time.Time, hour int) (Reminder, bool) {
	if t.Completed || t.DueDate.IsZero() {
		return Reminder{}, false
	}
	if hour < 0 || hour > 23 {
		hour = DefaultReminderHour
	}
	y, m, d := t.DueDate.In(now.Location()).Date()
	at := time.Date(y, m, d, hour, 0, 0, 0, now.Location())
	if !at.After(now) {
		return Reminder{}, false
	}
	return Reminder{
		At:          at,
		TaskID:      t.ID,
		HouseholdID: t.HouseholdID,
		Title:       t.Title,
		AssignedTo:  t.AssignedTo,
	}, true
}

// Notifier receives reminder decisions. Delivery is someone else's job.
type Notifier interface {
	// Schedule registers or replaces the reminder for r.TaskID.
	Schedule(ctx context.Context, r Reminder) error

	// Cancel drops any pending reminder for the task.
	Cancel(ctx context.Context, householdID, taskID string) error
}

// ReminderQueue exposes reminders waiting for delivery.
type ReminderQueue interface {
	// Pending returns a household's reminders; an empty householdID means all households.
	Pending(ctx context.Context, householdID string) ([]Reminder, error)

	// Due returns reminders whose time is at or before now.
	Due(ctx context.Context, now time.Time) ([]Reminder, error)
}

// NopNotifier discards every decision.
type NopNotifier struct{}

// Schedule does nothing.
func (NopNotifier) Schedule(context.Context, Reminder) error { return nil }

// Cancel does nothing.
func (NopNotifier) Cancel(context.Context, string, string) error { return nil }
