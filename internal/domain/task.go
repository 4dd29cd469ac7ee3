// Package domain contains core business entities and interfaces.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is the unit of a recurrence rule.
type Frequency string

const (
	FrequencyOnce    Frequency = "once" // Sentinel for non-recurring tasks
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// AllFrequencies returns all valid frequency values.
func AllFrequencies() []Frequency {
	return []Frequency{FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly}
}

// IsValid returns true if f is a known frequency.
func (f Frequency) IsValid() bool {
	for _, v := range AllFrequencies() {
		if f == v {
			return true
		}
	}
	return false
}

// ParseFrequency parses a frequency name (case-insensitive).
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidFrequency)
	}
	return f, nil
}

// Repeat is a recurrence rule attached to a task.
type Repeat struct {
	Frequency Frequency `json:"frequency" yaml:"frequency"`
	Interval  int       `json:"interval" yaml:"interval"`
}

// String renders the rule as "every 2 weeks", "daily" and so on.
func (r *Repeat) String() string {
	if r == nil || r.Frequency == FrequencyOnce {
		return "once"
	}
	if r.Interval <= 1 {
		return string(r.Frequency)
	}
	unit := map[Frequency]string{
		FrequencyDaily:   "days",
		FrequencyWeekly:  "weeks",
		FrequencyMonthly: "months",
	}[r.Frequency]
	return fmt.Sprintf("every %d %s", r.Interval, unit)
}

// Priority is an optional task priority. The zero value means "none".
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = ""
)

// Rank returns the sort rank: high=0, medium=1, low=2, none=3.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// IsValid returns true for the three levels and for none.
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow || p == PriorityNone
}

// ParsePriority parses a priority name. "" and "none" both map to PriorityNone.
func ParsePriority(s string) (Priority, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "none" {
		return PriorityNone, nil
	}
	p := Priority(v)
	if !p.IsValid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidPriority)
	}
	return p, nil
}

// Task is one instance of a household chore.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
	DueDate        time.Time `json:"dueDate" yaml:"dueDate"`
	Repeat         *Repeat   `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	ID             string    `json:"-" yaml:"-"`
	HouseholdID    string    `json:"householdId" yaml:"householdId"`
	Title          string    `json:"title" yaml:"title"`
	AssignedTo     string    `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"` // Empty means anyone
	Priority       Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Details        string    `json:"details,omitempty" yaml:"details,omitempty"`
	Completed      bool      `json:"completed" yaml:"completed"`
	HasSpawnedNext bool      `json:"hasSpawnedNext,omitempty" yaml:"hasSpawnedNext,omitempty"`
}

// IsRecurring reports whether the task carries a usable repeat rule.
func (t *Task) IsRecurring() bool {
	if t.Repeat == nil {
		return false
	}
	switch t.Repeat.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return t.Repeat.Interval >= 1
	default:
		return false
	}
}

// IsAssignedTo reports whether member should act on the task.
// Unassigned tasks belong to everyone.
func (t *Task) IsAssignedTo(member string) bool {
	return t.AssignedTo == "" || t.AssignedTo == member
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Repeat != nil {
		r := *t.Repeat
		c.Repeat = &r
	}
	return &c
}

// Validate checks the invariants a persisted task must satisfy.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.DueDate.IsZero() {
		return fmt.Errorf("due date: %w", ErrInvalidDate)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%q: %w", t.Priority, ErrInvalidPriority)
	}
	if t.Repeat != nil {
		if !t.Repeat.Frequency.IsValid() {
			return fmt.Errorf("%q: %w", t.Repeat.Frequency, ErrInvalidFrequency)
		}
		if t.Repeat.Frequency != FrequencyOnce && t.Repeat.Interval < 1 {
			return fmt.Errorf("interval %d: %w", t.Repeat.Interval, ErrInvalidInterval)
		}
	}
	return nil
}

// Successor builds the next occurrence of a recurring task.
// All fields are copied except identity, completion, creation time, due date and the spawn flag.
func (t *Task) Successor(now time.Time) (*Task, error) {
	if !t.IsRecurring() {
		return nil, ErrNotRecurring
	}
	next, err := NextDueDate(t.DueDate, t.Repeat.Frequency, t.Repeat.Interval)
	if err != nil {
		return nil, err
	}
	child := t.Clone()
	child.ID = ""
	child.Completed = false
	child.CreatedAt = now
	child.DueDate = next
	child.HasSpawnedNext = false
	return child, nil
}

// TaskPatch is a partial update. Nil fields are left untouched.
// The spawn flag can only be raised, never cleared.
type TaskPatch struct {
	Title       *string
	AssignedTo  *string
	Completed   *bool
	DueDate     *time.Time
	Priority    *Priority
	Details     *string
	Repeat      *Repeat
	ClearRepeat bool
	MarkSpawned bool
}

// IsEmpty returns true if the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.AssignedTo == nil && p.Completed == nil && p.DueDate == nil &&
		p.Priority == nil && p.Details == nil && p.Repeat == nil && !p.ClearRepeat && !p.MarkSpawned
}

// Apply writes the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Details != nil {
		t.Details = *p.Details
	}
	if p.ClearRepeat {
		t.Repeat = nil
	}
	if p.Repeat != nil {
		r := *p.Repeat
		t.Repeat = &r
	}
	if p.MarkSpawned {
		t.HasSpawnedNext = true
	}
}

// CompletedPatch returns a patch that only sets the completed flag.
func CompletedPatch(completed bool) TaskPatch {
	return TaskPatch{Completed: &completed}
}
