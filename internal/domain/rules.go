package domain

import (
	"slices"
	"time"
)

// Group is the bucket a task is rendered under in live lists.
type Group string

const (
	GroupOverdue  Group = "overdue"
	GroupToday    Group = "today"
	GroupThisWeek Group = "this_week"
	GroupUpcoming Group = "upcoming"
)

// AllGroups returns the groups in display order.
func AllGroups() []Group {
	return []Group{GroupOverdue, GroupToday, GroupThisWeek, GroupUpcoming}
}

// Display returns a human-readable group title.
func (g Group) Display() string {
	switch g {
	case GroupOverdue:
		return "Overdue"
	case GroupToday:
		return "Today"
	case GroupThisWeek:
		return "This week"
	case GroupUpcoming:
		return "Upcoming"
	default:
		return string(g)
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// OverdueAt returns the instant a task due on due becomes overdue when judged in loc:
// 00:01 on the calendar day after the due date. The due day itself is grace.
func OverdueAt(due time.Time, loc *time.Location) time.Time {
	y, m, d := due.In(loc).Date()
	return time.Date(y, m, d+1, 0, 1, 0, 0, loc)
}

// IsOverdue reports whether the task is overdue at now.
// Completion is ignored; callers decide whether it suppresses the label.
func IsOverdue(t *Task, now time.Time) bool {
	return !now.Before(OverdueAt(t.DueDate, now.Location()))
}

// ShouldShowTask reports whether a task belongs in a live task list.
// Incomplete tasks are always visible. Completed tasks stay visible while their
// due date is on or after the start of today.
func ShouldShowTask(t *Task, now time.Time) bool {
	if !t.Completed {
		return true
	}
	return !t.DueDate.Before(StartOfDay(now))
}

// ShouldArchive reports whether a task has left the live list for good.
// It is the exact complement of ShouldShowTask.
func ShouldArchive(t *Task, now time.Time) bool {
	return !ShouldShowTask(t, now)
}

// CompareByPriorityAndDate orders tasks by priority rank, then by ascending due date.
// Two tasks compare equal only if both priority and due date are equal.
func CompareByPriorityAndDate(a, b *Task) int {
	if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
		return d
	}
	return a.DueDate.Compare(b.DueDate)
}

// SortTasks sorts tasks in place by priority and due date, keeping input order for ties.
func SortTasks(tasks []*Task) {
	slices.SortStableFunc(tasks, CompareByPriorityAndDate)
}

// GroupOf returns the list bucket for a task at now.
func GroupOf(t *Task, now time.Time) Group {
	if !t.Completed && IsOverdue(t, now) {
		return GroupOverdue
	}
	today := StartOfDay(now)
	due := t.DueDate.In(now.Location())
	switch {
	case due.Before(today.AddDate(0, 0, 1)):
		return GroupToday
	case due.Before(today.AddDate(0, 0, 7)):
		return GroupThisWeek
	default:
		return GroupUpcoming
	}
}

// NeedsSpawn reports whether the overdue sweep should spawn the task's successor.
func NeedsSpawn(t *Task, now time.Time) bool {
	return !t.Completed && t.IsRecurring() && !t.HasSpawnedNext && IsOverdue(t, now)
}
