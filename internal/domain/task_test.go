package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_IsRecurring(t *testing.T) {
	tests := []struct {
		name   string
		repeat *Repeat
		want   bool
	}{
		{"nil", nil, false},
		{"once", &Repeat{Frequency: FrequencyOnce, Interval: 1}, false},
		{"daily", &Repeat{Frequency: FrequencyDaily, Interval: 1}, true},
		{"weekly 3", &Repeat{Frequency: FrequencyWeekly, Interval: 3}, true},
		{"monthly zero interval", &Repeat{Frequency: FrequencyMonthly, Interval: 0}, false},
		{"unknown", &Repeat{Frequency: "yearly", Interval: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Repeat: tt.repeat}
			assert.Equal(t, tt.want, task.IsRecurring())
		})
	}
}

func TestTask_Validate(t *testing.T) {
	due := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		task    Task
		wantErr error
	}{
		{"valid", Task{Title: "Dishes", DueDate: due}, nil},
		{"valid recurring", Task{Title: "Dishes", DueDate: due, Repeat: &Repeat{Frequency: FrequencyDaily, Interval: 2}}, nil},
		{"empty title", Task{Title: "  ", DueDate: due}, ErrEmptyTitle},
		{"zero due", Task{Title: "Dishes"}, ErrInvalidDate},
		{"bad priority", Task{Title: "Dishes", DueDate: due, Priority: "urgent"}, ErrInvalidPriority},
		{"bad frequency", Task{Title: "Dishes", DueDate: due, Repeat: &Repeat{Frequency: "hourly", Interval: 1}}, ErrInvalidFrequency},
		{"bad interval", Task{Title: "Dishes", DueDate: due, Repeat: &Repeat{Frequency: FrequencyWeekly}}, ErrInvalidInterval},
		{"once ignores interval", Task{Title: "Dishes", DueDate: due, Repeat: &Repeat{Frequency: FrequencyOnce}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTask_Successor(t *testing.T) {
	now := time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)
	parent := &Task{
		ID:             "abc",
		HouseholdID:    "home",
		Title:          "Vacuum",
		AssignedTo:     "sam",
		Completed:      true,
		CreatedAt:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Priority:       PriorityLow,
		Details:        "Living room too",
		Repeat:         &Repeat{Frequency: FrequencyWeekly, Interval: 1},
		HasSpawnedNext: true,
	}

	child, err := parent.Successor(now)
	require.NoError(t, err)

	assert.Empty(t, child.ID)
	assert.False(t, child.Completed)
	assert.False(t, child.HasSpawnedNext)
	assert.Equal(t, now, child.CreatedAt)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), child.DueDate)
	assert.Equal(t, parent.HouseholdID, child.HouseholdID)
	assert.Equal(t, parent.Title, child.Title)
	assert.Equal(t, parent.AssignedTo, child.AssignedTo)
	assert.Equal(t, parent.Priority, child.Priority)
	assert.Equal(t, parent.Details, child.Details)
	assert.Equal(t, *parent.Repeat, *child.Repeat)

	// Repeat must not be shared with the parent
	child.Repeat.Interval = 5
	assert.Equal(t, 1, parent.Repeat.Interval)
}

func TestTask_Successor_NotRecurring(t *testing.T) {
	task := &Task{Title: "One-off", DueDate: time.Now()}
	_, err := task.Successor(time.Now())
	assert.ErrorIs(t, err, ErrNotRecurring)
}

func TestTaskPatch_Apply(t *testing.T) {
	task := &Task{Title: "Old", Repeat: &Repeat{Frequency: FrequencyDaily, Interval: 1}}
	title := "New"
	done := true
	prio := PriorityHigh

	patch := TaskPatch{Title: &title, Completed: &done, Priority: &prio, ClearRepeat: true, MarkSpawned: true}
	assert.False(t, patch.IsEmpty())
	patch.Apply(task)

	assert.Equal(t, "New", task.Title)
	assert.True(t, task.Completed)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Nil(t, task.Repeat)
	assert.True(t, task.HasSpawnedNext)

	// An empty patch never clears the spawn flag
	TaskPatch{}.Apply(task)
	assert.True(t, task.HasSpawnedNext)
	assert.True(t, TaskPatch{}.IsEmpty())
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("none")
	require.NoError(t, err)
	assert.Equal(t, PriorityNone, p)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)

	_, err = ParseFrequency("hourly")
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestRepeat_String(t *testing.T) {
	assert.Equal(t, "once", (*Repeat)(nil).String())
	assert.Equal(t, "weekly", (&Repeat{Frequency: FrequencyWeekly, Interval: 1}).String())
	assert.Equal(t, "every 3 months", (&Repeat{Frequency: FrequencyMonthly, Interval: 3}).String())
}
