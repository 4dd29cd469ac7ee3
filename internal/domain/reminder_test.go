package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanReminder(t *testing.T) {
	task := &Task{ID: "t1", HouseholdID: "home", Title: "Trash", DueDate: at(2024, 6, 10, 0, 0)}

	r, ok := PlanReminder(task, at(2024, 6, 9, 20, 0), 9)
	require.True(t, ok)
	assert.Equal(t, at(2024, 6, 10, 9, 0), r.At)
	assert.Equal(t, "t1", r.TaskID)
	assert.Equal(t, "home", r.HouseholdID)
	assert.Equal(t, "Trash", r.Title)

	_, ok = PlanReminder(task, at(2024, 6, 10, 9, 0), 9)
	assert.False(t, ok, "reminder time already reached")

	done := task.Clone()
	done.Completed = true
	_, ok = PlanReminder(done, at(2024, 6, 9, 20, 0), 9)
	assert.False(t, ok, "completed tasks get no reminder")
}

func TestPlanReminder_InvalidHourFallsBack(t *testing.T) {
	task := &Task{ID: "t1", DueDate: at(2024, 6, 10, 0, 0)}
	r, ok := PlanReminder(task, at(2024, 6, 1, 0, 0), 42)
	require.True(t, ok)
	assert.Equal(t, DefaultReminderHour, r.At.Hour())
}
