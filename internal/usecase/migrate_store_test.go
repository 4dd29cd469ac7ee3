package usecase

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

func migrateFixture() (*testutil.MockTaskRepository, *testutil.MockTaskRepository, *testutil.MockStoreInitializer) {
	source := testutil.NewMockTaskRepository()
	source.Add(weeklyTask("a", day(2024, 6, 3)))
	done := weeklyTask("b", day(2024, 5, 27))
	done.Completed = true
	done.HasSpawnedNext = true
	done.CreatedAt = day(2024, 5, 20)
	source.History["b"] = done
	return source, testutil.NewMockTaskRepository(), &testutil.MockStoreInitializer{}
}

func TestMigrateStore_Execute_CopiesLiveAndHistory(t *testing.T) {
	// Setup
	source, dest, destInit := migrateFixture()
	uc := NewMigrateStore(source, dest, destInit)

	// Execute
	out, err := uc.Execute(context.Background(), MigrateStoreInput{HouseholdID: testHousehold})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &MigrateStoreOutput{Total: 2, Migrated: 2}, out)
	assert.Equal(t, 1, destInit.InitCalls)
	require.Len(t, dest.Tasks, 1)
	require.Len(t, dest.History, 1)
	for _, h := range dest.History {
		assert.True(t, h.HasSpawnedNext)
	}
}

func TestMigrateStore_Execute_Idempotent(t *testing.T) {
	// Setup
	source, dest, destInit := migrateFixture()
	uc := NewMigrateStore(source, dest, destInit)
	_, err := uc.Execute(context.Background(), MigrateStoreInput{HouseholdID: testHousehold})
	require.NoError(t, err)

	// Execute
	out, err := uc.Execute(context.Background(), MigrateStoreInput{HouseholdID: testHousehold})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &MigrateStoreOutput{Total: 2, Skipped: 2}, out)
	assert.Len(t, dest.Tasks, 1)
}

func TestMigrateStore_Execute_SkipHistory(t *testing.T) {
	source, dest, destInit := migrateFixture()

	out, err := NewMigrateStore(source, dest, destInit).Execute(context.Background(), MigrateStoreInput{HouseholdID: testHousehold, SkipHistory: true})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	assert.Empty(t, dest.History)
}

func TestMigrateStore_Execute_Conflict(t *testing.T) {
	// Setup
	source, dest, destInit := migrateFixture()
	diverged := weeklyTask("", day(2024, 6, 3))
	diverged.HouseholdID = testHousehold
	diverged.Completed = true
	dest.Add(diverged)

	// Execute
	_, err := NewMigrateStore(source, dest, destInit).Execute(context.Background(), MigrateStoreInput{HouseholdID: testHousehold})

	// Assert
	assert.ErrorIs(t, err, domain.ErrMigrationConflict)
}

func TestMigrateStore_Execute_InitError(t *testing.T) {
	source, dest, destInit := migrateFixture()
	destInit.InitErr = errors.New("read-only")

	_, err := NewMigrateStore(source, dest, destInit).Execute(context.Background(), MigrateStoreInput{HouseholdID: testHousehold})

	assert.ErrorContains(t, err, "initialize destination store")
}

func TestMigrateStore_Execute_Validation(t *testing.T) {
	source, dest, destInit := migrateFixture()

	_, err := NewMigrateStore(source, dest, nil).Execute(context.Background(), MigrateStoreInput{HouseholdID: testHousehold})
	assert.Error(t, err)

	_, err = NewMigrateStore(source, dest, destInit).Execute(context.Background(), MigrateStoreInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyHousehold)
}

func TestNormalizeTaskForCompare(t *testing.T) {
	a := weeklyTask("x", time.Date(2024, 6, 3, 0, 0, 0, 123456789, time.UTC))
	b := a.Clone()
	b.ID = "y"
	b.DueDate = a.DueDate.Truncate(time.Millisecond).In(time.FixedZone("X", 3600))

	assert.True(t, tasksEqual(normalizeTaskForCompare(a), normalizeTaskForCompare(b)))
}
