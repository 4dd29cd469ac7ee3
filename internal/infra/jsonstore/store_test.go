package jsonstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := New(path, WithLocation(time.UTC))
	require.NoError(t, s.Initialize())
	return s
}

func testTask(title string, due time.Time) *domain.Task {
	return &domain.Task{
		Title:     title,
		DueDate:   due,
		CreatedAt: due.Add(-time.Hour),
		Repeat:    &domain.Repeat{Frequency: domain.FrequencyWeekly, Interval: 1},
		Priority:  domain.PriorityHigh,
	}
}

var due = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func TestStore_Initialize(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	s := New(path)

	// Execute & Assert
	assert.False(t, s.IsInitialized())
	require.NoError(t, s.Initialize())
	assert.True(t, s.IsInitialized())
	require.NoError(t, s.Initialize(), "second initialize is a no-op")
}

func TestStore_NotInitialized(t *testing.T) {
	// Setup
	s := New(filepath.Join(t.TempDir(), "tasks.json"))

	// Execute
	_, err := s.List(context.Background(), "home")

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestStore_CreateGetUpdate(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)

	// Execute
	created, err := s.Create(ctx, "home", testTask("Vacuum", due))
	require.NoError(t, err)

	// Assert
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "home", created.HouseholdID)

	got, err := s.Get(ctx, "home", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Vacuum", got.Title)
	assert.True(t, got.DueDate.Equal(due))
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	require.NotNil(t, got.Repeat)
	assert.Equal(t, domain.FrequencyWeekly, got.Repeat.Frequency)

	require.NoError(t, s.Update(ctx, "home", created.ID, domain.CompletedPatch(true)))
	got, err = s.Get(ctx, "home", created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Vacuum", got.Title, "untouched fields survive a patch")
}

func TestStore_GetMissing(t *testing.T) {
	// Setup
	s := newTestStore(t)

	// Execute
	got, err := s.Get(context.Background(), "home", "nope")

	// Assert
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_UpdateMissing(t *testing.T) {
	// Setup
	s := newTestStore(t)

	// Execute
	err := s.Update(context.Background(), "home", "nope", domain.CompletedPatch(true))

	// Assert
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_HouseholdIsolation(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)
	a, err := s.Create(ctx, "home", testTask("Dishes", due))
	require.NoError(t, err)
	_, err = s.Create(ctx, "cabin", testTask("Firewood", due))
	require.NoError(t, err)

	// Execute
	home, err := s.List(ctx, "home")
	require.NoError(t, err)
	fromCabin, err := s.Get(ctx, "cabin", a.ID)
	require.NoError(t, err)

	// Assert
	require.Len(t, home, 1)
	assert.Equal(t, "Dishes", home[0].Title)
	assert.Nil(t, fromCabin)
}

func TestStore_Delete(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)
	created, err := s.Create(ctx, "home", testTask("Laundry", due))
	require.NoError(t, err)

	// Execute
	require.NoError(t, s.Delete(ctx, "home", created.ID))

	// Assert
	got, err := s.Get(ctx, "home", created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_TransactionRollback(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)
	parent, err := s.Create(ctx, "home", testTask("Mop", due))
	require.NoError(t, err)
	boom := errors.New("boom")

	// Execute
	err = s.RunInTransaction(ctx, "home", func(tx domain.TaskTx) error {
		if _, err := tx.Create(testTask("Mop", due.AddDate(0, 0, 7))); err != nil {
			return err
		}
		if err := tx.Update(parent.ID, domain.TaskPatch{MarkSpawned: true}); err != nil {
			return err
		}
		return boom
	})

	// Assert
	assert.ErrorIs(t, err, boom)
	tasks, err := s.List(ctx, "home")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].HasSpawnedNext)
}

func TestStore_TransactionWithoutWritesLeavesFileAlone(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)
	parent := testTask("Mop", due)
	parent.HasSpawnedNext = true
	created, err := s.Create(ctx, "home", parent)
	require.NoError(t, err)
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(s.path, past, past))

	// Execute: a spawn attempt that finds the successor already created
	err = s.RunInTransaction(ctx, "home", func(tx domain.TaskTx) error {
		current, err := tx.Get(created.ID)
		if err != nil || current.HasSpawnedNext {
			return err
		}
		_, err = tx.Create(testTask("Mop", due.AddDate(0, 0, 7)))
		return err
	})

	// Assert
	require.NoError(t, err)
	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "file was rewritten")

	// A transaction that writes still persists
	require.NoError(t, s.RunInTransaction(ctx, "home", func(tx domain.TaskTx) error {
		return tx.Update(created.ID, domain.CompletedPatch(true))
	}))
	info, err = os.Stat(s.path)
	require.NoError(t, err)
	assert.False(t, info.ModTime().Equal(past))
}

func TestStore_Archive(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)
	created, err := s.Create(ctx, "home", testTask("Windows", due))
	require.NoError(t, err)

	// Execute
	err = s.RunInTransaction(ctx, "home", func(tx domain.TaskTx) error {
		return tx.Archive(created.ID)
	})
	require.NoError(t, err)

	// Assert
	live, err := s.List(ctx, "home")
	require.NoError(t, err)
	assert.Empty(t, live)
	history, err := s.ListHistory(ctx, "home")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, created.ID, history[0].ID)
}

func TestStore_ArchiveMissing(t *testing.T) {
	// Setup
	s := newTestStore(t)

	// Execute
	err := s.RunInTransaction(context.Background(), "home", func(tx domain.TaskTx) error {
		return tx.Archive("nope")
	})

	// Assert
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_ConcurrentSpawnCreatesOneChild(t *testing.T) {
	// Setup
	ctx := context.Background()
	s := newTestStore(t)
	parent, err := s.Create(ctx, "home", testTask("Trash", due))
	require.NoError(t, err)

	// Execute
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunInTransaction(ctx, "home", func(tx domain.TaskTx) error {
				current, err := tx.Get(parent.ID)
				if err != nil || current == nil || current.HasSpawnedNext {
					return err
				}
				child, err := current.Successor(due)
				if err != nil {
					return err
				}
				if _, err := tx.Create(child); err != nil {
					return err
				}
				return tx.Update(parent.ID, domain.TaskPatch{MarkSpawned: true})
			})
		}()
	}
	wg.Wait()

	// Assert
	tasks, err := s.List(ctx, "home")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestStore_LooseDates(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{
  "households": {
    "home": {
      "tasks": {
        "a": {"title": "Plants", "dueDate": {"seconds": 1704844800, "nanoseconds": 0}, "createdAt": 1704758400000, "completed": false},
        "b": {"title": "Bins", "dueDate": "2024-01-11", "completed": true}
      }
    }
  },
  "meta": {"version": 1}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	s := New(path, WithLocation(time.UTC))

	// Execute
	a, err := s.Get(context.Background(), "home", "a")
	require.NoError(t, err)
	b, err := s.Get(context.Background(), "home", "b")
	require.NoError(t, err)

	// Assert
	assert.True(t, a.DueDate.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, a.CreatedAt.Equal(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)))
	assert.True(t, b.DueDate.Equal(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)))
	assert.True(t, b.Completed)
}

func TestStore_BadDate(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{"households":{"home":{"tasks":{"a":{"title":"X","dueDate":true}}}},"meta":{"version":1}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	s := New(path)

	// Execute
	_, err := s.List(context.Background(), "home")

	// Assert
	assert.Error(t, err)
}
