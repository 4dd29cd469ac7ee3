package cli

import (
	"testing"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_HelpListsGroups(t *testing.T) {
	// Setup
	root := NewRootCommand(nil, "test-version")

	// Execute
	out, err := runCommand(t, root, "--help")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Setup Commands:")
	assert.Contains(t, out, "Task Management:")
	assert.Contains(t, out, "Recurrence and History:")
	assert.Contains(t, out, "Reminders:")
	assert.Contains(t, out, "sweep")
	assert.Contains(t, out, "--household")
}

func TestNewRootCommand_Version(t *testing.T) {
	// Setup
	root := NewRootCommand(nil, "1.2.3")

	// Execute
	out, err := runCommand(t, root, "--version")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
}

func TestNewRootCommand_HouseholdFlag(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	container := newTestContainer(t, repo)
	root := NewRootCommand(container, "test")

	// Execute
	_, err := runCommand(t, root, "new", "--title", "Feed cat", "-H", "flat-2")

	// Assert
	require.NoError(t, err)
	require.Contains(t, repo.Tasks, "task-1")
	assert.Equal(t, "flat-2", repo.Tasks["task-1"].HouseholdID)
}

func TestNewRootCommand_DefaultHousehold(t *testing.T) {
	// Setup
	repo := testutil.NewMockTaskRepository()
	container := newTestContainer(t, repo)
	container.AppConfig.Household.Default = "cabin"
	root := NewRootCommand(container, "test")

	// Execute
	_, err := runCommand(t, root, "new", "--title", "Feed cat")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "cabin", repo.Tasks["task-1"].HouseholdID)
}

func TestNewRootCommand_PrintsConfigWarnings(t *testing.T) {
	// Setup
	container := newTestContainer(t, testutil.NewMockTaskRepository())
	container.AppConfig.Warnings = []string{"unknown key store.flavour"}
	root := NewRootCommand(container, "test")

	// Execute
	out, err := runCommand(t, root, "list")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: unknown key store.flavour")
}

func TestNeedsStore(t *testing.T) {
	// Setup
	root := NewRootCommand(nil, "test")

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"list"}, true},
		{[]string{"init"}, true},
		{[]string{"sweep"}, true},
		{[]string{"config", "show"}, false},
		{[]string{"config"}, false},
		{[]string{"logs"}, false},
		{[]string{"reminders", "list"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.args[len(tt.args)-1], func(t *testing.T) {
			// Execute
			cmd, _, err := root.Find(tt.args)
			require.NoError(t, err)

			// Assert
			assert.Equal(t, tt.want, needsStore(cmd))
		})
	}
}

func TestNewRootCommand_UnknownStoreFailsBeforeRun(t *testing.T) {
	// Setup
	container := newTestContainer(t, nil)
	container.Tasks = nil
	container.AppConfig.Store.Type = "redis"
	root := NewRootCommand(container, "test")

	// Execute
	_, err := runCommand(t, root, "list")

	// Assert
	assert.ErrorIs(t, err, domain.ErrUnknownStore)
}
