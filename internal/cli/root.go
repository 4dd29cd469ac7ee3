// Package cli provides the command-line interface for chores.
package cli

import (
	"fmt"

	"github.com/runoshun/chores/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup     = "setup"
	groupTask      = "task"
	groupLifecycle = "lifecycle"
	groupReminder  = "reminder"
)

// annotationNoStore marks commands that run without opening the task store.
// Subcommands inherit the mark from their parents.
const annotationNoStore = "chores.no-store"

var noStore = map[string]string{annotationNoStore: "true"}

// NewRootCommand creates the root command for chores.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "chores",
		Short: "Household chore tracker with recurring tasks",
		Long: `chores keeps track of household chores.

Tasks can repeat daily, weekly or monthly. Completing a recurring task
creates its next occurrence, and tasks left undone past their due day
are rolled forward by 'chores sweep'. Completed tasks from earlier days
are moved to the history with 'chores archive'.

Every command works on one household, taken from --household or from
household.default in the configuration.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}

			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}

			if !needsStore(cmd) {
				return nil
			}
			return c.OpenStore(cmd.Context())
		},
	}

	root.PersistentFlags().StringP("household", "H", "", "Household ID (default: household.default from config)")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupLifecycle, Title: "Recurrence and History:"},
		&cobra.Group{ID: groupReminder, Title: "Reminders:"},
	)

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	migrateCmd := newMigrateCommand(c)
	migrateCmd.GroupID = groupSetup

	logsCmd := newLogsCommand(c)
	logsCmd.GroupID = groupSetup

	// Task management commands
	newCmd := newNewCommand(c)
	newCmd.GroupID = groupTask

	importCmd := newImportCommand(c)
	importCmd.GroupID = groupTask

	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(c)
	showCmd.GroupID = groupTask

	editCmd := newEditCommand(c)
	editCmd.GroupID = groupTask

	cpCmd := newCpCommand(c)
	cpCmd.GroupID = groupTask

	rmCmd := newRmCommand(c)
	rmCmd.GroupID = groupTask

	// Lifecycle commands
	doneCmd := newDoneCommand(c)
	doneCmd.GroupID = groupLifecycle

	spawnCmd := newSpawnCommand(c)
	spawnCmd.GroupID = groupLifecycle

	sweepCmd := newSweepCommand(c)
	sweepCmd.GroupID = groupLifecycle

	archiveCmd := newArchiveCommand(c)
	archiveCmd.GroupID = groupLifecycle

	historyCmd := newHistoryCommand(c)
	historyCmd.GroupID = groupLifecycle

	// Reminder commands
	remindersCmd := newRemindersCommand(c)
	remindersCmd.GroupID = groupReminder

	// Add subcommands
	root.AddCommand(
		initCmd,
		configCmd,
		migrateCmd,
		logsCmd,
		newCmd,
		importCmd,
		listCmd,
		showCmd,
		editCmd,
		cpCmd,
		rmCmd,
		doneCmd,
		spawnCmd,
		sweepCmd,
		archiveCmd,
		historyCmd,
		remindersCmd,
	)

	return root
}

// needsStore reports whether cmd works on tasks.
func needsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for p := cmd; p != nil; p = p.Parent() {
		if p.Annotations[annotationNoStore] == "true" {
			return false
		}
		if p.Name() == "completion" {
			return false
		}
	}
	return true
}

// resolveHousehold returns the --household flag value or the configured default.
func resolveHousehold(cmd *cobra.Command, c *app.Container) string {
	if h, err := cmd.Flags().GetString("household"); err == nil && h != "" {
		return h
	}
	return c.DefaultHousehold()
}
