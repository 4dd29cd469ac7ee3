package cli

import (
	"fmt"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// newDoneCommand creates the done command, which toggles completion.
func newDoneCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between done and not done",
		Long: `Mark a task as done, or as not done if it already is.

Completing a recurring task creates its next occurrence, unless one was
already created. Un-completing never removes the next occurrence.

Examples:
  chores done 3f2a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hid := resolveHousehold(cmd, c)
			taskID, err := resolveTaskID(cmd.Context(), c, hid, args[0])
			if err != nil {
				return err
			}

			uc := c.ToggleCompleteUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ToggleCompleteInput{
				HouseholdID: hid,
				TaskID:      taskID,
			})
			if out == nil {
				return err
			}

			// The completion write may have succeeded even when spawning failed.
			w := cmd.OutOrStdout()
			state := "not done"
			if out.Task.Completed {
				state = "done"
			}
			_, _ = fmt.Fprintf(w, "Marked %s as %s: %s\n", out.Task.ID, state, out.Task.Title)
			if out.Child != nil {
				_, _ = fmt.Fprintf(w, "Next occurrence %s due %s\n", out.Child.ID, formatDate(out.Child.DueDate))
			}
			return err
		},
	}

	return cmd
}

// newSpawnCommand creates the spawn command.
func newSpawnCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spawn <id>",
		Short: "Create the next occurrence of a recurring task",
		Long: `Create the next occurrence of a recurring task now.

Each task produces at most one next occurrence, no matter how often or
from how many places this is run. Running it again is a no-op.

Examples:
  chores spawn 3f2a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hid := resolveHousehold(cmd, c)
			taskID, err := resolveTaskID(cmd.Context(), c, hid, args[0])
			if err != nil {
				return err
			}

			uc := c.SpawnNextUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.SpawnNextInput{
				HouseholdID: hid,
				TaskID:      taskID,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Child == nil {
				if out.Parent != nil && !out.Parent.IsRecurring() {
					return fmt.Errorf("%s: %w", taskID, domain.ErrNotRecurring)
				}
				_, _ = fmt.Fprintf(w, "Task %s already has its next occurrence\n", taskID)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Created next occurrence %s due %s\n", out.Child.ID, formatDate(out.Child.DueDate))
			return nil
		},
	}

	return cmd
}

// newSweepCommand creates the sweep command.
func newSweepCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Roll overdue recurring tasks forward",
		Long: `Create the next occurrence of every recurring task that is overdue and
not done. A task becomes overdue at 00:01 on the day after its due date.

The sweep is safe to run often, for example from cron. A task that was
missed for several periods advances one period per sweep.

Examples:
  chores sweep`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.SweepOverdueUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.SweepOverdueInput{
				HouseholdID: resolveHousehold(cmd, c),
			})
			if out != nil {
				w := cmd.OutOrStdout()
				for _, child := range out.Children {
					_, _ = fmt.Fprintf(w, "Created %s: %s (due %s)\n", child.ID, child.Title, formatDate(child.DueDate))
				}
				_, _ = fmt.Fprintf(w, "Checked %d task(s), spawned %d, failed %d\n",
					out.Checked, len(out.Children), out.Failed)
			}
			return err
		},
	}

	return cmd
}

// newArchiveCommand creates the archive command.
func newArchiveCommand(c *app.Container) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move completed tasks from earlier days to the history",
		Long: `Move every completed task whose due date is before today into the
history. Archived tasks no longer appear in 'chores list'.

Examples:
  # Preview
  chores archive --dry-run

  # Archive
  chores archive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ArchiveCompletedUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ArchiveCompletedInput{
				HouseholdID: resolveHousehold(cmd, c),
				DryRun:      dryRun,
			})
			if out != nil {
				w := cmd.OutOrStdout()
				verb := "Archived"
				if dryRun {
					verb = "Would archive"
				}
				for _, t := range out.Archived {
					_, _ = fmt.Fprintf(w, "%s %s: %s\n", verb, shortID(t.ID), t.Title)
				}
				_, _ = fmt.Fprintf(w, "%s %d task(s)\n", verb, len(out.Archived))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be archived without archiving")

	return cmd
}
