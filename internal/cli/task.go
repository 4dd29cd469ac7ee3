package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title    string
		Details  string
		Due      string
		Repeat   string
		Priority string
		Assign   string
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task in the household.

--due accepts YYYY-MM-DD, YYYY-MM-DDTHH:MM, RFC 3339, "today" or "tomorrow".
Dates without a time mean midnight in the household time zone.

--repeat accepts once, daily, weekly, monthly or "every N days|weeks|months".

Examples:
  # One-off task due today
  chores new --title "Fix the shelf" --due today

  # Weekly task assigned to a member
  chores new --title "Take out trash" --due 2024-03-04 --repeat weekly --assign sam

  # Every two weeks, high priority
  chores new --title "Clean fridge" --due 2024-03-04 --repeat "every 2 weeks" --priority high`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			due, err := parseDue(c, opts.Due)
			if err != nil {
				return err
			}
			repeat, err := domain.ParseRepeat(opts.Repeat)
			if err != nil {
				return err
			}
			priority, err := domain.ParsePriority(opts.Priority)
			if err != nil {
				return err
			}

			uc := c.NewTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.NewTaskInput{
				HouseholdID: resolveHousehold(cmd, c),
				Title:       opts.Title,
				Details:     opts.Details,
				DueDate:     due,
				Repeat:      repeat,
				Priority:    priority,
				AssignedTo:  opts.Assign,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s (due %s, %s)\n",
				out.Task.ID, out.Task.Title, formatDate(out.Task.DueDate), out.Task.Repeat.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Due, "due", "today", "Due date")
	cmd.Flags().StringVar(&opts.Details, "details", "", "Free-text notes")
	cmd.Flags().StringVar(&opts.Repeat, "repeat", "once", "Recurrence rule")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Priority: high, medium, low or none")
	cmd.Flags().StringVar(&opts.Assign, "assign", "", "Household member responsible (default: anyone)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// newShowCommand creates the show command.
func newShowCommand(c *app.Container) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display detailed information about a task.

The ID may be abbreviated to any unique prefix.

Examples:
  chores show 3f2a9c1e
  chores show 3f2a --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hid := resolveHousehold(cmd, c)
			taskID, err := resolveTaskID(cmd.Context(), c, hid, args[0])
			if err != nil {
				return err
			}

			uc := c.ShowTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowTaskInput{
				HouseholdID: hid,
				TaskID:      taskID,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				type jsonTask struct {
					*domain.Task
					ID         string       `json:"id"`
					Group      domain.Group `json:"group"`
					OverdueAt  string       `json:"overdueAt"`
					IsOverdue  bool         `json:"isOverdue"`
					NeedsSpawn bool         `json:"needsSpawn"`
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(jsonTask{
					Task:       out.Task,
					ID:         out.Task.ID,
					Group:      out.Group,
					OverdueAt:  out.OverdueAt,
					IsOverdue:  out.IsOverdue,
					NeedsSpawn: out.NeedsSpawn,
				})
			}

			styles := DefaultStyles()
			w := cmd.OutOrStdout()
			printTaskDetails(w, out.Task, styles)
			_, _ = fmt.Fprintf(w, "Group: %s\n", out.Group.Display())
			if out.IsOverdue && !out.Task.Completed {
				_, _ = fmt.Fprintf(w, "%s since %s\n", styles.Overdue.Render("Overdue"), out.OverdueAt)
			} else {
				_, _ = fmt.Fprintf(w, "Overdue at: %s\n", out.OverdueAt)
			}
			if out.NeedsSpawn {
				_, _ = fmt.Fprintln(w, "The next sweep will create the next occurrence.")
			}
			if !out.IsVisible {
				_, _ = fmt.Fprintln(w, "Ready for archive.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// newEditCommand creates the edit command for editing task fields.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title    string
		Details  string
		Due      string
		Repeat   string
		Priority string
		Assign   string
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task fields",
		Long: `Edit an existing task. Only the given flags are changed.

Completion is not changed here; use 'chores done' so that recurring
tasks create their next occurrence.

Examples:
  # Move the due date
  chores edit 3f2a --due 2024-03-10

  # Stop a task from repeating
  chores edit 3f2a --repeat once

  # Hand a task to someone else, or to anyone
  chores edit 3f2a --assign alex
  chores edit 3f2a --assign ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.TaskPatch
			flags := cmd.Flags()

			if flags.Changed("title") {
				patch.Title = &opts.Title
			}
			if flags.Changed("details") {
				patch.Details = &opts.Details
			}
			if flags.Changed("assign") {
				patch.AssignedTo = &opts.Assign
			}
			if flags.Changed("due") {
				due, err := parseDue(c, opts.Due)
				if err != nil {
					return err
				}
				patch.DueDate = &due
			}
			if flags.Changed("repeat") {
				repeat, err := domain.ParseRepeat(opts.Repeat)
				if err != nil {
					return err
				}
				if repeat == nil {
					patch.ClearRepeat = true
				} else {
					patch.Repeat = repeat
				}
			}
			if flags.Changed("priority") {
				p, err := domain.ParsePriority(opts.Priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}
			if patch.IsEmpty() {
				return fmt.Errorf("%w: pass at least one of --title, --details, --due, --repeat, --priority, --assign", domain.ErrNoFieldsToUpdate)
			}

			hid := resolveHousehold(cmd, c)
			taskID, err := resolveTaskID(cmd.Context(), c, hid, args[0])
			if err != nil {
				return err
			}

			uc := c.EditTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.EditTaskInput{
				HouseholdID: hid,
				TaskID:      taskID,
				Patch:       patch,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", out.Task.ID, out.Task.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Details, "details", "", "New notes")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date")
	cmd.Flags().StringVar(&opts.Repeat, "repeat", "", "New recurrence rule (once removes it)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority (none clears it)")
	cmd.Flags().StringVar(&opts.Assign, "assign", "", "New assignee (empty means anyone)")

	return cmd
}

// newCpCommand creates the cp command for copying tasks.
func newCpCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title string
		Due   string
	}

	cmd := &cobra.Command{
		Use:   "cp <id>",
		Short: "Copy a task",
		Long: `Copy a task to create a new, not yet completed task.

The copy keeps the details, priority, assignee and recurrence rule.
The title gets a " (copy)" suffix unless --title is given.

Examples:
  # Copy task with default title
  chores cp 3f2a

  # Copy task to a new date with a custom title
  chores cp 3f2a --title "Deep clean oven" --due 2024-04-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hid := resolveHousehold(cmd, c)
			sourceID, err := resolveTaskID(cmd.Context(), c, hid, args[0])
			if err != nil {
				return err
			}

			input := usecase.CopyTaskInput{
				HouseholdID: hid,
				SourceID:    sourceID,
			}
			if cmd.Flags().Changed("title") {
				input.Title = &opts.Title
			}
			if cmd.Flags().Changed("due") {
				var due time.Time
				due, err = parseDue(c, opts.Due)
				if err != nil {
					return err
				}
				input.DueDate = &due
			}

			uc := c.CopyTaskUseCase()
			out, err := uc.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Copied task %s to %s\n", sourceID, out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Custom title for the new task")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date for the new task")

	return cmd
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Long: `Delete a live task permanently. Its pending reminder is cancelled.

Deleting a recurring task does not create its next occurrence.
Archived tasks in the history are not affected.

Examples:
  chores rm 3f2a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hid := resolveHousehold(cmd, c)
			taskID, err := resolveTaskID(cmd.Context(), c, hid, args[0])
			if err != nil {
				return err
			}

			uc := c.DeleteTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.DeleteTaskInput{
				HouseholdID: hid,
				TaskID:      taskID,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", out.Task.ID, out.Task.Title)
			return nil
		},
	}

	return cmd
}
