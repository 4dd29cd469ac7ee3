package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// newListCommand creates the list command for listing live tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Member string
		All    bool
		Flat   bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `Display the live tasks of the household.

Tasks are ordered by priority (high, medium, low, none) and then by due
date, and grouped under Overdue, Today, This week and Upcoming.
Completed tasks due before today are hidden; use --all to include them.

Columns: DONE, ID, PRIORITY, DUE, REPEAT, ASSIGNED, TITLE

Examples:
  # Everything for the household
  chores list

  # Only what sam should do (their tasks and unassigned ones)
  chores list --member sam

  # One table without group headers
  chores list --flat`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListTasksInput{
				HouseholdID:   resolveHousehold(cmd, c),
				AssignedTo:    opts.Member,
				IncludeHidden: opts.All,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(w, "No tasks")
				return nil
			}

			styles := DefaultStyles()
			now := c.Clock.Now()
			if opts.Flat {
				printTaskTable(w, out.Tasks, now, styles)
				return nil
			}
			printTaskGroups(w, out.Groups, now, styles)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Member, "member", "m", "", "Show only tasks this member should act on")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Include completed tasks from earlier days")
	cmd.Flags().BoolVar(&opts.Flat, "flat", false, "Print a single table without group headers")

	return cmd
}

// printTaskGroups writes one table per non-empty group.
func printTaskGroups(w io.Writer, groups []usecase.TaskGroup, now time.Time, styles Styles) {
	for i, g := range groups {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s (%d)\n", styles.header(g.Group), len(g.Tasks))
		printTaskTable(w, g.Tasks, now, styles)
	}
}

// newHistoryCommand creates the history command for listing archived tasks.
func newHistoryCommand(c *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived tasks",
		Long: `Display archived tasks, most recently due first.

Examples:
  chores history
  chores history --limit 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListHistoryUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListHistoryInput{
				HouseholdID: resolveHousehold(cmd, c),
				Limit:       limit,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(w, "No archived tasks")
				return nil
			}

			styles := DefaultStyles()
			tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			defer func() { _ = tw.Flush() }()
			_, _ = fmt.Fprintln(tw, "ID\tDUE\tREPEAT\tASSIGNED\tTITLE")
			for _, t := range out.Tasks {
				assigned := "-"
				if t.AssignedTo != "" {
					assigned = t.AssignedTo
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					styles.Muted.Render(shortID(t.ID)),
					formatDate(t.DueDate),
					t.Repeat.String(),
					assigned,
					t.Title,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (0 = all)")

	return cmd
}
