package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// newRemindersCommand creates the reminders command.
func newRemindersCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "reminders",
		Short:       "Inspect the reminder outbox",
		Annotations: noStore,
		Long: `Inspect reminders scheduled for incomplete tasks.

Reminders are written to an outbox file in the data directory. A
delivery script can poll 'chores reminders due' and acknowledge each
reminder after sending it.`,
	}

	cmd.AddCommand(newRemindersListCommand(c))
	cmd.AddCommand(newRemindersAckCommand(c))

	return cmd
}

// newRemindersListCommand creates the reminders list subcommand.
func newRemindersListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		DueOnly bool
		All     bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending reminders",
		Long: `List pending reminders, earliest first.

Examples:
  # Reminders for the current household
  chores reminders list

  # Reminders that should be sent now, for every household
  chores reminders list --due --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hid := resolveHousehold(cmd, c)
			if opts.All {
				hid = ""
			}

			uc := c.ListRemindersUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListRemindersInput{
				HouseholdID: hid,
				DueOnly:     opts.DueOnly,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Reminders) == 0 {
				_, _ = fmt.Fprintln(w, "No reminders")
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			defer func() { _ = tw.Flush() }()
			_, _ = fmt.Fprintln(tw, "AT\tHOUSEHOLD\tTASK\tFOR\tTITLE")
			for _, r := range out.Reminders {
				member := "anyone"
				if r.AssignedTo != "" {
					member = r.AssignedTo
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.At.In(c.Location).Format(time.RFC3339),
					r.HouseholdID,
					r.TaskID,
					member,
					r.Title,
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DueOnly, "due", false, "Only reminders whose time has come")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include every household")

	return cmd
}

// newRemindersAckCommand creates the reminders ack subcommand.
func newRemindersAckCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ack <task-id>",
		Short: "Remove a delivered reminder from the outbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.AckReminderUseCase()
			if err := uc.Execute(cmd.Context(), usecase.AckReminderInput{
				HouseholdID: resolveHousehold(cmd, c),
				TaskID:      args[0],
			}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged reminder for %s\n", args[0])
			return nil
		},
	}

	return cmd
}
