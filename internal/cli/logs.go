package cli

import (
	"fmt"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// newLogsCommand creates the logs command.
func newLogsCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Lines  int
		Global bool
	}

	cmd := &cobra.Command{
		Use:         "logs",
		Short:       "Show the activity log",
		Annotations: noStore,
		Long: `Show the activity log of the household: created, completed, spawned
and archived tasks, reminder failures and sweep summaries.

With --global, show the log shared by every household instead.

Examples:
  chores logs
  chores logs -n 20
  chores logs --global`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hid := resolveHousehold(cmd, c)
			if opts.Global {
				hid = ""
			}

			uc := c.ShowLogsUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowLogsInput{
				HouseholdID: hid,
				Lines:       opts.Lines,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 0, "Number of lines to show from the end (0 = all)")
	cmd.Flags().BoolVar(&opts.Global, "global", false, "Show the global log")

	return cmd
}
