package cli

import (
	"fmt"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the chores data store",
		Long: `Initialize the data directory and the configured task store.

This command creates:
- the data directory with a logs/ directory
- the task store selected by store.type (json, git, sqlite, postgres, mongo)

Running it again on an initialized store is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitStoreUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitStoreInput{
				DataDir: c.Config.DataDir,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "chores %s store already initialized in %s\n", c.AppConfig.Store.Type, out.DataDir)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Initialized chores %s store in %s\n", c.AppConfig.Store.Type, out.DataDir)
			return nil
		},
	}
}
