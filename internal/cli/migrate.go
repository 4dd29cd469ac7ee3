package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// errSameStore is returned when the migration target is the configured store.
var errSameStore = errors.New("destination is the configured store")

// newMigrateCommand creates the migrate command.
func newMigrateCommand(c *app.Container) *cobra.Command {
	var opts struct {
		To          string
		Path        string
		DSN         string
		Database    string
		Namespace   string
		SkipHistory bool
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy a household's tasks into another store",
		Long: `Copy the live tasks and history of the household from the configured
store into another backend. The destination is initialized if needed.

Tasks already present in the destination (same title and creation time)
are skipped, so an interrupted migration can be run again. After the
migration, point store.type at the new backend.

Examples:
  # JSON file to SQLite in the data directory
  chores migrate --to sqlite

  # Into PostgreSQL
  chores migrate --to postgres --dsn "postgres://chores@localhost/chores"

  # Into MongoDB, live tasks only
  chores migrate --to mongo --dsn mongodb://localhost:27017 --skip-history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			to := strings.ToLower(strings.TrimSpace(opts.To))
			if !domain.IsValidStoreType(to) {
				return fmt.Errorf("%q: %w", opts.To, domain.ErrUnknownStore)
			}
			destCfg := domain.StoreConfig{
				Type:      to,
				Path:      opts.Path,
				DSN:       opts.DSN,
				Database:  opts.Database,
				Namespace: opts.Namespace,
			}
			if isSameStore(c.AppConfig.Store, destCfg, c.Config.DataDir) {
				return errSameStore
			}

			dest, err := c.OpenOtherStore(cmd.Context(), destCfg)
			if err != nil {
				return err
			}
			defer func() { _ = dest.Close() }()

			hid := resolveHousehold(cmd, c)
			uc := c.MigrateStoreUseCase(dest)
			out, err := uc.Execute(cmd.Context(), usecase.MigrateStoreInput{
				HouseholdID: hid,
				SkipHistory: opts.SkipHistory,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Total == 0 {
				_, _ = fmt.Fprintf(w, "No tasks found for household %s\n", hid)
				return nil
			}

			summary := fmt.Sprintf("Migrated %d task(s) from %s store to %s store", out.Migrated, c.AppConfig.Store.Type, to)
			if out.Skipped > 0 {
				summary += fmt.Sprintf(" (skipped %d existing)", out.Skipped)
			}
			_, _ = fmt.Fprintln(w, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "Destination store type: json, git, sqlite, postgres, mongo")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Destination path for json, git and sqlite (default: inside the data directory)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "Destination connection string for postgres and mongo")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Destination Mongo database")
	cmd.Flags().StringVar(&opts.Namespace, "namespace", "", "Destination git ref namespace")
	cmd.Flags().BoolVar(&opts.SkipHistory, "skip-history", false, "Migrate live tasks only")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// isSameStore reports whether two file-backed store configs resolve to the same location.
func isSameStore(a, b domain.StoreConfig, dataDir string) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case domain.StorePostgres, domain.StoreMongo:
		return a.DSN == b.DSN && a.Database == b.Database
	}
	pathA, pathB := a.Path, b.Path
	if pathA == "" {
		pathA = domain.DefaultStorePath(dataDir, a.Type)
	}
	if pathB == "" {
		pathB = domain.DefaultStorePath(dataDir, b.Type)
	}
	return pathA == pathB
}
