package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/spf13/cobra"
)

// newImportCommand creates the import command for creating tasks from a file.
func newImportCommand(c *app.Container) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from a Markdown file",
		Long: `Create several tasks from a Markdown file with frontmatter blocks.
Use "-" to read from standard input.

Every task in the file is validated before any is created.

File format:
  ---
  title: Water plants
  due: 2024-03-04
  repeat: every 3 days
  priority: low
  assigned: sam
  ---
  Optional notes for the task.

  ---
  title: Change bed sheets
  due: 2024-03-09
  repeat: weekly
  ---

Examples:
  chores import chores.md
  chores import chores.md --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			uc := c.ImportTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ImportTasksInput{
				HouseholdID: resolveHousehold(cmd, c),
				Content:     string(content),
				DryRun:      dryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if dryRun {
				_, _ = fmt.Fprintln(w, "Dry run - tasks that would be created:")
				_, _ = fmt.Fprintln(w)
			}
			for i, task := range out.Tasks {
				if dryRun {
					_, _ = fmt.Fprintf(w, "Task %d:\n", i+1)
				} else {
					_, _ = fmt.Fprintf(w, "Created task %s:\n", task.ID)
				}
				_, _ = fmt.Fprintf(w, "  Title: %s\n", task.Title)
				_, _ = fmt.Fprintf(w, "  Due: %s\n", formatDate(task.DueDate))
				_, _ = fmt.Fprintf(w, "  Repeat: %s\n", task.Repeat.String())
				if task.AssignedTo != "" {
					_, _ = fmt.Fprintf(w, "  Assigned: %s\n", task.AssignedTo)
				}
				if i < len(out.Tasks)-1 {
					_, _ = fmt.Fprintln(w)
				}
			}
			if !dryRun {
				_, _ = fmt.Fprintf(w, "\nCreated %d task(s)\n", len(out.Tasks))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and preview without creating tasks")

	return cmd
}
