package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/infra/timeconv"
)

// shortIDLen is the number of ID characters shown in tables.
const shortIDLen = 8

// shortID abbreviates a task ID for table output.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// formatDate renders a due date. Midnight dates print without a time.
func formatDate(t time.Time) string {
	if t.Equal(domain.StartOfDay(t)) {
		return t.Format(timeconv.DateLayout)
	}
	return t.Format("2006-01-02 15:04")
}

// parseDue parses a --due value. Besides the formats timeconv accepts,
// "today" and "tomorrow" are resolved against the container clock.
func parseDue(c *app.Container, s string) (time.Time, error) {
	today := domain.StartOfDay(c.Clock.Now())
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	t, err := timeconv.ParseString(s, c.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date: %w", domain.ErrInvalidDate)
	}
	return t, nil
}

// resolveTaskID maps a full ID or a unique prefix of a live task ID to the full ID.
func resolveTaskID(ctx context.Context, c *app.Container, householdID, arg string) (string, error) {
	arg = strings.TrimPrefix(strings.TrimSpace(arg), "#")
	if arg == "" {
		return "", domain.ErrTaskNotFound
	}

	task, err := c.Tasks.Get(ctx, householdID, arg)
	if err != nil {
		return "", err
	}
	if task != nil {
		return task.ID, nil
	}

	tasks, err := c.Tasks.List(ctx, householdID)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", arg, domain.ErrTaskNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task ID prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}

// printTaskTable writes tasks as an aligned table.
func printTaskTable(w io.Writer, tasks []*domain.Task, now time.Time, styles Styles) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	for _, task := range tasks {
		assigned := "-"
		if task.AssignedTo != "" {
			assigned = task.AssignedTo
		}
		due := formatDate(task.DueDate)
		if !task.Completed && domain.IsOverdue(task, now) {
			due += " " + styles.Overdue.Render("(overdue)")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			styles.checkbox(task.Completed),
			shortID(task.ID),
			styles.priority(task.Priority),
			due,
			task.Repeat.String(),
			assigned,
			task.Title,
		)
	}
}

// printTaskDetails writes a single task.
func printTaskDetails(w io.Writer, task *domain.Task, styles Styles) {
	_, _ = fmt.Fprintf(w, "# %s\n\n", styles.Title.Render(task.Title))

	if task.Details != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", task.Details)
	}

	_, _ = fmt.Fprintf(w, "ID: %s\n", task.ID)
	_, _ = fmt.Fprintf(w, "Household: %s\n", task.HouseholdID)
	_, _ = fmt.Fprintf(w, "Due: %s\n", formatDate(task.DueDate))
	_, _ = fmt.Fprintf(w, "Repeat: %s\n", task.Repeat.String())

	if task.Priority != domain.PriorityNone {
		_, _ = fmt.Fprintf(w, "Priority: %s\n", styles.priority(task.Priority))
	} else {
		_, _ = fmt.Fprintln(w, "Priority: none")
	}

	if task.AssignedTo != "" {
		_, _ = fmt.Fprintf(w, "Assigned: %s\n", task.AssignedTo)
	} else {
		_, _ = fmt.Fprintln(w, "Assigned: anyone")
	}

	_, _ = fmt.Fprintf(w, "Completed: %t\n", task.Completed)
	_, _ = fmt.Fprintf(w, "Created: %s\n", task.CreatedAt.Format(time.RFC3339))
	if task.HasSpawnedNext {
		_, _ = fmt.Fprintln(w, "Next occurrence: created")
	}
}
