package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/chores/internal/domain"
)

// Colors defines the color palette for terminal output.
var Colors = struct {
	Muted    lipgloss.Color
	Overdue  lipgloss.Color
	Today    lipgloss.Color
	ThisWeek lipgloss.Color
	Upcoming lipgloss.Color
	Done     lipgloss.Color
	High     lipgloss.Color
	Medium   lipgloss.Color
	Low      lipgloss.Color
}{
	Muted:    lipgloss.Color("#636E72"), // Gray
	Overdue:  lipgloss.Color("#D63031"), // Red
	Today:    lipgloss.Color("#FDCB6E"), // Yellow
	ThisWeek: lipgloss.Color("#74B9FF"), // Light blue
	Upcoming: lipgloss.Color("#A29BFE"), // Lavender
	Done:     lipgloss.Color("#00B894"), // Green
	High:     lipgloss.Color("#D63031"),
	Medium:   lipgloss.Color("#FDCB6E"),
	Low:      lipgloss.Color("#74B9FF"),
}

// Styles contains the lipgloss styles used by list and show output.
type Styles struct {
	GroupHeader map[domain.Group]lipgloss.Style
	Priority    map[domain.Priority]lipgloss.Style
	Overdue     lipgloss.Style
	Done        lipgloss.Style
	Muted       lipgloss.Style
	Title       lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	header := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(c)
	}
	return Styles{
		GroupHeader: map[domain.Group]lipgloss.Style{
			domain.GroupOverdue:  header(Colors.Overdue),
			domain.GroupToday:    header(Colors.Today),
			domain.GroupThisWeek: header(Colors.ThisWeek),
			domain.GroupUpcoming: header(Colors.Upcoming),
		},
		Priority: map[domain.Priority]lipgloss.Style{
			domain.PriorityHigh:   lipgloss.NewStyle().Foreground(Colors.High),
			domain.PriorityMedium: lipgloss.NewStyle().Foreground(Colors.Medium),
			domain.PriorityLow:    lipgloss.NewStyle().Foreground(Colors.Low),
		},
		Overdue: lipgloss.NewStyle().Bold(true).Foreground(Colors.Overdue),
		Done:    lipgloss.NewStyle().Foreground(Colors.Done),
		Muted:   lipgloss.NewStyle().Foreground(Colors.Muted),
		Title:   lipgloss.NewStyle().Bold(true),
	}
}

// header renders a group title.
func (s Styles) header(g domain.Group) string {
	st, ok := s.GroupHeader[g]
	if !ok {
		st = s.Title
	}
	return st.Render(g.Display())
}

// priority renders a priority label, or "-" for none.
func (s Styles) priority(p domain.Priority) string {
	if p == domain.PriorityNone {
		return s.Muted.Render("-")
	}
	st, ok := s.Priority[p]
	if !ok {
		return string(p)
	}
	return st.Render(string(p))
}

// checkbox renders the completion marker.
func (s Styles) checkbox(completed bool) string {
	if completed {
		return s.Done.Render("[x]")
	}
	return "[ ]"
}
