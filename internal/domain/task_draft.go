package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaskDraft represents a task to be created from file input.
// Due and Repeat are kept as text; the importer resolves them.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	Title      string
	Details    string
	Due        string
	Repeat     string
	Priority   string
	AssignedTo string
}

// DateParser turns user-supplied date text into an instant in loc.
type DateParser func(s string, loc *time.Location) (time.Time, error)

// frontmatterKeys are the keys recognized in a task block.
var frontmatterKeys = []string{"title", "due", "repeat", "priority", "assigned"}

// ParseTaskDrafts parses a markdown file containing one or more task definitions.
// Tasks are separated by frontmatter blocks starting with "---".
//
// Format:
//
//	---
//	title: Water the plants
//	due: 2024-06-01
//	repeat: every 3 days
//	priority: low
//	assigned: sam
//	---
//	The ferns need more than the cacti.
//
//	---
//	title: Take out recycling
//	due: 2024-06-04
//	repeat: weekly
//	---
func ParseTaskDrafts(content string) ([]TaskDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	// Split content by task blocks
	blocks := splitTaskBlocks(content)
	if len(blocks) == 0 {
		return nil, ErrNoTasksInFile
	}

	drafts := make([]TaskDraft, 0, len(blocks))
	for i, block := range blocks {
		draft, err := parseTaskBlock(block)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// splitTaskBlocks splits content into separate task blocks.
// Each block starts with "---" on a new line.
func splitTaskBlocks(content string) []string {
	var blocks []string
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	started := false
	var current []string

	for i, line := range lines {
		switch {
		case line != "---":
			if started {
				current = append(current, line)
			}
		case !started:
			// Start of first block
			started = true
			current = []string{}
		case len(current) == 0:
			// Empty frontmatter
			current = append(current, line)
		case i+1 < len(lines) && isFrontmatterKey(lines[i+1]) && hasClosedFrontmatter(current):
			// A new block begins
			blocks = append(blocks, strings.Join(current, "\n"))
			current = []string{}
		default:
			// Closing "---" of frontmatter, or a separator within details
			current = append(current, line)
		}
	}

	// Add last block
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}

	return blocks
}

func hasClosedFrontmatter(lines []string) bool {
	for _, l := range lines {
		if l == "---" {
			return true
		}
	}
	return false
}

// isFrontmatterKey checks if a line looks like a frontmatter key.
func isFrontmatterKey(line string) bool {
	for _, key := range frontmatterKeys {
		if strings.HasPrefix(line, key+":") {
			return true
		}
	}
	return false
}

// parseTaskBlock parses a single task block.
func parseTaskBlock(block string) (TaskDraft, error) {
	lines := strings.Split(block, "\n")

	var draft TaskDraft
	frontmatterEnd := -1

	for i, line := range lines {
		if line == "---" {
			frontmatterEnd = i
			break
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "title":
			draft.Title = value
		case "due":
			draft.Due = value
		case "repeat":
			draft.Repeat = value
		case "priority":
			draft.Priority = value
		case "assigned":
			draft.AssignedTo = value
		}
	}

	if draft.Title == "" {
		return TaskDraft{}, ErrEmptyTitle
	}
	if draft.Due == "" {
		return TaskDraft{}, fmt.Errorf("missing due: %w", ErrInvalidDate)
	}

	// Details are everything after the closing "---"
	if frontmatterEnd >= 0 && frontmatterEnd+1 < len(lines) {
		draft.Details = strings.TrimSpace(strings.Join(lines[frontmatterEnd+1:], "\n"))
	}

	return draft, nil
}

// ParseRepeat parses a recurrence rule.
// Accepted forms: "once", "daily", "weekly", "monthly", "every N days|weeks|months".
// "once" and "" yield nil.
func ParseRepeat(s string) (*Repeat, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == string(FrequencyOnce) {
		return nil, nil
	}
	if f, err := ParseFrequency(v); err == nil {
		return &Repeat{Frequency: f, Interval: 1}, nil
	}

	fields := strings.Fields(v)
	if len(fields) != 3 || fields[0] != "every" {
		return nil, fmt.Errorf("%q: %w", s, ErrInvalidFrequency)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%q: %w", s, ErrInvalidInterval)
	}
	units := map[string]Frequency{
		"day": FrequencyDaily, "days": FrequencyDaily,
		"week": FrequencyWeekly, "weeks": FrequencyWeekly,
		"month": FrequencyMonthly, "months": FrequencyMonthly,
	}
	f, ok := units[fields[2]]
	if !ok {
		return nil, fmt.Errorf("%q: %w", s, ErrInvalidFrequency)
	}
	return &Repeat{Frequency: f, Interval: n}, nil
}

// ToTask resolves the draft into a task for householdID.
func (d TaskDraft) ToTask(householdID string, now time.Time, parseDate DateParser) (*Task, error) {
	due, err := parseDate(d.Due, now.Location())
	if err != nil {
		return nil, fmt.Errorf("due %q: %w", d.Due, ErrInvalidDate)
	}
	repeat, err := ParseRepeat(d.Repeat)
	if err != nil {
		return nil, err
	}
	priority, err := ParsePriority(d.Priority)
	if err != nil {
		return nil, err
	}
	t := &Task{
		HouseholdID: householdID,
		Title:       d.Title,
		AssignedTo:  d.AssignedTo,
		Priority:    priority,
		Details:     d.Details,
		Repeat:      repeat,
		CreatedAt:   now,
		DueDate:     due,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
