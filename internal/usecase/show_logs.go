package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/chores/internal/domain"
)

// ShowLogsInput contains the parameters for showing logs.
type ShowLogsInput struct {
	HouseholdID string // Household whose log to show (empty = global log)
	Lines       int    // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the result of showing logs.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Log file content
}

// ShowLogs is the use case for viewing the activity log.
type ShowLogs struct {
	dataDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(dataDir string) *ShowLogs {
	return &ShowLogs{dataDir: dataDir}
}

// Execute reads and returns the log content.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.GlobalLogPath(uc.dataDir)
	if in.HouseholdID != "" {
		logPath = domain.HouseholdLogPath(uc.dataDir, in.HouseholdID)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", logPath, domain.ErrNoLogs)
		}
		return nil, fmt.Errorf("read log file: %w", err)
	}

	// If lines is specified, get only the last N lines
	result := string(content)
	if in.Lines > 0 {
		lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
		if len(lines) > in.Lines {
			lines = lines[len(lines)-in.Lines:]
		}
		result = strings.Join(lines, "\n") + "\n"
	}

	return &ShowLogsOutput{
		LogPath: logPath,
		Content: result,
	}, nil
}
