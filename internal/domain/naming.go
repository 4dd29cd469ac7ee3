package domain

import (
	"path/filepath"
	"strings"
)

// Directory and file names.
const (
	DataDirName       = "chores"
	ConfigFileName    = "config.toml"
	EnvFileName       = ".env"
	JSONStoreFileName = "tasks.json"
	SQLiteFileName    = "chores.db"
	GitStoreDirName   = "repo"
	ReminderFileName  = "reminders.yaml"
)

// DataDir returns the data directory under the given XDG data home.
func DataDir(dataHome string) string {
	return filepath.Join(dataHome, DataDirName)
}

// GlobalConfigDir returns the global config directory under the given XDG config home.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, DataDirName)
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "chores.log")
}

// HouseholdLogPath returns the path to a household's log file.
func HouseholdLogPath(dataDir, householdID string) string {
	return filepath.Join(dataDir, "logs", "household-"+sanitizeName(householdID)+".log")
}

// DefaultStorePath returns the default path of a file-backed store.
func DefaultStorePath(dataDir, storeType string) string {
	switch storeType {
	case StoreSQLite:
		return filepath.Join(dataDir, SQLiteFileName)
	case StoreGit:
		return filepath.Join(dataDir, GitStoreDirName)
	default:
		return filepath.Join(dataDir, JSONStoreFileName)
	}
}

// ReminderOutboxPath returns the path to the reminder outbox file.
func ReminderOutboxPath(dataDir string) string {
	return filepath.Join(dataDir, ReminderFileName)
}

// sanitizeName keeps household IDs safe for use in file names.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
