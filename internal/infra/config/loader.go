// Package config provides configuration loading functionality.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/chores/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files and the environment.
type Loader struct {
	dataDir       string // Path to the chores data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/chores)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// DefaultDataDir returns the data directory: $CHORES_DATA_DIR, or
// $XDG_DATA_HOME/chores, or ~/.local/share/chores.
func DefaultDataDir() string {
	if dir := os.Getenv("CHORES_DATA_DIR"); dir != "" {
		return dir
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return domain.DataDirName
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return domain.DataDir(dataHome)
}

// Load returns the merged configuration.
// Precedence, lowest first: defaults, global file, data directory file, environment.
// A .env file in the data directory is loaded first; it never overrides variables
// that are already set.
func (l *Loader) Load() (*domain.Config, error) {
	if err := loadDotEnv(filepath.Join(l.dataDir, domain.EnvFileName)); err != nil {
		return nil, err
	}

	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	data, err := l.LoadData()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- data (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if data != nil {
		base = mergeConfigs(base, data)
	}

	if err := applyEnv(base); err != nil {
		return nil, err
	}
	if err := validate(base); err != nil {
		return nil, err
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadData returns only the data directory configuration.
func (l *Loader) LoadData() (*domain.Config, error) {
	return l.loadFile(filepath.Join(l.dataDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
// Unknown sections and keys are reported as warnings, not errors.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg domain.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Warnings = unknownKeyWarnings(data)
	return &cfg, nil
}

// unknownKeyWarnings decodes data strictly and turns every unmatched key into a warning.
func unknownKeyWarnings(data []byte) []string {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var probe domain.Config
	err := dec.Decode(&probe)
	var strict *toml.StrictMissingError
	if !errors.As(err, &strict) {
		return nil
	}

	warnings := make([]string, 0, len(strict.Errors))
	for i := range strict.Errors {
		key := strict.Errors[i].Key()
		switch len(key) {
		case 0:
			continue
		case 1:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", key[0]))
		default:
			section := strings.Join(key[:len(key)-1], ".")
			warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", section, key[len(key)-1]))
		}
	}
	sort.Strings(warnings)
	return warnings
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), override.Warnings...)

	overrideString(&result.Store.Type, override.Store.Type)
	overrideString(&result.Store.Path, override.Store.Path)
	overrideString(&result.Store.DSN, override.Store.DSN)
	overrideString(&result.Store.Database, override.Store.Database)
	overrideString(&result.Store.Namespace, override.Store.Namespace)
	if override.Store.MaxAttempts != 0 {
		result.Store.MaxAttempts = override.Store.MaxAttempts
	}

	overrideString(&result.Household.Default, override.Household.Default)
	overrideString(&result.Household.Timezone, override.Household.Timezone)

	if override.Reminder.Enabled != nil {
		enabled := *override.Reminder.Enabled
		result.Reminder.Enabled = &enabled
	}
	if override.Reminder.Hour != 0 {
		result.Reminder.Hour = override.Reminder.Hour
	}

	overrideString(&result.Log.Level, override.Log.Level)
	return &result
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// validate normalizes and checks the merged configuration.
func validate(cfg *domain.Config) error {
	cfg.Store.Type = strings.ToLower(cfg.Store.Type)
	if !domain.IsValidStoreType(cfg.Store.Type) {
		return fmt.Errorf("%q: %w", cfg.Store.Type, domain.ErrUnknownStore)
	}
	if cfg.Store.MaxAttempts < 1 {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("store.max_attempts %d is invalid, using %d", cfg.Store.MaxAttempts, domain.DefaultMaxAttempts))
		cfg.Store.MaxAttempts = domain.DefaultMaxAttempts
	}
	if cfg.Reminder.Hour < 0 || cfg.Reminder.Hour > 23 {
		return fmt.Errorf("reminder.hour %d out of range 0-23", cfg.Reminder.Hour)
	}
	if _, err := cfg.Household.Location(); err != nil {
		return err
	}
	return nil
}

// loadDotEnv loads variables from path if the file exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // Missing .env is normal
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
