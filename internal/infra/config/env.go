package config

import (
	"fmt"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/runoshun/chores/internal/domain"
)

// envOverlay lists the environment variables that override file settings.
// Numeric and boolean values are kept as strings so that an explicit "0" or
// "false" can be told apart from an unset variable.
type envOverlay struct {
	StoreType        string `env:"CHORES_STORE_TYPE" env-description:"Store backend: json, git, sqlite, postgres, mongo"`
	StorePath        string `env:"CHORES_STORE_PATH" env-description:"Store file or repository path"`
	StoreDSN         string `env:"CHORES_STORE_DSN" env-description:"Connection string for postgres or mongo"`
	StoreDatabase    string `env:"CHORES_STORE_DATABASE" env-description:"Mongo database name"`
	StoreNamespace   string `env:"CHORES_STORE_NAMESPACE" env-description:"Git ref namespace"`
	StoreMaxAttempts string `env:"CHORES_STORE_MAX_ATTEMPTS" env-description:"Transaction attempts before giving up"`
	Household        string `env:"CHORES_HOUSEHOLD" env-description:"Default household ID"`
	Timezone         string `env:"CHORES_TIMEZONE" env-description:"IANA time zone for calendar days"`
	ReminderEnabled  string `env:"CHORES_REMINDER_ENABLED" env-description:"Enable reminder decisions (true/false)"`
	ReminderHour     string `env:"CHORES_REMINDER_HOUR" env-description:"Local hour reminders fire on the due date"`
	LogLevel         string `env:"CHORES_LOG_LEVEL" env-description:"Log level: debug, info, warn, error"`
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *domain.Config) error {
	var env envOverlay
	if err := cleanenv.ReadEnv(&env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	overrideString(&cfg.Store.Type, env.StoreType)
	overrideString(&cfg.Store.Path, env.StorePath)
	overrideString(&cfg.Store.DSN, env.StoreDSN)
	overrideString(&cfg.Store.Database, env.StoreDatabase)
	overrideString(&cfg.Store.Namespace, env.StoreNamespace)
	overrideString(&cfg.Household.Default, env.Household)
	overrideString(&cfg.Household.Timezone, env.Timezone)
	overrideString(&cfg.Log.Level, env.LogLevel)

	if env.StoreMaxAttempts != "" {
		n, err := strconv.Atoi(env.StoreMaxAttempts)
		if err != nil {
			return fmt.Errorf("CHORES_STORE_MAX_ATTEMPTS: %w", err)
		}
		cfg.Store.MaxAttempts = n
	}
	if env.ReminderEnabled != "" {
		b, err := strconv.ParseBool(env.ReminderEnabled)
		if err != nil {
			return fmt.Errorf("CHORES_REMINDER_ENABLED: %w", err)
		}
		cfg.Reminder.Enabled = &b
	}
	if env.ReminderHour != "" {
		n, err := strconv.Atoi(env.ReminderHour)
		if err != nil {
			return fmt.Errorf("CHORES_REMINDER_HOUR: %w", err)
		}
		cfg.Reminder.Hour = n
	}
	return nil
}

// EnvUsage returns a description of the supported environment variables.
func EnvUsage() string {
	text, err := cleanenv.GetDescription(&envOverlay{}, nil)
	if err != nil {
		return ""
	}
	return text
}
