// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/infra/config"
	"github.com/runoshun/chores/internal/infra/logging"
	"github.com/runoshun/chores/internal/infra/reminder"
	"github.com/runoshun/chores/internal/infra/timeconv"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/runoshun/chores/internal/usecase/shared"
)

// Config holds the application paths.
type Config struct {
	DataDir    string // Data directory (config.toml, stores, logs)
	OutboxPath string // Path to reminders.yaml
}

// newConfig derives the paths below dataDir.
func newConfig(dataDir string) Config {
	return Config{
		DataDir:    dataDir,
		OutboxPath: domain.ReminderOutboxPath(dataDir),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
// The task store is opened lazily by OpenStore so that commands which never
// touch tasks do not need a reachable backend.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks            domain.TaskRepository
	StoreInitializer domain.StoreInitializer
	Clock            domain.Clock
	Notifier         domain.Notifier
	ReminderQueue    domain.ReminderQueue
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager
	TaskLogger       domain.Logger

	// Pointer fields
	Logger    *slog.Logger
	AppConfig *domain.Config
	Location  *time.Location
	store     *Store
	closers   []func() error

	// Configuration
	Config Config
}

// New creates a new Container rooted at dataDir.
// Configuration is loaded eagerly; the task store is not opened.
func New(dataDir string) (*Container, error) {
	cfg := newConfig(dataDir)

	configLoader := config.NewLoader(cfg.DataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}

	loc, err := appConfig.Household.Location()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	taskLogger := logging.New(cfg.DataDir, logging.ParseLevel(appConfig.Log.Level), logging.WithMirror(logger))

	outbox := reminder.NewOutbox(cfg.OutboxPath)

	return &Container{
		Clock:         domain.RealClock{Location: loc},
		Notifier:      outbox,
		ReminderQueue: outbox,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(cfg.DataDir),
		TaskLogger:    taskLogger,
		Logger:        logger,
		AppConfig:     appConfig,
		Location:      loc,
		closers:       []func() error{taskLogger.Close},
		Config:        cfg,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, tasks domain.TaskRepository, storeInit domain.StoreInitializer, clock domain.Clock, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Container{
		Tasks:            tasks,
		StoreInitializer: storeInit,
		Clock:            clock,
		TaskLogger:       domain.NopLogger{},
		Logger:           logger,
		AppConfig:        domain.NewDefaultConfig(),
		Location:         time.Local,
		Config:           cfg,
	}
}

// OpenStore opens the configured backend if no task repository is bound yet.
func (c *Container) OpenStore(ctx context.Context) error {
	if c.Tasks != nil {
		return nil
	}
	s, err := OpenStore(ctx, c.AppConfig.Store, c.Config.DataDir, c.Location)
	if err != nil {
		return err
	}
	c.store = s
	c.Tasks = s.Tasks
	c.StoreInitializer = s.Init
	return nil
}

// OpenOtherStore opens an additional backend, e.g. the target of a migration.
// The caller owns the returned store and must close it.
func (c *Container) OpenOtherStore(ctx context.Context, cfg domain.StoreConfig) (*Store, error) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = c.AppConfig.Store.MaxAttempts
	}
	if cfg.Namespace == "" {
		cfg.Namespace = c.AppConfig.Store.Namespace
	}
	if cfg.Database == "" {
		cfg.Database = c.AppConfig.Store.Database
	}
	return OpenStore(ctx, cfg, c.Config.DataDir, c.Location)
}

// Close releases the store and log files.
func (c *Container) Close() error {
	var errs []error
	if err := c.store.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultHousehold returns the configured household ID.
func (c *Container) DefaultHousehold() string {
	return c.AppConfig.Household.Default
}

func (c *Container) reminders() *shared.Reminders {
	return shared.NewReminders(c.Notifier, c.TaskLogger, c.Clock, c.AppConfig.Reminder)
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.StoreInitializer)
}

// SpawnNextUseCase returns a new SpawnNext use case.
func (c *Container) SpawnNextUseCase() *usecase.SpawnNext {
	return usecase.NewSpawnNext(c.Tasks, c.Clock, c.TaskLogger)
}

// ToggleCompleteUseCase returns a new ToggleComplete use case.
func (c *Container) ToggleCompleteUseCase() *usecase.ToggleComplete {
	return usecase.NewToggleComplete(c.Tasks, c.SpawnNextUseCase(), c.reminders(), c.TaskLogger)
}

// SweepOverdueUseCase returns a new SweepOverdue use case.
func (c *Container) SweepOverdueUseCase() *usecase.SweepOverdue {
	return usecase.NewSweepOverdue(c.Tasks, c.SpawnNextUseCase(), c.reminders(), c.Clock, c.TaskLogger)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Tasks, c.reminders(), c.Clock, c.TaskLogger)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Tasks, c.reminders(), c.TaskLogger)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Tasks, c.Clock)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks, c.Clock)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Tasks, c.reminders(), c.TaskLogger)
}

// CopyTaskUseCase returns a new CopyTask use case.
func (c *Container) CopyTaskUseCase() *usecase.CopyTask {
	return usecase.NewCopyTask(c.Tasks, c.reminders(), c.Clock, c.TaskLogger)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.Tasks, c.reminders(), c.Clock, c.TaskLogger, timeconv.ParseString)
}

// ArchiveCompletedUseCase returns a new ArchiveCompleted use case.
func (c *Container) ArchiveCompletedUseCase() *usecase.ArchiveCompleted {
	return usecase.NewArchiveCompleted(c.Tasks, c.reminders(), c.Clock, c.TaskLogger)
}

// ListHistoryUseCase returns a new ListHistory use case.
func (c *Container) ListHistoryUseCase() *usecase.ListHistory {
	return usecase.NewListHistory(c.Tasks)
}

// MigrateStoreUseCase returns a new MigrateStore use case copying from the
// bound store into dest.
func (c *Container) MigrateStoreUseCase(dest *Store) *usecase.MigrateStore {
	return usecase.NewMigrateStore(c.Tasks, dest.Tasks, dest.Init)
}

// ListRemindersUseCase returns a new ListReminders use case.
func (c *Container) ListRemindersUseCase() *usecase.ListReminders {
	return usecase.NewListReminders(c.ReminderQueue, c.Clock)
}

// AckReminderUseCase returns a new AckReminder use case.
func (c *Container) AckReminderUseCase() *usecase.AckReminder {
	return usecase.NewAckReminder(c.Notifier)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.AppConfig)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Config.DataDir)
}
