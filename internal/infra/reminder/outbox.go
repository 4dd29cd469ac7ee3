// Package reminder implements domain.Notifier as a YAML outbox file.
//
// The outbox only records what should be delivered and when. A separate push
// collaborator reads due entries with Due and acknowledges them with Cancel.
package reminder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/chores/internal/domain"
)

// outboxData represents the YAML file structure.
type outboxData struct {
	Reminders []domain.Reminder `yaml:"reminders"`
}

// Outbox stores pending reminders in a flock-guarded YAML file.
type Outbox struct {
	path     string
	lockPath string
}

// NewOutbox creates an Outbox at path. The file is created on first write.
func NewOutbox(path string) *Outbox {
	return &Outbox{path: path, lockPath: path + ".lock"}
}

// Ensure Outbox implements domain.Notifier.
var _ domain.Notifier = (*Outbox)(nil)

// Schedule registers or replaces the reminder for r.TaskID.
func (o *Outbox) Schedule(ctx context.Context, r domain.Reminder) error {
	return o.update(ctx, func(data *outboxData) {
		data.Reminders = slices.DeleteFunc(data.Reminders, func(p domain.Reminder) bool {
			return p.HouseholdID == r.HouseholdID && p.TaskID == r.TaskID
		})
		data.Reminders = append(data.Reminders, r)
	})
}

// Cancel drops any pending reminder for the task.
func (o *Outbox) Cancel(ctx context.Context, householdID, taskID string) error {
	return o.update(ctx, func(data *outboxData) {
		data.Reminders = slices.DeleteFunc(data.Reminders, func(p domain.Reminder) bool {
			return p.HouseholdID == householdID && p.TaskID == taskID
		})
	})
}

// Pending returns the reminders of a household ordered by firing time.
// An empty householdID returns every household's reminders.
func (o *Outbox) Pending(ctx context.Context, householdID string) ([]domain.Reminder, error) {
	var out []domain.Reminder
	err := o.view(ctx, func(data *outboxData) {
		for _, r := range data.Reminders {
			if householdID == "" || r.HouseholdID == householdID {
				out = append(out, r)
			}
		}
	})
	sortReminders(out)
	return out, err
}

// Due returns reminders whose time is at or before now.
func (o *Outbox) Due(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	var out []domain.Reminder
	err := o.view(ctx, func(data *outboxData) {
		for _, r := range data.Reminders {
			if !r.At.After(now) {
				out = append(out, r)
			}
		}
	})
	sortReminders(out)
	return out, err
}

func sortReminders(rs []domain.Reminder) {
	slices.SortFunc(rs, func(a, b domain.Reminder) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return strings.Compare(a.TaskID, b.TaskID)
	})
}

func (o *Outbox) view(ctx context.Context, fn func(*outboxData)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock, err := o.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	data, err := o.read()
	if err != nil {
		return err
	}
	fn(data)
	return nil
}

func (o *Outbox) update(ctx context.Context, fn func(*outboxData)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock, err := o.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	data, err := o.read()
	if err != nil {
		return err
	}
	fn(data)
	return o.write(data)
}

func (o *Outbox) acquireLock(lockType int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(o.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create outbox directory: %w", err)
	}
	lock, err := os.OpenFile(o.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open outbox lock: %w", err)
	}
	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire outbox lock: %w", err)
	}
	return lock, nil
}

func releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (o *Outbox) read() (*outboxData, error) {
	content, err := os.ReadFile(o.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &outboxData{}, nil
		}
		return nil, fmt.Errorf("read outbox: %w", err)
	}
	var data outboxData
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse outbox: %w", err)
	}
	return &data, nil
}

func (o *Outbox) write(data *outboxData) error {
	content, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal outbox: %w", err)
	}
	tmpPath := o.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write outbox: %w", err)
	}
	if err := os.Rename(tmpPath, o.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename outbox: %w", err)
	}
	return nil
}
