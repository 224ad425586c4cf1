// Package reminders turns reminder answers from a completed survey into
// persisted settings and one armed recurring trigger per reminder type.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/notifier"
	"github.com/julianstephens/studyclock/internal/storage"
)

// Answers is a flat, identifier-keyed set of survey answers. Each getter
// reports false when the answer is absent or has the wrong type.
type Answers interface {
	Bool(key string) (bool, bool)
	String(key string) (string, bool)
	Int(key string) (int, bool)
}

// Manager persists reminder settings and keeps the trigger port in sync.
type Manager struct {
	kv    storage.KV
	armer notifier.Armer
	locks map[models.ReminderType]*sync.Mutex
	log   *log.Logger
}

func NewManager(kv storage.KV, armer notifier.Armer) *Manager {
	locks := make(map[models.ReminderType]*sync.Mutex)
	for _, t := range models.ReminderTypes() {
		locks[t] = &sync.Mutex{}
	}
	return &Manager{
		kv:    kv,
		armer: armer,
		locks: locks,
		log:   logger.With("component", "reminders"),
	}
}

// ParseTime reads an "h:mm AM" clock time.
func ParseTime(s string) (hour, minute int, err error) {
	t, err := time.Parse(constants.ReminderTimeFormat, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q (expected e.g. 6:30 PM)", s)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatTime renders hour and minute as "h:mm AM".
func FormatTime(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format(constants.ReminderTimeFormat)
}

// UpdateFromResult applies the reminder answers in result for every type.
// A type without a do-not-remind answer was not configured in this run and
// is left untouched. Malformed answers never fail the update; only storage
// and trigger port errors are returned.
func (m *Manager) UpdateFromResult(ctx context.Context, result Answers) error {
	var errs []error
	for _, t := range models.ReminderTypes() {
		if err := m.update(ctx, t, result); err != nil {
			errs = append(errs, fmt.Errorf("%s reminder: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) update(ctx context.Context, t models.ReminderType, result Answers) error {
	doNotRemind, ok := result.Bool(t.DoNotRemindKey())
	if !ok {
		return nil
	}

	mu := m.locks[t]
	mu.Lock()
	defer mu.Unlock()

	if err := m.armer.Cancel(ctx, t.TriggerIdentifier()); err != nil {
		return fmt.Errorf("cancelling trigger: %w", err)
	}

	if doNotRemind {
		m.log.Info("Reminder turned off", "type", t)
		return storage.SetBool(ctx, m.kv, t.DoNotRemindKey(), true)
	}

	timeAnswer, ok := result.String(t.TimeKey())
	if !ok {
		m.log.Warn("Reminder answer has no time", "type", t)
		return nil
	}
	hour, minute, err := ParseTime(timeAnswer)
	if err != nil {
		m.log.Warn("No reminder armed", "type", t, "error", err)
		return nil
	}

	trigger := models.Trigger{
		Identifier: t.TriggerIdentifier(),
		Hour:       hour,
		Minute:     minute,
		Recurring:  true,
		Body:       NotificationBody(t),
	}

	if day, ok := result.Int(t.DayKey()); ok {
		if wd := models.Weekday(day); wd.Valid() {
			trigger.Weekday = wd
		} else {
			m.log.Warn("Ignoring invalid reminder weekday, using daily", "type", t, "day", day)
		}
	}

	if err := m.save(ctx, t, FormatTime(hour, minute), trigger.Weekday); err != nil {
		return err
	}
	if err := m.armer.Arm(ctx, trigger); err != nil {
		return fmt.Errorf("arming trigger: %w", err)
	}
	m.log.Info("Reminder armed", "type", t, "schedule", trigger.FormatSchedule())
	return nil
}

func (m *Manager) save(ctx context.Context, t models.ReminderType, clock string, day models.Weekday) error {
	if err := storage.SetBool(ctx, m.kv, t.DoNotRemindKey(), false); err != nil {
		return err
	}
	if err := m.kv.Set(ctx, t.TimeKey(), clock); err != nil {
		return err
	}
	if day.Valid() {
		return storage.SetInt(ctx, m.kv, t.DayKey(), int(day))
	}
	return m.kv.Delete(ctx, t.DayKey())
}

// NotificationBody is the text shown when t's trigger fires.
func NotificationBody(t models.ReminderType) string {
	return fmt.Sprintf("Time for your %s", strings.ToLower(t.Activity().MustSpec().Title))
}

// HasBeenScheduled reports whether the participant ever answered t's reminder step.
func (m *Manager) HasBeenScheduled(ctx context.Context, t models.ReminderType) (bool, error) {
	_, found, err := m.kv.Get(ctx, t.DoNotRemindKey())
	return found, err
}

func (m *Manager) DoNotRemind(ctx context.Context, t models.ReminderType) (bool, error) {
	v, _, err := storage.GetBool(ctx, m.kv, t.DoNotRemindKey())
	return v, err
}

// Time returns the saved "h:mm AM" time, or "" when unset.
func (m *Manager) Time(ctx context.Context, t models.ReminderType) (string, error) {
	v, _, err := m.kv.Get(ctx, t.TimeKey())
	return v, err
}

// Day returns the saved weekday, or NoWeekday when unset.
func (m *Manager) Day(ctx context.Context, t models.ReminderType) (models.Weekday, error) {
	v, _, err := storage.GetInt(ctx, m.kv, t.DayKey())
	if err != nil {
		return models.NoWeekday, err
	}
	return models.Weekday(v), nil
}

func (m *Manager) Setting(ctx context.Context, t models.ReminderType) (models.ReminderSetting, error) {
	s := models.ReminderSetting{Type: t}
	var err error
	if s.HasBeenScheduled, err = m.HasBeenScheduled(ctx, t); err != nil {
		return s, err
	}
	if s.DoNotRemind, err = m.DoNotRemind(ctx, t); err != nil {
		return s, err
	}
	if s.Time, err = m.Time(ctx, t); err != nil {
		return s, err
	}
	if s.Day, err = m.Day(ctx, t); err != nil {
		return s, err
	}
	return s, nil
}

// Settings returns the setting of every reminder type.
func (m *Manager) Settings(ctx context.Context) ([]models.ReminderSetting, error) {
	var out []models.ReminderSetting
	for _, t := range models.ReminderTypes() {
		s, err := m.Setting(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// NextFire is the next time t's reminder fires after after. It reports false
// when no reminder is active.
func (m *Manager) NextFire(ctx context.Context, t models.ReminderType, after time.Time) (time.Time, bool, error) {
	s, err := m.Setting(ctx, t)
	if err != nil || !s.Active() {
		return time.Time{}, false, err
	}
	hour, minute, err := ParseTime(s.Time)
	if err != nil {
		return time.Time{}, false, nil
	}
	next, err := notifier.NextFire(models.Trigger{Identifier: t.TriggerIdentifier(), Hour: hour, Minute: minute, Weekday: s.Day}, after)
	if err != nil {
		return time.Time{}, false, err
	}
	return next, true, nil
}

// CancelAll cancels every armed trigger. Settings are kept.
func (m *Manager) CancelAll(ctx context.Context) error {
	for _, t := range models.ReminderTypes() {
		m.locks[t].Lock()
		defer m.locks[t].Unlock()
	}
	return m.armer.CancelAll(ctx)
}
