package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/storage"
)

// Registry is the local trigger port. Armed triggers are persisted under
// "trigger.<identifier>" and fired by FireDue, which the notify command runs
// periodically.
type Registry struct {
	kv  storage.KV
	loc *time.Location
	now func() time.Time
}

func NewRegistry(kv storage.KV, loc *time.Location) *Registry {
	if loc == nil {
		loc = time.Local
	}
	return &Registry{kv: kv, loc: loc, now: time.Now}
}

func key(identifier string) string {
	return constants.TriggerKeyPrefix + identifier
}

// Arm replaces any trigger stored under the same identifier.
func (r *Registry) Arm(ctx context.Context, t models.Trigger) error {
	if t.Identifier == "" {
		return fmt.Errorf("trigger identifier cannot be empty")
	}
	if _, err := Rule(t, r.now()); err != nil {
		return err
	}
	if t.ArmedAt.IsZero() {
		t.ArmedAt = r.now()
	}
	t.LastSent = nil
	if err := storage.SetJSON(ctx, r.kv, key(t.Identifier), t); err != nil {
		return fmt.Errorf("arming %s: %w", t.Identifier, err)
	}
	logger.Debug("Trigger armed", "id", t.Identifier, "schedule", t.FormatSchedule())
	return nil
}

func (r *Registry) Cancel(ctx context.Context, identifier string) error {
	if err := r.kv.Delete(ctx, key(identifier)); err != nil {
		return fmt.Errorf("cancelling %s: %w", identifier, err)
	}
	return nil
}

func (r *Registry) CancelAll(ctx context.Context) error {
	keys, err := r.kv.Keys(ctx, constants.TriggerKeyPrefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := r.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("cancelling %s: %w", k, err)
		}
	}
	return nil
}

// Get returns the armed trigger for identifier, if any.
func (r *Registry) Get(ctx context.Context, identifier string) (models.Trigger, bool, error) {
	var t models.Trigger
	found, err := storage.GetJSON(ctx, r.kv, key(identifier), &t)
	return t, found, err
}

// List returns every armed trigger ordered by identifier.
func (r *Registry) List(ctx context.Context) ([]models.Trigger, error) {
	keys, err := r.kv.Keys(ctx, constants.TriggerKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.Trigger, 0, len(keys))
	for _, k := range keys {
		t, found, err := r.Get(ctx, strings.TrimPrefix(k, constants.TriggerKeyPrefix))
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, t)
		}
	}
	return out, nil
}

// Due returns the triggers whose latest occurrence at or before now lies
// within grace and has not been sent yet. Older occurrences are skipped.
func (r *Registry) Due(ctx context.Context, now time.Time, grace time.Duration) ([]models.Trigger, error) {
	triggers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	now = now.In(r.loc)

	var due []models.Trigger
	for _, t := range triggers {
		rule, err := Rule(t, t.ArmedAt.In(r.loc))
		if err != nil {
			logger.Warn("Skipping invalid trigger", "id", t.Identifier, "error", err)
			continue
		}
		last := rule.Before(now, true)
		if last.IsZero() {
			continue
		}
		if last = skipGap(t, last); last.After(now) || now.Sub(last) > grace {
			continue
		}
		if t.LastSent != nil && !t.LastSent.Before(last) {
			continue
		}
		due = append(due, t)
	}
	return due, nil
}

// MarkSent records that identifier fired at sentAt.
func (r *Registry) MarkSent(ctx context.Context, identifier string, sentAt time.Time) error {
	t, found, err := r.Get(ctx, identifier)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	t.LastSent = &sentAt
	return storage.SetJSON(ctx, r.kv, key(identifier), t)
}

// Sender delivers a reminder text to the participant.
type Sender interface {
	Notify(ctx context.Context, text string) error
}

// FireDue sends every due trigger through sender and marks it sent.
// A failed send leaves the trigger due for the next run within grace.
func (r *Registry) FireDue(ctx context.Context, now time.Time, grace time.Duration, sender Sender) (int, error) {
	due, err := r.Due(ctx, now, grace)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, t := range due {
		if err := sender.Notify(ctx, t.Body); err != nil {
			logger.Warn("Failed to send reminder", "id", t.Identifier, "error", err)
			continue
		}
		if err := r.MarkSent(ctx, t.Identifier, now); err != nil {
			return sent, fmt.Errorf("marking %s sent: %w", t.Identifier, err)
		}
		sent++
	}
	return sent, nil
}
