// Package completion records whether each activity category has been done
// for its current period: a study day, or a study week once the category
// switches to weekly tracking after week 1.
package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/rotation"
	"github.com/julianstephens/studyclock/internal/storage"
)

// PeriodKey is the storage key of category's completion flag on day.
// Always-daily categories and every category in week 1 use "<Prefix>Day<day>";
// the rest use "<Prefix>Week<week>" so a whole week shares one flag.
func PeriodKey(category models.Category, day int) (string, error) {
	spec, ok := category.Spec()
	if !ok {
		return "", fmt.Errorf("unknown category %q", category)
	}
	if day < 1 {
		day = 1
	}
	if spec.Policy == models.PeriodAlwaysDaily || clock.IsFirstWeek(day) {
		return fmt.Sprintf("%s%s%d", spec.KeyPrefix, constants.PeriodMarkerDay, day), nil
	}
	return fmt.Sprintf("%s%s%d", spec.KeyPrefix, constants.PeriodMarkerWeek, clock.WeekOfStudy(day)), nil
}

// Tracker reads and writes completion flags in a key-value store.
type Tracker struct {
	kv storage.KV
}

func NewTracker(kv storage.KV) *Tracker {
	return &Tracker{kv: kv}
}

// IsComplete reports whether category is done for day's period. A missing flag is false.
func (t *Tracker) IsComplete(ctx context.Context, category models.Category, day int) (bool, error) {
	key, err := PeriodKey(category, day)
	if err != nil {
		return false, err
	}
	done, _, err := storage.GetBool(ctx, t.kv, key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	return done, nil
}

// MarkComplete sets the flag for day's period. Repeating the call changes nothing.
func (t *Tracker) MarkComplete(ctx context.Context, category models.Category, day int) error {
	key, err := PeriodKey(category, day)
	if err != nil {
		return err
	}
	if err := storage.SetBool(ctx, t.kv, key, true); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// AllComplete reports whether every listed category is done for day.
// An empty list is complete.
func (t *Tracker) AllComplete(ctx context.Context, day int, categories []models.Category) (bool, error) {
	for _, c := range categories {
		done, err := t.IsComplete(ctx, c, day)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
	}
	return true, nil
}

// EndOfStudyKey is the one-shot flag for an end-of-study challenge task.
func EndOfStudyKey(task string) string {
	return constants.SettingEndOfStudyPrefix + strings.NewReplacer(" ", "", "-", "").Replace(task)
}

func validEndOfStudyTask(task string) error {
	for _, t := range rotation.EndOfStudyTasks() {
		if t == task {
			return nil
		}
	}
	return fmt.Errorf("unknown end-of-study task %q", task)
}

func (t *Tracker) IsEndOfStudyComplete(ctx context.Context, task string) (bool, error) {
	if err := validEndOfStudyTask(task); err != nil {
		return false, err
	}
	done, _, err := storage.GetBool(ctx, t.kv, EndOfStudyKey(task))
	return done, err
}

func (t *Tracker) CompleteEndOfStudy(ctx context.Context, task string) error {
	if err := validEndOfStudyTask(task); err != nil {
		return err
	}
	return storage.SetBool(ctx, t.kv, EndOfStudyKey(task), true)
}

// EndOfStudyAllComplete reports whether every challenge task has been done.
func (t *Tracker) EndOfStudyAllComplete(ctx context.Context) (bool, error) {
	for _, task := range rotation.EndOfStudyTasks() {
		done, err := t.IsEndOfStudyComplete(ctx, task)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
	}
	return true, nil
}
