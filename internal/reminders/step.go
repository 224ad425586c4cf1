package reminders

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/models"
)

// Step describes the reminder configuration step for one reminder type.
type Step struct {
	Type          models.ReminderType
	Title         string
	Detail        string
	DefaultTime   string
	DefaultDay    models.Weekday
	HideDayOfWeek bool
	// AlwaysShow is set when the participant opened the step from settings.
	AlwaysShow bool
	// ShouldSkip is true when the step was already answered and is not forced.
	ShouldSkip bool
}

// Weekly reports whether the step asks for a weekday.
func (s Step) Weekly() bool {
	return !s.HideDayOfWeek
}

// NewStep builds the step for t on day. The weekday question is hidden for
// always-daily types and during week 1.
func NewStep(t models.ReminderType, day int, alwaysShow, hasBeenScheduled bool) Step {
	daily := t.Activity().MustSpec().Policy == models.PeriodAlwaysDaily || clock.IsFirstWeek(day)

	activity := strings.ToLower(t.Activity().MustSpec().Title)
	step := Step{
		Type:          t,
		DefaultTime:   t.DefaultTime(),
		DefaultDay:    t.DefaultDay(),
		HideDayOfWeek: daily,
		AlwaysShow:    alwaysShow,
		ShouldSkip:    !alwaysShow && hasBeenScheduled,
	}
	if daily {
		step.Title = fmt.Sprintf("When would you like to do your %s each day?", activity)
		step.Detail = "Set a reminder"
	} else {
		step.Title = fmt.Sprintf("When would you like to do your %s each week?", activity)
		step.Detail = "Set a weekly reminder"
	}
	return step
}

// Step builds the reminder step for t using the persisted scheduling state.
func (m *Manager) Step(ctx context.Context, t models.ReminderType, day int, alwaysShow bool) (Step, error) {
	scheduled, err := m.HasBeenScheduled(ctx, t)
	if err != nil {
		return Step{}, err
	}
	return NewStep(t, day, alwaysShow, scheduled), nil
}
