package survey

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/reminders"
)

// ReminderFormModel holds the values bound to a reminder form.
type ReminderFormModel struct {
	Remind bool
	Time   string
	Day    int
}

// NewReminderFormModel pre-fills the step defaults.
func NewReminderFormModel(step reminders.Step) *ReminderFormModel {
	return &ReminderFormModel{
		Remind: true,
		Time:   step.DefaultTime,
		Day:    int(step.DefaultDay),
	}
}

// Result converts the answered form into survey answers keyed for step's type.
func (fm *ReminderFormModel) Result(step reminders.Step) *Result {
	t := step.Type
	res := NewResult(string(t) + "Reminder").Set(t.DoNotRemindKey(), !fm.Remind)
	if !fm.Remind {
		return res
	}
	res.Set(t.TimeKey(), fm.Time)
	if step.Weekly() && models.Weekday(fm.Day).Valid() {
		res.Set(t.DayKey(), fm.Day)
	}
	return res
}

func weekdayOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, 7)
	for d := models.Sunday; d <= models.Saturday; d++ {
		opts = append(opts, huh.NewOption(d.String(), int(d)))
	}
	return opts
}

// NewReminderForm builds the reminder step form.
func NewReminderForm(step reminders.Step, fm *ReminderFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(step.Title).
				Description(step.Detail).
				Affirmative("Set reminder").
				Negative("No reminders, please").
				Value(&fm.Remind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Time").
				Description("e.g. 6:30 PM").
				Value(&fm.Time).
				Validate(func(s string) error {
					if _, _, err := reminders.ParseTime(s); err != nil {
						return fmt.Errorf("use a time like 6:30 PM")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return !fm.Remind }),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Day of week").
				Options(weekdayOptions()...).
				Value(&fm.Day),
		).WithHideFunc(func() bool { return !fm.Remind || step.HideDayOfWeek }),
	).WithTheme(huh.ThemeDracula())
}

// RunReminderForm shows the reminder step in the terminal and returns the answers.
func RunReminderForm(step reminders.Step) (*Result, error) {
	fm := NewReminderFormModel(step)
	if err := NewReminderForm(step, fm).Run(); err != nil {
		return nil, err
	}
	return fm.Result(step), nil
}
