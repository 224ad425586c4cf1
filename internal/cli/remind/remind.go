package remind

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/reminders"
	"github.com/julianstephens/studyclock/internal/survey"
)

// runForm renders a reminder step; replaced in tests.
var runForm = survey.RunReminderForm

type RemindCmd struct {
	Set   RemindSetCmd   `cmd:"" help:"Set or turn off a reminder."`
	Edit  RemindEditCmd  `cmd:"" help:"Answer the reminder step interactively."`
	List  RemindListCmd  `cmd:"" help:"List reminder settings." default:"1"`
	Apply RemindApplyCmd `cmd:"" help:"Apply the reminder answers of a survey result file."`
}

type RemindSetCmd struct {
	Type string `arg:"" help:"Reminder type (daily, sleep, physical, cognition)."`
	Time string `help:"Time of day, e.g. '6:30 PM'. Defaults to the type's default time."`
	Day  string `help:"Weekday for weekly reminders (sun-sat or 1-7)."`
	Off  bool   `help:"Turn the reminder off."`
}

func (c *RemindSetCmd) Run(ctx *cli.Context) error {
	t, err := models.ParseReminderType(c.Type)
	if err != nil {
		return err
	}
	bg := ctx.Background()

	result := survey.NewResult("reminder")
	if c.Off {
		result.Set(t.DoNotRemindKey(), true)
	} else {
		_, day, err := ctx.Engine.StudyDay(bg)
		if err != nil {
			return err
		}
		step := reminders.NewStep(t, day, true, false)

		clock := c.Time
		if clock == "" {
			clock = step.DefaultTime
		}
		if _, _, err := reminders.ParseTime(clock); err != nil {
			return err
		}
		result.Set(t.DoNotRemindKey(), false).Set(t.TimeKey(), clock)

		switch {
		case c.Day != "":
			if t.Activity().MustSpec().Policy == models.PeriodAlwaysDaily {
				return fmt.Errorf("%s reminders are daily and take no --day", t)
			}
			wd, err := models.ParseWeekday(c.Day)
			if err != nil {
				return err
			}
			result.Set(t.DayKey(), int(wd))
		case step.Weekly():
			result.Set(t.DayKey(), int(step.DefaultDay))
		}
	}

	if err := ctx.Reminders.UpdateFromResult(bg, result); err != nil {
		return err
	}
	return printSetting(ctx, t)
}

type RemindEditCmd struct {
	Type string `arg:"" help:"Reminder type (daily, sleep, physical, cognition)."`
}

func (c *RemindEditCmd) Run(ctx *cli.Context) error {
	t, err := models.ParseReminderType(c.Type)
	if err != nil {
		return err
	}
	bg := ctx.Background()
	_, day, err := ctx.Engine.StudyDay(bg)
	if err != nil {
		return err
	}
	step, err := ctx.Reminders.Step(bg, t, day, true)
	if err != nil {
		return err
	}
	result, err := runForm(step)
	if err != nil {
		return fmt.Errorf("reminder prompt: %w", err)
	}
	if err := ctx.Reminders.UpdateFromResult(bg, result); err != nil {
		return err
	}
	return printSetting(ctx, t)
}

type RemindListCmd struct{}

func (c *RemindListCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	settings, err := ctx.Reminders.Settings(bg)
	if err != nil {
		return err
	}
	now := ctx.Clock.Now()

	fmt.Printf("%-10s %-24s %s\n", "TYPE", "SETTING", "NEXT")
	for _, s := range settings {
		next := "-"
		at, ok, err := ctx.Reminders.NextFire(bg, s.Type, now)
		if err != nil {
			return err
		}
		if ok {
			next = at.Format("Mon Jan 2 3:04 PM")
		}
		fmt.Printf("%-10s %-24s %s\n", s.Type, cli.FormatSetting(s), next)
	}
	return nil
}

type RemindApplyCmd struct {
	File string `arg:"" help:"Survey result JSON file." type:"existingfile"`
}

func (c *RemindApplyCmd) Run(ctx *cli.Context) error {
	result, err := survey.Load(c.File)
	if err != nil {
		return err
	}
	if err := ctx.Reminders.UpdateFromResult(ctx.Background(), result); err != nil {
		return err
	}
	fmt.Println("✓ Reminder answers applied")
	return (&RemindListCmd{}).Run(ctx)
}

func printSetting(ctx *cli.Context, t models.ReminderType) error {
	bg := ctx.Background()
	s, err := ctx.Reminders.Setting(bg, t)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s reminder: %s\n", t, cli.FormatSetting(s))
	if next, ok, err := ctx.Reminders.NextFire(bg, t, ctx.Clock.Now()); err == nil && ok {
		fmt.Printf("  Next: %s\n", next.In(ctx.Clock.Location()).Format(time.RFC1123))
	}
	return nil
}
