package activities

import (
	"fmt"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/reminders"
	"github.com/julianstephens/studyclock/internal/survey"
)

// runForm renders a reminder step; replaced in tests.
var runForm = survey.RunReminderForm

type CompleteCmd struct {
	Category string `arg:"" help:"Activity category (sleep, physical, cognition, daily)."`
	Result   string `help:"Survey result JSON file with the activity answers." type:"existingfile"`
	NoPrompt bool   `help:"Do not ask for reminder times."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return err
	}

	var result *survey.Result
	if c.Result != "" {
		if result, err = survey.Load(c.Result); err != nil {
			return err
		}
	}

	bg := ctx.Background()
	outcome, err := ctx.Engine.Finish(bg, category, result)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Recorded %s for day %d\n", outcome.Result.ActivityIdentifier, outcome.Result.DayOfStudy)

	if outcome.NeedsReminderPrompt && !c.NoPrompt {
		if err := promptReminder(ctx, outcome.ReminderStep); err != nil {
			return err
		}
	}

	show, err := ctx.Engine.NeedsWeekOneComplete(bg)
	if err != nil {
		return err
	}
	if show && !c.NoPrompt {
		return c.weekOneComplete(ctx)
	}
	return nil
}

func (c *CompleteCmd) weekOneComplete(ctx *cli.Context) error {
	bg := ctx.Background()
	fmt.Println()
	fmt.Println("🎉 You finished your first week!")
	fmt.Println("   From now on the physical and cognitive challenges are done once a week.")

	steps, err := ctx.Engine.WeekOneCompleteSteps(bg)
	if err != nil {
		return err
	}
	for _, step := range steps {
		if err := promptReminder(ctx, step); err != nil {
			return err
		}
	}
	return ctx.Engine.MarkWeekOneCompleteShown(bg)
}

func promptReminder(ctx *cli.Context, step reminders.Step) error {
	result, err := runForm(step)
	if err != nil {
		return fmt.Errorf("reminder prompt: %w", err)
	}
	bg := ctx.Background()
	if err := ctx.Reminders.UpdateFromResult(bg, result); err != nil {
		return err
	}
	setting, err := ctx.Reminders.Setting(bg, step.Type)
	if err != nil {
		return err
	}
	logger.Debug("Reminder answered", "type", step.Type, "setting", cli.FormatSetting(setting))
	fmt.Printf("✓ %s reminder: %s\n", step.Type, cli.FormatSetting(setting))
	return nil
}
