package system

import (
	"fmt"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/notifier"
)

// NotifyCmd delivers due reminders. It is meant to run from cron every minute.
type NotifyCmd struct {
	DryRun bool `help:"Print due reminders to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	now := ctx.Clock.Now()
	grace := ctx.Config.Grace()

	if c.DryRun {
		due, err := ctx.Registry.Due(bg, now, grace)
		if err != nil {
			return fmt.Errorf("failed to read armed reminders: %w", err)
		}
		if len(due) == 0 {
			fmt.Println("No reminders due.")
			return nil
		}
		for _, t := range due {
			fmt.Printf("[DryRun] %s (%s)\n", t.Body, t.FormatSchedule())
		}
		return nil
	}

	sent, err := ctx.Registry.FireDue(bg, now, grace, notifier.New())
	if err != nil {
		return fmt.Errorf("failed to deliver reminders: %w", err)
	}
	if sent > 0 {
		logger.Info("Reminders delivered", "count", sent)
	}
	return nil
}
