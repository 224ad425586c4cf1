package activities

import (
	"errors"
	"fmt"

	"github.com/julianstephens/studyclock/internal/cli"
	apperrors "github.com/julianstephens/studyclock/internal/errors"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/rotation"
)

type StartCmd struct {
	Category string `arg:"" help:"Activity category (sleep, physical, cognition, daily)."`
}

func (c *StartCmd) Run(ctx *cli.Context) error {
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return err
	}

	session, scheduled, err := ctx.Engine.Start(ctx.Background(), category)
	if err != nil {
		if errors.Is(err, rotation.ErrNoSchedule) {
			return apperrors.WithHint(err, "this activity has not been delivered yet; import the latest schedules with 'studyclock schedules import'")
		}
		return err
	}

	fmt.Printf("✓ Started %s (%s, day %d)\n", scheduled.ActivityIdentifier, category, session.DayOfStudy)
	if scheduled.Label != "" {
		fmt.Printf("  %s\n", scheduled.Label)
	}
	fmt.Printf("  Run 'studyclock complete %s' when finished.\n", category)
	return nil
}
