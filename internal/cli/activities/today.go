package activities

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/study"
)

type TodayCmd struct {
	At   string `help:"Show the dashboard as of this instant (RFC 3339 or YYYY-MM-DD)."`
	JSON bool   `help:"Print the snapshot as JSON."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	if c.At != "" {
		at, err := cli.ParseAt(c.At, ctx.Clock.Location())
		if err != nil {
			return err
		}
		ctx.At(at)
	}

	snap, err := ctx.Engine.Today(ctx.Background())
	if err != nil {
		return err
	}

	if c.JSON {
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%s %s  (started %s)\n", snap.DayTitle, snap.DayLabel, snap.StartDate.Format(constants.DateFormat))
	fmt.Println(snap.HeaderTitle)
	fmt.Println()
	fmt.Println(snap.Expires)
	printStates(snap.Daily)
	if snap.ShowWeekly {
		fmt.Println()
		fmt.Println(snap.ExpiresWeekly)
		printStates(snap.Weekly)
	}
	return nil
}

func printStates(states []study.CategoryState) {
	for _, s := range states {
		variant := s.Variant
		if !s.Scheduled {
			variant = "not delivered yet"
		}
		fmt.Printf("  %s %-20s %-14s (%s)\n", cli.FormatStatus(s.Complete), s.Title, s.Detail, variant)
	}
}
