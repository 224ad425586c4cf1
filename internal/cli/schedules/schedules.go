package schedules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
)

type SchedulesCmd struct {
	Import ImportCmd `cmd:"" help:"Import scheduled activities delivered by the study sync."`
	List   ListCmd   `cmd:"" help:"List scheduled activities." default:"1"`
}

type ImportCmd struct {
	File string `arg:"" help:"JSON file with a list of schedules, or an object with a 'schedules' list." type:"existingfile"`
}

// ParseSchedules decodes a schedule document. Entries naming an unknown
// activity are skipped; entries without a GUID or date are rejected.
func ParseSchedules(data []byte) ([]models.ScheduledActivity, error) {
	var schedules []models.ScheduledActivity
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc struct {
			Schedules []models.ScheduledActivity `json:"schedules"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decoding schedules: %w", err)
		}
		schedules = doc.Schedules
	} else if err := json.Unmarshal(trimmed, &schedules); err != nil {
		return nil, fmt.Errorf("decoding schedules: %w", err)
	}

	out := make([]models.ScheduledActivity, 0, len(schedules))
	for i, s := range schedules {
		if s.GUID == "" {
			return nil, fmt.Errorf("schedule %d has no guid", i)
		}
		if s.ScheduledOn.IsZero() {
			return nil, fmt.Errorf("schedule %s has no scheduled_on", s.GUID)
		}
		if _, ok := models.CategoryForVariant(s.ActivityIdentifier); !ok {
			logger.Warn("Skipping schedule for unknown activity", "guid", s.GUID, "activity", s.ActivityIdentifier)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read schedules: %w", err)
	}
	schedules, err := ParseSchedules(data)
	if err != nil {
		return err
	}
	if len(schedules) == 0 {
		return errors.New("no schedules to import")
	}
	if err := ctx.Store.SaveSchedules(ctx.Background(), schedules); err != nil {
		return fmt.Errorf("failed to save schedules: %w", err)
	}
	logger.Info("Schedules imported", "count", len(schedules), "file", c.File)
	fmt.Printf("✓ Imported %d schedule(s)\n", len(schedules))
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	schedules, err := ctx.Store.GetSchedules(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to get schedules: %w", err)
	}
	if len(schedules) == 0 {
		fmt.Println("No schedules delivered yet.")
		return nil
	}

	loc := ctx.Clock.Location()
	start := clock.StudyStartDate(schedules, ctx.Clock.Now(), loc)
	fmt.Printf("Study started %s\n\n", start.Format(constants.DateFormat))
	fmt.Printf("%-4s %-12s %-20s %s\n", "DAY", "DATE", "ACTIVITY", "GUID")
	for _, s := range schedules {
		fmt.Printf("%-4d %-12s %-20s %s\n",
			clock.DayOfStudy(start, s.ScheduledOn, loc),
			s.ScheduledOn.In(loc).Format(constants.DateFormat),
			s.ActivityIdentifier,
			s.GUID,
		)
	}
	return nil
}
