package system

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/models"
)

func TestDebugCommands(t *testing.T) {
	ctx := setupTestMemory(t)
	bg := context.Background()
	on := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	_ = ctx.Store.Set(bg, "SleepDay1", "true")
	_ = ctx.Store.SaveSchedules(bg, []models.ScheduledActivity{{GUID: "g", ActivityIdentifier: models.VariantSleepCheckIn, ScheduledOn: on}})
	_ = ctx.Store.AddResult(bg, models.ActivityResult{ID: "r", Category: models.CategorySleep, DayOfStudy: 1, FinishedAt: on})
	_ = ctx.Registry.Arm(bg, models.Trigger{Identifier: "sleep", Hour: 9, Recurring: true, ArmedAt: on})

	tests := []struct {
		name string
		run  func(*cli.Context) error
	}{
		{"db-path", (&DebugDBPathCmd{}).Run},
		{"dump-kv", (&DebugDumpKVCmd{}).Run},
		{"dump-kv prefix", (&DebugDumpKVCmd{Prefix: "trigger."}).Run},
		{"dump-schedules", (&DebugDumpSchedulesCmd{}).Run},
		{"dump-results", (&DebugDumpResultsCmd{}).Run},
		{"dump-triggers", (&DebugDumpTriggersCmd{}).Run},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(ctx); err != nil {
				t.Errorf("%s failed: %v", tt.name, err)
			}
		})
	}
}
