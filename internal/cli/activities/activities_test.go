package activities

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/config"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/reminders"
	"github.com/julianstephens/studyclock/internal/rotation"
	"github.com/julianstephens/studyclock/internal/storage/memory"
	"github.com/julianstephens/studyclock/internal/study"
	"github.com/julianstephens/studyclock/internal/survey"
)

var studyStart = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T, schedules ...models.ScheduledActivity) *cli.Context {
	t.Helper()
	store := memory.NewStore()
	if err := store.SaveSchedules(context.Background(), schedules); err != nil {
		t.Fatalf("failed to save schedules: %v", err)
	}

	cfg := &config.Config{Storage: "memory", Notifier: config.NotifierLocal, Location: time.UTC}
	ctx, err := cli.New(cfg, store)
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	ctx.At(studyStart.Add(time.Hour))
	return ctx
}

func schedule(variant string) models.ScheduledActivity {
	return models.ScheduledActivity{GUID: variant, ActivityIdentifier: variant, ScheduledOn: studyStart}
}

// stubForm answers every reminder step with its default time and day.
func stubForm(t *testing.T) *[]reminders.Step {
	t.Helper()
	var seen []reminders.Step
	orig := runForm
	runForm = func(step reminders.Step) (*survey.Result, error) {
		seen = append(seen, step)
		res := survey.NewResult("reminder").
			Set(step.Type.DoNotRemindKey(), false).
			Set(step.Type.TimeKey(), step.DefaultTime)
		if step.Weekly() {
			res.Set(step.Type.DayKey(), int(step.DefaultDay))
		}
		return res, nil
	}
	t.Cleanup(func() { runForm = orig })
	return &seen
}

// run executes a command and fails the test on error.
func run(t *testing.T, ctx *cli.Context, cmd interface{ Run(*cli.Context) error }) {
	t.Helper()
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("%T failed: %v", cmd, err)
	}
}

func TestStartAndCompleteWithoutPrompt(t *testing.T) {
	ctx := setupTestContext(t, schedule(models.VariantSleepCheckIn))
	bg := context.Background()

	run(t, ctx, &StartCmd{Category: "sleep"})
	run(t, ctx, &CompleteCmd{Category: "sleep", NoPrompt: true})

	done, err := ctx.Engine.Tracker().IsComplete(bg, models.CategorySleep, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("expected sleep to be complete on day 1")
	}

	scheduled, err := ctx.Reminders.HasBeenScheduled(bg, models.ReminderSleep)
	if err != nil {
		t.Fatal(err)
	}
	if scheduled {
		t.Error("--no-prompt must not answer the reminder step")
	}
}

func TestCompletePromptsForReminder(t *testing.T) {
	ctx := setupTestContext(t, schedule(models.VariantSleepCheckIn))
	seen := stubForm(t)
	bg := context.Background()

	run(t, ctx, &StartCmd{Category: "sleep"})
	run(t, ctx, &CompleteCmd{Category: "sleep"})

	if len(*seen) != 1 {
		t.Fatalf("expected 1 reminder step, got %d", len(*seen))
	}
	if (*seen)[0].Type != models.ReminderSleep {
		t.Errorf("expected the sleep step, got %s", (*seen)[0].Type)
	}

	setting, err := ctx.Reminders.Setting(bg, models.ReminderSleep)
	if err != nil {
		t.Fatal(err)
	}
	if !setting.Active() || setting.Time != "9:00 AM" {
		t.Errorf("unexpected setting: %+v", setting)
	}

	_, armed, err := ctx.Registry.Get(bg, "sleep")
	if err != nil {
		t.Fatal(err)
	}
	if !armed {
		t.Error("expected the sleep trigger to be armed")
	}

	// A second completion on the next day does not ask again.
	ctx.At(studyStart.AddDate(0, 0, 1))
	run(t, ctx, &StartCmd{Category: "sleep"})
	run(t, ctx, &CompleteCmd{Category: "sleep"})
	if len(*seen) != 1 {
		t.Errorf("expected no second prompt, got %d steps", len(*seen))
	}
}

func TestCompleteAppliesResultFile(t *testing.T) {
	ctx := setupTestContext(t, schedule(models.VariantDailyCheckIn))
	path := filepath.Join(t.TempDir(), "result.json")
	if err := os.WriteFile(path, []byte(`{"identifier":"Daily Check-In","answers":{"dailyDoNotRemind":true,"mood":3}}`), 0600); err != nil {
		t.Fatal(err)
	}

	run(t, ctx, &StartCmd{Category: "daily"})
	run(t, ctx, &CompleteCmd{Category: "daily", Result: path, NoPrompt: true})

	off, err := ctx.Reminders.DoNotRemind(context.Background(), models.ReminderDaily)
	if err != nil {
		t.Fatal(err)
	}
	if !off {
		t.Error("expected the daily reminder to be declined")
	}

	results, err := ctx.Store.GetResults(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Answers["mood"] != float64(3) || results[0].DayOfStudy != 1 {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestStartWithoutSchedule(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&StartCmd{Category: "physical"}).Run(ctx); !errors.Is(err, rotation.ErrNoSchedule) {
		t.Errorf("expected ErrNoSchedule, got %v", err)
	}
}

func TestStartInvalidCategory(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&StartCmd{Category: "nap"}).Run(ctx); err == nil {
		t.Error("expected error for an unknown category")
	}
}

func TestCompleteWithoutStart(t *testing.T) {
	ctx := setupTestContext(t, schedule(models.VariantSleepCheckIn))

	err := (&CompleteCmd{Category: "sleep", NoPrompt: true}).Run(ctx)
	if !errors.Is(err, study.ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestWeekOneCompleteInterstitial(t *testing.T) {
	// Day 8: the first weekly Physical Challenge is the second variant.
	ctx := setupTestContext(t, schedule(models.VariantTapping), schedule(models.VariantTremor), schedule(models.VariantKineticTremor))
	ctx.At(studyStart.AddDate(0, 0, 7))
	seen := stubForm(t)
	bg := context.Background()

	show, err := ctx.Engine.NeedsWeekOneComplete(bg)
	if err != nil {
		t.Fatal(err)
	}
	if !show {
		t.Fatal("expected the week-1-complete interstitial on day 8")
	}

	run(t, ctx, &StartCmd{Category: "physical"})
	run(t, ctx, &CompleteCmd{Category: "physical"})

	// The post-activity physical step, then the forced physical and cognition steps.
	if len(*seen) != 3 {
		t.Fatalf("expected 3 reminder steps, got %d", len(*seen))
	}
	if !(*seen)[1].AlwaysShow {
		t.Error("the interstitial steps are always shown")
	}
	if (*seen)[2].Type != models.ReminderCognition || !(*seen)[2].Weekly() {
		t.Errorf("expected a weekly cognition step, got %+v", (*seen)[2])
	}

	if show, err = ctx.Engine.NeedsWeekOneComplete(bg); err != nil || show {
		t.Errorf("interstitial should be shown once: show=%v err=%v", show, err)
	}

	setting, err := ctx.Reminders.Setting(bg, models.ReminderCognition)
	if err != nil {
		t.Fatal(err)
	}
	if setting.Day != models.Saturday {
		t.Errorf("expected the Saturday default, got %v", setting.Day)
	}
}

func TestTodayAt(t *testing.T) {
	ctx := setupTestContext(t, schedule(models.VariantSleepCheckIn))

	run(t, ctx, &TodayCmd{At: "2026-04-09"})
	_, day, err := ctx.Engine.StudyDay(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if day != 9 {
		t.Errorf("expected day 9, got %d", day)
	}

	run(t, ctx, &TodayCmd{JSON: true})
	if err := (&TodayCmd{At: "next tuesday"}).Run(ctx); err == nil {
		t.Error("expected error for an unparseable date")
	}
}
