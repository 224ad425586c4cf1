package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/config"
	"github.com/julianstephens/studyclock/internal/keyring"
	"github.com/julianstephens/studyclock/internal/migration"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/reminders"
)

type DoctorCmd struct{}

type schemaReporter interface {
	MigrationStatus() (migration.Status, error)
}

type check struct {
	name    string
	needsDB bool
	warning bool
	run     func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Schedules delivered", needsDB: true, warning: true, run: checkSchedulesPresent},
	{name: "Schedule integrity", needsDB: true, run: checkScheduleIntegrity},
	{name: "Reminder settings", needsDB: true, run: checkReminderSettings},
	{name: "Reminder triggers", needsDB: true, warning: true, run: checkReminderTriggers},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warning: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	for i, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warning:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.Keys(context.Background(), ""); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func migrationStatus(ctx *cli.Context) (migration.Status, bool, error) {
	reporter, ok := ctx.Store.(schemaReporter)
	if !ok {
		return migration.Status{}, false, nil
	}
	st, err := reporter.MigrationStatus()
	if err != nil {
		return migration.Status{}, true, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return st, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, ok, err := migrationStatus(ctx)
	if !ok || err != nil {
		return err
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	st, ok, err := migrationStatus(ctx)
	if !ok || err != nil {
		return err
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", st.Current, st.Latest)
	}
	return nil
}

func checkSchedulesPresent(ctx *cli.Context) error {
	schedules, err := ctx.Store.GetSchedules(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get schedules: %w", err)
	}
	if len(schedules) == 0 {
		return fmt.Errorf("no schedules found - the study start date falls back to today until 'studyclock schedules import' is run")
	}
	return nil
}

func checkScheduleIntegrity(ctx *cli.Context) error {
	schedules, err := ctx.Store.GetSchedules(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get schedules: %w", err)
	}
	seen := make(map[string]bool, len(schedules))
	for _, s := range schedules {
		if seen[s.GUID] {
			return fmt.Errorf("duplicate schedule GUID found: %s", s.GUID)
		}
		seen[s.GUID] = true
		if _, ok := models.CategoryForVariant(s.ActivityIdentifier); !ok {
			return fmt.Errorf("schedule %s has unknown activity %q", s.GUID, s.ActivityIdentifier)
		}
		if s.ScheduledOn.IsZero() {
			return fmt.Errorf("schedule %s has no scheduled date", s.GUID)
		}
	}
	return nil
}

func checkReminderSettings(ctx *cli.Context) error {
	settings, err := ctx.Reminders.Settings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read reminder settings: %w", err)
	}
	for _, s := range settings {
		if !s.HasBeenScheduled || s.DoNotRemind || s.Time == "" {
			continue
		}
		if _, _, err := reminders.ParseTime(s.Time); err != nil {
			return fmt.Errorf("%s reminder has an unreadable time: %w", s.Type, err)
		}
	}
	return nil
}

func checkReminderTriggers(ctx *cli.Context) error {
	if ctx.Config != nil && ctx.Config.Notifier == config.NotifierLog {
		return nil
	}
	bg := context.Background()
	settings, err := ctx.Reminders.Settings(bg)
	if err != nil {
		return fmt.Errorf("failed to read reminder settings: %w", err)
	}
	for _, s := range settings {
		_, armed, err := ctx.Registry.Get(bg, s.Type.TriggerIdentifier())
		if err != nil {
			return fmt.Errorf("failed to read %s trigger: %w", s.Type, err)
		}
		if s.Active() && !armed {
			return fmt.Errorf("%s reminder is set but no trigger is armed - run 'studyclock remind set %s' again", s.Type, s.Type)
		}
		if !s.Active() && armed {
			return fmt.Errorf("%s reminder is off but a trigger is still armed", s.Type)
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Clock == nil || ctx.Clock.Location() == nil {
		return fmt.Errorf("no study timezone configured")
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; PostgreSQL credentials must come from STUDYCLOCK_DB_CONNECTION or .pgpass")
	}
	return nil
}
