package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studyclock/internal/cli"
	"github.com/julianstephens/studyclock/internal/cli/activities"
	"github.com/julianstephens/studyclock/internal/cli/backups"
	"github.com/julianstephens/studyclock/internal/cli/endofstudy"
	"github.com/julianstephens/studyclock/internal/cli/remind"
	"github.com/julianstephens/studyclock/internal/cli/schedules"
	"github.com/julianstephens/studyclock/internal/cli/system"
	"github.com/julianstephens/studyclock/internal/config"
	"github.com/julianstephens/studyclock/internal/constants"
	apperrors "github.com/julianstephens/studyclock/internal/errors"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/storage"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite path, PostgreSQL connection string, Redis URL, or 'memory'. PostgreSQL credentials must NOT be embedded; use STUDYCLOCK_DB_CONNECTION, .pgpass, or the OS keyring instead." env:"STUDYCLOCK_CONFIG" default:"${defaultConfig}"`
	Timezone string `help:"IANA timezone the study calendar runs in (defaults to the system zone)." env:"STUDYCLOCK_TIMEZONE"`
	Notifier string `help:"Where reminder triggers go: local, amqp, or log." enum:"local,amqp,log" default:"local" env:"STUDYCLOCK_NOTIFIER"`
	AMQPURL  string `name:"amqp-url" help:"RabbitMQ URL for the amqp notifier (falls back to the OS keyring)." env:"STUDYCLOCK_AMQP_URL"`
	Grace    int    `help:"Minutes a missed reminder may still be delivered." default:"10" env:"STUDYCLOCK_GRACE_MINUTES"`
	DebugLog bool   `name:"debug" help:"Log debug output to stderr." env:"STUDYCLOCK_DEBUG"`
	LogJSON  bool   `name:"log-json" help:"Write the log file as JSON lines." env:"STUDYCLOCK_LOG_JSON"`

	Init      system.InitCmd         `cmd:"" help:"Initialize studyclock storage."`
	Migrate   system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Tui       system.TuiCmd          `cmd:"" help:"Launch the study dashboard." default:"1"`
	Today     activities.TodayCmd    `cmd:"" help:"Show today's activities and labels."`
	Start     activities.StartCmd    `cmd:"" help:"Start an activity."`
	Complete  activities.CompleteCmd `cmd:"" help:"Complete the started activity."`
	Remind    remind.RemindCmd       `cmd:"" help:"Manage reminder settings."`
	Schedules schedules.SchedulesCmd `cmd:"" help:"Import and list delivered schedules."`
	EndStudy  endofstudy.EndStudyCmd `cmd:"" name:"end-study" help:"End-of-study tasks and withdrawal."`
	Backup    backups.BackupCmd      `cmd:"" help:"Manage participant data backups."`
	Keyring   system.KeyringCmd      `cmd:"" help:"Manage credentials in the OS keyring."`
	Debug     system.DebugCmd        `cmd:"" help:"Debug commands for troubleshooting."`
	Notify    system.NotifyCmd       `cmd:"" hidden:"" help:"Deliver due reminders (run from cron)."`
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Clinical study companion: daily and weekly activities, progress, and reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"defaultConfig": constants.DefaultConfigPath,
		},
	)

	cfg := &config.Config{
		Storage:      CLI.Config,
		Timezone:     CLI.Timezone,
		Notifier:     config.NotifierKind(CLI.Notifier),
		AMQPURL:      CLI.AMQPURL,
		GraceMinutes: CLI.Grace,
		Debug:        CLI.DebugLog,
		LogJSON:      CLI.LogJSON,
	}
	if err := cfg.Resolve(); err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir, JSON: cfg.LogJSON}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := storage.Open(cfg.Storage, cfg.StorageOptions)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx, err := cli.New(cfg, store)
	if err != nil {
		apperrors.Fatal(err)
	}

	// init, migrate and doctor open the store themselves
	if ctx.Selected() != nil {
		switch ctx.Selected().Name {
		case "init", "migrate", "doctor":
		default:
			if err := store.Load(); err != nil {
				apperrors.Fatal(err)
			}
		}
	}

	err = ctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close storage", "error", cerr)
	}
	apperrors.Fatal(err)
}
