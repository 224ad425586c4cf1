package constants

import "time"

const (
	AppName            = "studyclock"
	DefaultKeyringUser = "database-connection"
	AMQPKeyringUser    = "amqp-url"
	DefaultConfigPath  = "~/.config/studyclock/studyclock.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ReminderTimeFormat is the "h:mm a" layout of reminder times ("6:30 PM")
	ReminderTimeFormat = "3:04 PM"

	// CountdownFormat renders hours, minutes and seconds until an expiration
	CountdownFormat = "%02d:%02d:%02d"

	// Study calendar
	DaysPerWeek = 7

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "studyclock-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.studyclock"
	TrayExecutablePrefix   = "studyclock-tray"
	TriggerKeyPrefix       = "trigger."

	// Reminder trigger delivery
	DefaultNotificationGracePeriodMin = 10
	BreakerMaxFailures                = 3
	BreakerOpenTimeout                = 30 * time.Second

	// AMQP trigger port
	DefaultAMQPExchange  = "studyclock.reminders"
	AMQPRoutingArm       = "reminder.arm"
	AMQPRoutingCancel    = "reminder.cancel"
	AMQPRoutingCancelAll = "reminder.cancel_all"

	// Participant data snapshots
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studyclock-"
	BackupFileSuffix = ".db"

	// Redis key namespace
	DefaultRedisNamespace = "studyclock"
)
