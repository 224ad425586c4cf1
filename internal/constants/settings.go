package constants

const (
	// Reminder setting key suffixes, prefixed with the reminder type ("dailyTime")
	ReminderSuffixDoNotRemind = "DoNotRemind"
	ReminderSuffixTime        = "Time"
	ReminderSuffixDay         = "Day"

	// Completion period key markers ("PhysicalDay5", "CognitionWeek2")
	PeriodMarkerDay  = "Day"
	PeriodMarkerWeek = "Week"

	// One-shot flags
	SettingHasShownWeek1Complete = "hasShownWeek1Complete"
	SettingEndOfStudyPrefix      = "endOfStudy"

	// Session bookkeeping
	SettingActiveSessionPrefix = "activeSession."

	// Survey answer identifier carrying the day of study on uploaded results
	AnswerDayOfStudy = "dayOfStudy"
	// Marks a result recorded by the end-of-study battery
	AnswerEndOfStudy = "endOfStudy"

	// Reminder defaults
	DefaultDailyReminderTime     = "6:30 PM"
	DefaultSleepReminderTime     = "9:00 AM"
	DefaultChallengeReminderTime = "6:30 PM"
	DefaultTimezone              = "Local"
)
