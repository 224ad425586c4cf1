package models

import (
	"fmt"
	"strings"

	"github.com/julianstephens/studyclock/internal/constants"
)

// ReminderType identifies a reminder configuration, one per category
type ReminderType string

const (
	ReminderDaily     ReminderType = "daily"
	ReminderSleep     ReminderType = "sleep"
	ReminderPhysical  ReminderType = "physical"
	ReminderCognition ReminderType = "cognition"
)

type reminderDefaults struct {
	activity Category
	time     string
	day      Weekday
}

var reminderTable = map[ReminderType]reminderDefaults{
	ReminderDaily:     {activity: CategoryDaily, time: constants.DefaultDailyReminderTime},
	ReminderSleep:     {activity: CategorySleep, time: constants.DefaultSleepReminderTime},
	ReminderPhysical:  {activity: CategoryPhysical, time: constants.DefaultChallengeReminderTime, day: Saturday},
	ReminderCognition: {activity: CategoryCognition, time: constants.DefaultChallengeReminderTime, day: Saturday},
}

var reminderOrder = []ReminderType{ReminderDaily, ReminderSleep, ReminderPhysical, ReminderCognition}

// ReminderTypes returns every reminder type.
func ReminderTypes() []ReminderType {
	out := make([]ReminderType, len(reminderOrder))
	copy(out, reminderOrder)
	return out
}

func ParseReminderType(s string) (ReminderType, error) {
	t := ReminderType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := reminderTable[t]; !ok {
		return "", fmt.Errorf("invalid reminder type: %s (must be daily, sleep, physical, or cognition)", s)
	}
	return t, nil
}

func (t ReminderType) String() string {
	return string(t)
}

// Activity maps the reminder type to its activity category.
func (t ReminderType) Activity() Category {
	return reminderTable[t].activity
}

// DefaultTime is the time pre-filled in the reminder step.
func (t ReminderType) DefaultTime() string {
	return reminderTable[t].time
}

// DefaultDay is the weekday pre-filled in the reminder step, NoWeekday for daily types.
func (t ReminderType) DefaultDay() Weekday {
	return reminderTable[t].day
}

// DoNotRemindKey is both the survey answer identifier and the settings key.
func (t ReminderType) DoNotRemindKey() string {
	return string(t) + constants.ReminderSuffixDoNotRemind
}

func (t ReminderType) TimeKey() string {
	return string(t) + constants.ReminderSuffixTime
}

func (t ReminderType) DayKey() string {
	return string(t) + constants.ReminderSuffixDay
}

// TriggerIdentifier names the single armed trigger for this type.
func (t ReminderType) TriggerIdentifier() string {
	return string(t)
}

// ReminderSetting is the persisted reminder configuration for one type
type ReminderSetting struct {
	Type             ReminderType `json:"type"`
	HasBeenScheduled bool         `json:"has_been_scheduled"`
	DoNotRemind      bool         `json:"do_not_remind"`
	Time             string       `json:"time,omitempty"`
	Day              Weekday      `json:"day,omitempty"`
}

// Active reports whether a trigger should be armed for this setting.
func (s ReminderSetting) Active() bool {
	return s.HasBeenScheduled && !s.DoNotRemind && s.Time != ""
}

// Weekly reports whether the setting recurs weekly rather than daily.
func (s ReminderSetting) Weekly() bool {
	return s.Day.Valid()
}
