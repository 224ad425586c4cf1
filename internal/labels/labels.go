// Package labels renders the participant-facing day, week and expiration
// strings. Every week-1 branch goes through clock.IsFirstWeek so the labels
// flip on the same day as rotation and completion tracking.
package labels

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/models"
)

func verb(allComplete bool) string {
	if allComplete {
		return "renew"
	}
	return "expire"
}

// ExpiresLabel is the daily expiration line. remaining is usually TimeUntil
// the end of the day.
func ExpiresLabel(day int, remaining string, allComplete bool) string {
	if clock.IsFirstWeek(day) {
		return fmt.Sprintf("Today’s activities %s in %s", verb(allComplete), remaining)
	}
	return fmt.Sprintf("Daily activities %s in %s", verb(allComplete), remaining)
}

// ExpiresWeeklyLabel is the weekly expiration line, hidden during week 1.
// With more than one day left it counts days, otherwise it shows remaining.
func ExpiresWeeklyLabel(day int, remaining string, allComplete bool) (string, bool) {
	if clock.IsFirstWeek(day) {
		return "", false
	}
	if left := clock.DaysLeftInWeek(day); left > 1 {
		return fmt.Sprintf("Weekly activities %s in %d days", verb(allComplete), left), true
	}
	return fmt.Sprintf("Weekly activities %s in %s", verb(allComplete), remaining), true
}

// DayLabel is "N of 7" during week 1 and the week number afterwards.
func DayLabel(day int) string {
	if clock.IsFirstWeek(day) {
		if day < 1 {
			day = 1
		}
		return fmt.Sprintf("%d of %d", day, constants.DaysPerWeek)
	}
	return fmt.Sprintf("%d", clock.WeekOfStudy(day))
}

func DayTitleLabel(day int) string {
	if clock.IsFirstWeek(day) {
		return "Day"
	}
	return "Week"
}

func HeaderTitle(day int) string {
	if clock.IsFirstWeek(day) {
		return "Let’s begin your journey!"
	}
	return "Continuing your journey"
}

func HeaderText(day int) string {
	if clock.IsFirstWeek(day) {
		return "By completing your first 4 activities in a day for one week, you will then be able to unlock your entire journey."
	}
	return "In this phase of the study, please do your check-ins once per day and your challenges once per week."
}

// TimeUntil formats the time left until until as HH:MM:SS. Hours may exceed
// 24 and past instants read 00:00:00.
func TimeUntil(now, until time.Time) string {
	secs := int(until.Sub(now) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf(constants.CountdownFormat, secs/3600, (secs%3600)/60, secs%60)
}

// ActivityDetail is the line under an activity: its length when open,
// or which period it is done for.
func ActivityDetail(category models.Category, day int, complete bool) string {
	spec, ok := category.Spec()
	if !ok {
		return ""
	}
	if !complete {
		if spec.EstimatedMinutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", spec.EstimatedMinutes)
	}
	if spec.Policy == models.PeriodWeeklyAfterFirstWeek && !clock.IsFirstWeek(day) {
		return "Done for week"
	}
	return "Done for day"
}

// ReminderSettingText summarizes a reminder setting for the settings list.
func ReminderSettingText(s models.ReminderSetting) string {
	if !s.Active() {
		return "No reminder has been set"
	}
	if s.Weekly() {
		return fmt.Sprintf("%s at %s", s.Day.Plural(), s.Time)
	}
	return fmt.Sprintf("Daily at %s", s.Time)
}
