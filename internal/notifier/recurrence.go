package notifier

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/studyclock/internal/models"
)

var rruleWeekdays = map[models.Weekday]rrule.Weekday{
	models.Sunday:    rrule.SU,
	models.Monday:    rrule.MO,
	models.Tuesday:   rrule.TU,
	models.Wednesday: rrule.WE,
	models.Thursday:  rrule.TH,
	models.Friday:    rrule.FR,
	models.Saturday:  rrule.SA,
}

func options(t models.Trigger, start time.Time) rrule.ROption {
	opt := rrule.ROption{
		Freq:     rrule.DAILY,
		Dtstart:  start,
		Byhour:   []int{t.Hour},
		Byminute: []int{t.Minute},
		Bysecond: []int{0},
	}
	if wd, ok := rruleWeekdays[t.Weekday]; ok {
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{wd}
	}
	return opt
}

// Rule builds the recurrence of t with occurrences strictly after start,
// evaluated on the wall clock of start's location.
func Rule(t models.Trigger, start time.Time) (*rrule.RRule, error) {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return nil, fmt.Errorf("invalid trigger time %02d:%02d", t.Hour, t.Minute)
	}
	r, err := rrule.NewRRule(options(t, start.Truncate(time.Second).Add(time.Second)))
	if err != nil {
		return nil, fmt.Errorf("building recurrence for %s: %w", t.Identifier, err)
	}
	return r, nil
}

// RRuleString renders t as an RFC 5545 RRULE value, e.g.
// FREQ=WEEKLY;BYDAY=SA;BYHOUR=18;BYMINUTE=30;BYSECOND=0.
func RRuleString(t models.Trigger) string {
	opt := options(t, time.Time{})
	return opt.RRuleString()
}

// NextFire is the first occurrence of t after after, in after's location.
func NextFire(t models.Trigger, after time.Time) (time.Time, error) {
	r, err := Rule(t, after)
	if err != nil {
		return time.Time{}, err
	}
	next := r.After(after, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("trigger %s never fires", t.Identifier)
	}
	return skipGap(t, next), nil
}

// skipGap moves an occurrence whose wall time falls in a DST gap forward by
// the skipped offset. rrule normalizes a missing 02:30 back to 01:30 standard
// time; the reminder fires at 03:30 daylight time instead, as time.Date does.
func skipGap(t models.Trigger, next time.Time) time.Time {
	const minutesPerDay = 24 * 60
	early := t.Hour*60 + t.Minute - (next.Hour()*60 + next.Minute())
	// A gap before midnight wraps the wall clock to the previous day.
	if early <= -minutesPerDay/2 {
		early += minutesPerDay
	}
	if early <= 0 {
		return next
	}
	return next.Add(time.Duration(early) * time.Minute)
}
