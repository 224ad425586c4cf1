package clock

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/models"
)

// Clock is the injectable time source used to derive the study day.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// New returns a clock reading the system time in loc.
func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{now: time.Now, loc: loc}
}

// NewFixed returns a clock pinned to t, in t's location.
func NewFixed(t time.Time) *Clock {
	return &Clock{now: func() time.Time { return t }, loc: t.Location()}
}

// WithNow returns a copy of the clock that reads from now.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{now: now, loc: c.loc}
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// StartOfDay floors t to midnight of its calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// StudyStartDate is the start of day of the earliest scheduledOn across all
// schedules. Re-issued schedules may appear in any order, so the minimum is
// taken rather than the first entry. With no schedules it falls back to today.
func StudyStartDate(schedules []models.ScheduledActivity, today time.Time, loc *time.Location) time.Time {
	if len(schedules) == 0 {
		return StartOfDay(today, loc)
	}
	earliest := schedules[0].ScheduledOn
	for _, s := range schedules[1:] {
		if s.ScheduledOn.Before(earliest) {
			earliest = s.ScheduledOn
		}
	}
	return StartOfDay(earliest, loc)
}

// DayOfStudy counts calendar days from start to today, 1-indexed.
// Dates are compared on the calendar in loc so time of day and DST shifts
// never move the result. Dates before start clamp to day 1.
func DayOfStudy(start, today time.Time, loc *time.Location) int {
	days := calendarDays(start.In(loc), today.In(loc)) + 1
	if days < 1 {
		return 1
	}
	return days
}

func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// WeekOfStudy maps a study day to its 1-indexed week. Days below 1 count as day 1.
func WeekOfStudy(day int) int {
	if day < 1 {
		day = 1
	}
	return ((day - 1) / constants.DaysPerWeek) + 1
}

// IsFirstWeek is the single week-1 boundary predicate shared by rotation,
// completion and labels.
func IsFirstWeek(day int) bool {
	return WeekOfStudy(day) <= 1
}

// DaysLeftInWeek counts the days remaining in day's study week, today included.
func DaysLeftInWeek(day int) int {
	if day < 1 {
		day = 1
	}
	return WeekOfStudy(day)*constants.DaysPerWeek - day + 1
}

// EndOfDay is the next midnight after now in loc.
func EndOfDay(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// EndOfWeek is the midnight that closes day's study week.
func EndOfWeek(day int, now time.Time, loc *time.Location) time.Time {
	end := EndOfDay(now, loc)
	y, m, d := end.Date()
	return time.Date(y, m, d+DaysLeftInWeek(day)-1, 0, 0, 0, 0, loc)
}
