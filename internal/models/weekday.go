package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday is a reminder weekday code: 1 = Sunday through 7 = Saturday.
// The zero value means no weekday, i.e. a daily recurrence.
type Weekday int

const (
	NoWeekday Weekday = iota
	Sunday
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = map[string]Weekday{
	"sun":       Sunday,
	"sunday":    Sunday,
	"mon":       Monday,
	"monday":    Monday,
	"tue":       Tuesday,
	"tuesday":   Tuesday,
	"wed":       Wednesday,
	"wednesday": Wednesday,
	"thu":       Thursday,
	"thursday":  Thursday,
	"fri":       Friday,
	"friday":    Friday,
	"sat":       Saturday,
	"saturday":  Saturday,
}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Time converts the code to a time.Weekday. Only meaningful when Valid.
func (d Weekday) Time() time.Weekday {
	return time.Weekday(d - 1)
}

// WeekdayFromTime converts a time.Weekday to its reminder code.
func WeekdayFromTime(wd time.Weekday) Weekday {
	return Weekday(wd + 1)
}

func (d Weekday) String() string {
	if !d.Valid() {
		return ""
	}
	return d.Time().String()
}

// Plural renders the recurring form ("Sundays").
func (d Weekday) Plural() string {
	if !d.Valid() {
		return ""
	}
	return d.String() + "s"
}

// ParseWeekday accepts a day name, its three-letter abbreviation, or a code 1-7.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	num, err := strconv.Atoi(s)
	if err == nil && Weekday(num).Valid() {
		return Weekday(num), nil
	}
	return NoWeekday, fmt.Errorf("invalid weekday: %s", s)
}
