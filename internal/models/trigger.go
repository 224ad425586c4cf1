package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyclock/internal/constants"
)

// Trigger is a request to arm one recurring reminder alarm
type Trigger struct {
	Identifier string     `json:"identifier"`
	Hour       int        `json:"hour"`
	Minute     int        `json:"minute"`
	Weekday    Weekday    `json:"weekday,omitempty"`
	Recurring  bool       `json:"recurring"`
	Body       string     `json:"body"`
	ArmedAt    time.Time  `json:"armed_at"`
	LastSent   *time.Time `json:"last_sent,omitempty"`
}

// Weekly reports whether the trigger fires once a week.
func (t Trigger) Weekly() bool {
	return t.Weekday.Valid()
}

// FormatSchedule renders the trigger schedule for listings.
func (t Trigger) FormatSchedule() string {
	clock := time.Date(0, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format(constants.ReminderTimeFormat)
	if t.Weekly() {
		return fmt.Sprintf("%s at %s", t.Weekday.Plural(), clock)
	}
	return fmt.Sprintf("daily at %s", clock)
}
