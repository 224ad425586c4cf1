package models

import "time"

// ScheduledActivity is one entry delivered by the activity sync
type ScheduledActivity struct {
	GUID               string    `json:"guid"`
	ActivityIdentifier string    `json:"activity_identifier"`
	ScheduledOn        time.Time `json:"scheduled_on"`
	Label              string    `json:"label,omitempty"`
}

// Reissue merges a re-delivered entry with the same GUID into sa. The sync
// may re-issue a schedule with a later date; the earliest date is kept so the
// study start date does not depend on delivery order.
func (sa ScheduledActivity) Reissue(next ScheduledActivity) ScheduledActivity {
	if sa.ScheduledOn.Before(next.ScheduledOn) {
		next.ScheduledOn = sa.ScheduledOn
	}
	return next
}

// ActivityResult records a finished activity, ready for upload
type ActivityResult struct {
	ID                 string         `json:"id"`
	ActivityIdentifier string         `json:"activity_identifier"`
	Category           Category       `json:"category"`
	DayOfStudy         int            `json:"day_of_study"`
	StartedAt          time.Time      `json:"started_at"`
	FinishedAt         time.Time      `json:"finished_at"`
	Answers            map[string]any `json:"answers,omitempty"`
}

// ActiveSession remembers which variant was launched and on which study day,
// so a task finished after midnight is still credited to the day it started.
type ActiveSession struct {
	Category           Category  `json:"category"`
	ActivityIdentifier string    `json:"activity_identifier"`
	DayOfStudy         int       `json:"day_of_study"`
	StartedAt          time.Time `json:"started_at"`
}
