package study

import (
	"time"

	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/labels"
)

func applyLabels(s *Snapshot, now time.Time, loc *time.Location) {
	s.HeaderTitle = labels.HeaderTitle(s.Day)
	s.HeaderText = labels.HeaderText(s.Day)
	s.DayTitle = labels.DayTitleLabel(s.Day)
	s.DayLabel = labels.DayLabel(s.Day)
	s.Expires = labels.ExpiresLabel(s.Day, labels.TimeUntil(now, clock.EndOfDay(now, loc)), s.AllDailyComplete)
	s.ExpiresWeekly, s.ShowWeekly = labels.ExpiresWeeklyLabel(s.Day, labels.TimeUntil(now, clock.EndOfWeek(s.Day, now, loc)), s.AllWeeklyComplete)
}

func activityDetail(c CategoryState, day int) string {
	return labels.ActivityDetail(c.Category, day, c.Complete)
}
