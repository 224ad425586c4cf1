package rotation

import (
	"errors"
	"fmt"

	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/models"
)

// ErrNoSchedule is returned when the activity sync has not delivered a
// schedule for the resolved variant. Callers must not launch the task.
var ErrNoSchedule = errors.New("no schedule available")

// Variant resolves the task variant due for category on day.
// During week 1 the rotation advances every day; afterwards it advances every week.
func Variant(category models.Category, day int) (string, error) {
	spec, ok := category.Spec()
	if !ok {
		return "", fmt.Errorf("unknown category %q", category)
	}
	if day < 1 {
		day = 1
	}
	counter := day
	if !clock.IsFirstWeek(day) {
		counter = clock.WeekOfStudy(day)
	}
	return pick(spec.Variants, counter), nil
}

// pick maps counter onto variants so that remainder 1 selects the first
// variant and remainder 0 the last.
func pick(variants []string, counter int) string {
	n := len(variants)
	return variants[(counter+n-1)%n]
}

// Scheduled finds the scheduled activity for the variant due on day.
func Scheduled(category models.Category, day int, schedules []models.ScheduledActivity) (models.ScheduledActivity, error) {
	variant, err := Variant(category, day)
	if err != nil {
		return models.ScheduledActivity{}, err
	}
	for _, s := range schedules {
		if s.ActivityIdentifier == variant {
			return s, nil
		}
	}
	return models.ScheduledActivity{}, fmt.Errorf("%w: %s", ErrNoSchedule, variant)
}

// DailyCategories lists the categories due every day on the given study day.
func DailyCategories(day int) []models.Category {
	out := []models.Category{}
	for _, c := range models.Categories() {
		if c.MustSpec().Policy == models.PeriodAlwaysDaily || clock.IsFirstWeek(day) {
			out = append(out, c)
		}
	}
	return out
}

// WeeklyCategories lists the categories due once per week on the given study day.
// It is empty during week 1.
func WeeklyCategories(day int) []models.Category {
	out := []models.Category{}
	if clock.IsFirstWeek(day) {
		return out
	}
	for _, c := range models.Categories() {
		if c.MustSpec().Policy == models.PeriodWeeklyAfterFirstWeek {
			out = append(out, c)
		}
	}
	return out
}

// EndOfStudyTasks lists every challenge variant offered at the end of the study.
func EndOfStudyTasks() []string {
	var tasks []string
	for _, c := range []models.Category{models.CategoryPhysical, models.CategoryCognition} {
		tasks = append(tasks, c.MustSpec().Variants...)
	}
	return tasks
}
