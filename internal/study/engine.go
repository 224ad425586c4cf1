// Package study wires the calendar, rotation, completion and reminder
// components into the operations the CLI and dashboard call.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/completion"
	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/reminders"
	"github.com/julianstephens/studyclock/internal/rotation"
	"github.com/julianstephens/studyclock/internal/storage"
	"github.com/julianstephens/studyclock/internal/survey"
)

// ErrNoActiveSession is returned when finishing a category that was never started.
var ErrNoActiveSession = errors.New("no activity in progress")

// Engine is the participant's study state over one store.
type Engine struct {
	store     storage.Provider
	clock     *clock.Clock
	tracker   *completion.Tracker
	reminders *reminders.Manager
	log       *log.Logger
}

func NewEngine(store storage.Provider, clk *clock.Clock, rem *reminders.Manager) *Engine {
	return &Engine{
		store:     store,
		clock:     clk,
		tracker:   completion.NewTracker(store),
		reminders: rem,
		log:       logger.With("component", "study"),
	}
}

func (e *Engine) Clock() *clock.Clock { return e.clock }

func (e *Engine) Tracker() *completion.Tracker { return e.tracker }

func (e *Engine) Reminders() *reminders.Manager { return e.reminders }

// StudyDay derives the study start date and today's study day from the
// stored schedules. Recomputed on every call.
func (e *Engine) StudyDay(ctx context.Context) (start time.Time, day int, err error) {
	schedules, err := e.store.GetSchedules(ctx)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("loading schedules: %w", err)
	}
	now := e.clock.Now()
	loc := e.clock.Location()
	start = clock.StudyStartDate(schedules, now, loc)
	return start, clock.DayOfStudy(start, now, loc), nil
}

// CategoryState is one activity row of the dashboard.
type CategoryState struct {
	Category  models.Category
	Title     string
	Detail    string
	Variant   string
	Complete  bool
	Scheduled bool
	Weekly    bool
}

// Snapshot is everything the dashboard shows for the current instant.
type Snapshot struct {
	Now               time.Time
	StartDate         time.Time
	Day               int
	Week              int
	HeaderTitle       string
	HeaderText        string
	DayTitle          string
	DayLabel          string
	Expires           string
	ExpiresWeekly     string
	ShowWeekly        bool
	Daily             []CategoryState
	Weekly            []CategoryState
	AllDailyComplete  bool
	AllWeeklyComplete bool
}

// Today builds the dashboard snapshot.
func (e *Engine) Today(ctx context.Context) (Snapshot, error) {
	schedules, err := e.store.GetSchedules(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading schedules: %w", err)
	}
	now := e.clock.Now()
	loc := e.clock.Location()
	start := clock.StudyStartDate(schedules, now, loc)
	day := clock.DayOfStudy(start, now, loc)

	snap := Snapshot{
		Now:       now,
		StartDate: start,
		Day:       day,
		Week:      clock.WeekOfStudy(day),
	}
	if snap.Daily, snap.AllDailyComplete, err = e.states(ctx, day, rotation.DailyCategories(day), schedules, false); err != nil {
		return Snapshot{}, err
	}
	if snap.Weekly, snap.AllWeeklyComplete, err = e.states(ctx, day, rotation.WeeklyCategories(day), schedules, true); err != nil {
		return Snapshot{}, err
	}
	applyLabels(&snap, now, loc)
	return snap, nil
}

func (e *Engine) states(ctx context.Context, day int, categories []models.Category, schedules []models.ScheduledActivity, weekly bool) ([]CategoryState, bool, error) {
	out := make([]CategoryState, 0, len(categories))
	all := true
	for _, c := range categories {
		done, err := e.tracker.IsComplete(ctx, c, day)
		if err != nil {
			return nil, false, err
		}
		variant, err := rotation.Variant(c, day)
		if err != nil {
			return nil, false, err
		}
		_, schedErr := rotation.Scheduled(c, day, schedules)
		out = append(out, CategoryState{
			Category:  c,
			Title:     c.MustSpec().Title,
			Variant:   variant,
			Complete:  done,
			Scheduled: schedErr == nil,
			Weekly:    weekly,
		})
		all = all && done
	}
	for i := range out {
		out[i].Detail = activityDetail(out[i], day)
	}
	return out, all, nil
}

// Start resolves the activity due today for category and remembers the
// study day it was started on. ErrNoSchedule means the sync has not delivered
// the variant yet and nothing may be launched.
func (e *Engine) Start(ctx context.Context, category models.Category) (models.ActiveSession, models.ScheduledActivity, error) {
	if !category.Valid() {
		return models.ActiveSession{}, models.ScheduledActivity{}, fmt.Errorf("invalid category: %s", category)
	}
	schedules, err := e.store.GetSchedules(ctx)
	if err != nil {
		return models.ActiveSession{}, models.ScheduledActivity{}, fmt.Errorf("loading schedules: %w", err)
	}
	now := e.clock.Now()
	start := clock.StudyStartDate(schedules, now, e.clock.Location())
	day := clock.DayOfStudy(start, now, e.clock.Location())

	scheduled, err := rotation.Scheduled(category, day, schedules)
	if err != nil {
		if errors.Is(err, rotation.ErrNoSchedule) {
			e.log.Warn("Cannot start activity", "category", category, "day", day, "error", err)
		}
		return models.ActiveSession{}, models.ScheduledActivity{}, err
	}

	session := models.ActiveSession{
		Category:           category,
		ActivityIdentifier: scheduled.ActivityIdentifier,
		DayOfStudy:         day,
		StartedAt:          now,
	}
	if err := storage.SetJSON(ctx, e.store, sessionKey(category), session); err != nil {
		return models.ActiveSession{}, models.ScheduledActivity{}, err
	}
	e.log.Info("Activity started", "category", category, "variant", scheduled.ActivityIdentifier, "day", day)
	return session, scheduled, nil
}

func sessionKey(c models.Category) string {
	return constants.SettingActiveSessionPrefix + string(c)
}

// ActiveSession returns the started but unfinished activity for category.
func (e *Engine) ActiveSession(ctx context.Context, category models.Category) (models.ActiveSession, bool, error) {
	var s models.ActiveSession
	found, err := storage.GetJSON(ctx, e.store, sessionKey(category), &s)
	return s, found, err
}

// Outcome reports what happened when an activity was finished.
type Outcome struct {
	Result models.ActivityResult
	// ReminderStep is offered after the activity when its reminder has never
	// been answered.
	ReminderStep        reminders.Step
	NeedsReminderPrompt bool
}

// Finish records the result of the active session for category, credits the
// study day the session started on and applies any reminder answers.
func (e *Engine) Finish(ctx context.Context, category models.Category, result *survey.Result) (Outcome, error) {
	session, found, err := e.ActiveSession(ctx, category)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, fmt.Errorf("%w for %s", ErrNoActiveSession, category)
	}
	if result == nil {
		result = survey.NewResult(session.ActivityIdentifier)
	}

	answers := make(map[string]any, len(result.Answers)+1)
	for k, v := range result.Answers {
		answers[k] = v
	}
	answers[constants.AnswerDayOfStudy] = session.DayOfStudy

	record := models.ActivityResult{
		ID:                 uuid.NewString(),
		ActivityIdentifier: session.ActivityIdentifier,
		Category:           category,
		DayOfStudy:         session.DayOfStudy,
		StartedAt:          session.StartedAt,
		FinishedAt:         e.clock.Now(),
		Answers:            answers,
	}
	if err := e.store.AddResult(ctx, record); err != nil {
		return Outcome{}, fmt.Errorf("saving result: %w", err)
	}
	if err := e.tracker.MarkComplete(ctx, category, session.DayOfStudy); err != nil {
		return Outcome{}, err
	}
	if err := e.store.Delete(ctx, sessionKey(category)); err != nil {
		return Outcome{}, err
	}
	e.log.Info("Activity finished", "category", category, "variant", session.ActivityIdentifier, "day", session.DayOfStudy)

	// The activity is recorded; a reminder that fails to arm must not undo that.
	if err := e.reminders.UpdateFromResult(ctx, result); err != nil {
		e.log.Warn("Failed to apply reminder answers", "category", category, "error", err)
	}

	_, today, err := e.StudyDay(ctx)
	if err != nil {
		return Outcome{}, err
	}
	step, err := e.reminders.Step(ctx, category.ReminderType(), today, false)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Result: record, ReminderStep: step, NeedsReminderPrompt: !step.ShouldSkip}, nil
}

// NeedsWeekOneComplete reports whether the week-1-complete interstitial is
// due: the participant is past week 1 and has not seen it.
func (e *Engine) NeedsWeekOneComplete(ctx context.Context) (bool, error) {
	_, day, err := e.StudyDay(ctx)
	if err != nil {
		return false, err
	}
	if clock.IsFirstWeek(day) {
		return false, nil
	}
	shown, _, err := storage.GetBool(ctx, e.store, constants.SettingHasShownWeek1Complete)
	return !shown, err
}

func (e *Engine) MarkWeekOneCompleteShown(ctx context.Context) error {
	return storage.SetBool(ctx, e.store, constants.SettingHasShownWeek1Complete, true)
}

// WeekOneCompleteSteps are the forced weekly reminder steps shown with the interstitial.
func (e *Engine) WeekOneCompleteSteps(ctx context.Context) ([]reminders.Step, error) {
	_, day, err := e.StudyDay(ctx)
	if err != nil {
		return nil, err
	}
	var steps []reminders.Step
	for _, t := range []models.ReminderType{models.ReminderPhysical, models.ReminderCognition} {
		s, err := e.reminders.Step(ctx, t, day, true)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}
