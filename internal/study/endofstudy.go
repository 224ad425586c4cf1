package study

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/rotation"
)

// EndOfStudyTask is one challenge of the end-of-study battery.
type EndOfStudyTask struct {
	Identifier string
	Complete   bool
}

// EndOfStudyTasks lists the challenges in their fixed order.
func (e *Engine) EndOfStudyTasks(ctx context.Context) ([]EndOfStudyTask, error) {
	var out []EndOfStudyTask
	for _, id := range rotation.EndOfStudyTasks() {
		done, err := e.tracker.IsEndOfStudyComplete(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, EndOfStudyTask{Identifier: id, Complete: done})
	}
	return out, nil
}

// CompleteEndOfStudy records a result for an end-of-study challenge and sets
// its flag. Completing a task twice records one result.
func (e *Engine) CompleteEndOfStudy(ctx context.Context, task string) error {
	done, err := e.tracker.IsEndOfStudyComplete(ctx, task)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	category, ok := models.CategoryForVariant(task)
	if !ok {
		return fmt.Errorf("no category for challenge %q", task)
	}
	_, day, err := e.StudyDay(ctx)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	record := models.ActivityResult{
		ID:                 uuid.NewString(),
		ActivityIdentifier: task,
		Category:           category,
		DayOfStudy:         day,
		StartedAt:          now,
		FinishedAt:         now,
		Answers: map[string]any{
			constants.AnswerDayOfStudy: day,
			constants.AnswerEndOfStudy: true,
		},
	}
	if err := e.store.AddResult(ctx, record); err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	if err := e.tracker.CompleteEndOfStudy(ctx, task); err != nil {
		return err
	}
	e.log.Info("End-of-study task completed", "task", task, "day", day)
	return nil
}

// Withdraw cancels every reminder trigger and wipes all participant data.
func (e *Engine) Withdraw(ctx context.Context) error {
	if err := e.reminders.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancelling reminders: %w", err)
	}
	if err := e.store.Wipe(ctx); err != nil {
		return fmt.Errorf("wiping participant data: %w", err)
	}
	e.log.Warn("Participant data wiped")
	return nil
}
