package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyclock/internal/models"
)

func (s *Store) SaveSchedules(ctx context.Context, schedules []models.ScheduledActivity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	lookup, err := tx.PrepareContext(ctx, `SELECT scheduled_on FROM scheduled_activities WHERE guid = ?`)
	if err != nil {
		return err
	}
	defer lookup.Close()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO scheduled_activities (guid, activity_identifier, scheduled_on, label)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sa := range schedules {
		var existing string
		switch err := lookup.QueryRowContext(ctx, sa.GUID).Scan(&existing); {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read schedule %s: %w", sa.GUID, err)
		default:
			prev, err := time.Parse(time.RFC3339Nano, existing)
			if err != nil {
				return fmt.Errorf("parsing scheduled_on for %s: %w", sa.GUID, err)
			}
			sa = models.ScheduledActivity{ScheduledOn: prev}.Reissue(sa)
		}
		if _, err := stmt.ExecContext(ctx, sa.GUID, sa.ActivityIdentifier, sa.ScheduledOn.UTC().Format(time.RFC3339Nano), sa.Label); err != nil {
			return fmt.Errorf("failed to save schedule %s: %w", sa.GUID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetSchedules(ctx context.Context) ([]models.ScheduledActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guid, activity_identifier, scheduled_on, label
		FROM scheduled_activities ORDER BY scheduled_on, guid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScheduledActivity
	for rows.Next() {
		var sa models.ScheduledActivity
		var scheduledOn string
		if err := rows.Scan(&sa.GUID, &sa.ActivityIdentifier, &scheduledOn, &sa.Label); err != nil {
			return nil, err
		}
		sa.ScheduledOn, err = time.Parse(time.RFC3339Nano, scheduledOn)
		if err != nil {
			return nil, fmt.Errorf("parsing scheduled_on for %s: %w", sa.GUID, err)
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

func (s *Store) AddResult(ctx context.Context, result models.ActivityResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}
	var startedAt string
	if !result.StartedAt.IsZero() {
		startedAt = result.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activity_results (id, activity_identifier, category, day_of_study, started_at, finished_at, answers)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.ActivityIdentifier,
		string(result.Category),
		result.DayOfStudy,
		startedAt,
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(answers),
	)
	return err
}

func (s *Store) GetResults(ctx context.Context) ([]models.ActivityResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, activity_identifier, category, day_of_study, started_at, finished_at, answers
		FROM activity_results ORDER BY finished_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ActivityResult
	for rows.Next() {
		var r models.ActivityResult
		var category, startedAt, finishedAt, answers string
		if err := rows.Scan(&r.ID, &r.ActivityIdentifier, &category, &r.DayOfStudy, &startedAt, &finishedAt, &answers); err != nil {
			return nil, err
		}
		r.Category = models.Category(category)
		if startedAt != "" {
			if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
				return nil, fmt.Errorf("parsing started_at for %s: %w", r.ID, err)
			}
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parsing finished_at for %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
			return nil, fmt.Errorf("decoding answers for %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
