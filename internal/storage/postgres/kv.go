package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/studyclock/internal/models"
)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = $1", key)
	return err
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM kv WHERE key LIKE $1 ORDER BY key", escaped+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *Store) SaveSchedules(ctx context.Context, schedules []models.ScheduledActivity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scheduled_activities (guid, activity_identifier, scheduled_on, label)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guid) DO UPDATE SET
			activity_identifier = EXCLUDED.activity_identifier,
			scheduled_on = LEAST(scheduled_activities.scheduled_on, EXCLUDED.scheduled_on),
			label = EXCLUDED.label`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sa := range schedules {
		if _, err := stmt.ExecContext(ctx, sa.GUID, sa.ActivityIdentifier, sa.ScheduledOn.UTC(), sa.Label); err != nil {
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
		if err := rows.Scan(&sa.GUID, &sa.ActivityIdentifier, &sa.ScheduledOn, &sa.Label); err != nil {
			return nil, err
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
	if result.Answers == nil {
		answers = []byte("{}")
	}
	var startedAt sql.NullTime
	if !result.StartedAt.IsZero() {
		startedAt = sql.NullTime{Time: result.StartedAt.UTC(), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activity_results (id, activity_identifier, category, day_of_study, started_at, finished_at, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.ID,
		result.ActivityIdentifier,
		string(result.Category),
		result.DayOfStudy,
		startedAt,
		result.FinishedAt.UTC(),
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
		var category string
		var startedAt sql.NullTime
		var answers []byte
		if err := rows.Scan(&r.ID, &r.ActivityIdentifier, &category, &r.DayOfStudy, &startedAt, &r.FinishedAt, &answers); err != nil {
			return nil, err
		}
		r.Category = models.Category(category)
		if startedAt.Valid {
			r.StartedAt = startedAt.Time
		}
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return nil, fmt.Errorf("decoding answers for %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
