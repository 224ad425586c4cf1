package storage

import (
	"context"

	"github.com/julianstephens/studyclock/internal/models"
)

// KV is the durable key-value surface holding completion flags, reminder
// settings, one-shot flags and armed triggers. Values are strings; use the
// typed helpers in this package to read and write bools, ints and JSON.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	KV

	// Schedules delivered by the activity sync, upserted by GUID
	SaveSchedules(ctx context.Context, schedules []models.ScheduledActivity) error
	GetSchedules(ctx context.Context) ([]models.ScheduledActivity, error)

	// Finished activity results
	AddResult(ctx context.Context, result models.ActivityResult) error
	GetResults(ctx context.Context) ([]models.ActivityResult, error)

	// Wipe deletes every participant record: key-value entries, schedules and results.
	Wipe(ctx context.Context) error

	// Utils
	GetConfigPath() string
}
