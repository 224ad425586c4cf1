package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/studyclock/internal/storage/memory"
	"github.com/julianstephens/studyclock/internal/storage/postgres"
	"github.com/julianstephens/studyclock/internal/storage/redis"
	"github.com/julianstephens/studyclock/internal/storage/sqlite"
)

// Backend names the storage technology behind a target string
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMemory   Backend = "memory"
)

// Options tunes backend construction
type Options struct {
	// RedisNamespace prefixes every Redis key; empty uses the application name.
	RedisNamespace string
	// TrustedSource marks a target read from the OS keyring or the
	// environment, where an embedded PostgreSQL password is allowed.
	TrustedSource bool
}

// DetectBackend classifies a --config target: a PostgreSQL URL or DSN, a
// Redis URL, "memory", or otherwise a SQLite file path.
func DetectBackend(target string) Backend {
	switch {
	case target == "memory" || target == ":memory:":
		return BackendMemory
	case postgres.IsConnString(target) || strings.Contains(target, "host="):
		return BackendPostgres
	case redis.IsURL(target):
		return BackendRedis
	default:
		return BackendSQLite
	}
}

// Open constructs the provider for target without connecting to it.
// PostgreSQL targets must not embed a password unless opts.TrustedSource is set.
func Open(target string, opts Options) (Provider, error) {
	switch DetectBackend(target) {
	case BackendMemory:
		return memory.NewStore(), nil
	case BackendPostgres:
		if _, err := postgres.ValidateConnString(target); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) && opts.TrustedSource {
				return postgres.New(target), nil
			}
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; use the OS keyring, PGPASSWORD, or .pgpass instead: %w", err)
			}
			return nil, err
		}
		return postgres.New(target), nil
	case BackendRedis:
		return redis.New(target, opts.RedisNamespace), nil
	default:
		if strings.TrimSpace(target) == "" {
			return nil, errors.New("storage path cannot be empty")
		}
		return sqlite.NewStore(target), nil
	}
}

// Migrator is implemented by SQL-backed providers.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}
