// Package config resolves the runtime configuration assembled from flags,
// environment variables, .env files and the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/keyring"
	"github.com/julianstephens/studyclock/internal/storage"
)

// NotifierKind selects where armed reminder triggers go.
type NotifierKind string

const (
	// NotifierLocal persists triggers in the store for the notify command.
	NotifierLocal NotifierKind = "local"
	// NotifierAMQP persists locally and also publishes to RabbitMQ.
	NotifierAMQP NotifierKind = "amqp"
	// NotifierLog only logs arm and cancel requests.
	NotifierLog NotifierKind = "log"
)

// Environment variables read outside of kong flag tags.
const (
	EnvDBConnection = "STUDYCLOCK_DB_CONNECTION"
)

var ErrInvalidNotifier = errors.New("invalid notifier")

type Config struct {
	// Storage is a SQLite path, PostgreSQL URL or DSN, Redis URL, or "memory".
	Storage        string
	Timezone       string
	Notifier       NotifierKind
	AMQPURL        string
	AMQPExchange   string
	RedisNamespace string
	GraceMinutes   int
	Debug          bool
	LogJSON        bool

	// Resolved by Resolve
	Location       *time.Location
	StorageOptions storage.Options
	ConfigDir      string
}

// LoadEnv loads .env from the working directory and from the application's
// config directory. Missing files are skipped; variables already set win.
func LoadEnv() error {
	var files []string
	for _, candidate := range []string{".env", filepath.Join(DefaultConfigDir(), ".env")} {
		if _, err := os.Stat(candidate); err == nil {
			files = append(files, candidate)
		}
	}
	if len(files) == 0 {
		return nil
	}
	return godotenv.Load(files...)
}

// DefaultConfigDir is ~/.config/studyclock, or a relative fallback when the
// home directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + constants.AppName
	}
	return filepath.Join(home, ".config", constants.AppName)
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Resolve validates c and fills in the derived fields. When Storage is the
// default path, a connection string from STUDYCLOCK_DB_CONNECTION or the OS
// keyring takes its place.
func (c *Config) Resolve() error {
	if c.Notifier == "" {
		c.Notifier = NotifierLocal
	}
	switch c.Notifier {
	case NotifierLocal, NotifierAMQP, NotifierLog:
	default:
		return fmt.Errorf("%w: %q (must be local, amqp, or log)", ErrInvalidNotifier, c.Notifier)
	}
	if c.GraceMinutes <= 0 {
		c.GraceMinutes = constants.DefaultNotificationGracePeriodMin
	}
	if c.AMQPExchange == "" {
		c.AMQPExchange = constants.DefaultAMQPExchange
	}

	loc, err := clock.LoadLocation(c.Timezone)
	if err != nil {
		return err
	}
	c.Location = loc

	if c.Storage == "" {
		c.Storage = constants.DefaultConfigPath
	}
	c.StorageOptions = storage.Options{RedisNamespace: c.RedisNamespace}
	if c.Storage == constants.DefaultConfigPath {
		if connStr := c.trustedConnectionString(); connStr != "" {
			c.Storage = connStr
			c.StorageOptions.TrustedSource = true
		}
	}

	if storage.DetectBackend(c.Storage) == storage.BackendSQLite {
		path, err := ExpandPath(c.Storage)
		if err != nil {
			return err
		}
		c.Storage = path
		c.ConfigDir = filepath.Dir(path)
	} else {
		c.ConfigDir = DefaultConfigDir()
	}

	if c.Notifier == NotifierAMQP && c.AMQPURL == "" {
		url, err := keyring.Get(keyring.AccountAMQP)
		if err != nil {
			return fmt.Errorf("amqp notifier requires STUDYCLOCK_AMQP_URL or a keyring entry: %w", err)
		}
		c.AMQPURL = url
	}
	return nil
}

func (c *Config) trustedConnectionString() string {
	if connStr := os.Getenv(EnvDBConnection); connStr != "" {
		return connStr
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		return ""
	}
	return connStr
}

// Grace is how late a missed reminder may still be delivered.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.GraceMinutes) * time.Minute
}
