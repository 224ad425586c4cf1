package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/studyclock/internal/backup"
	"github.com/julianstephens/studyclock/internal/clock"
	"github.com/julianstephens/studyclock/internal/config"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
	"github.com/julianstephens/studyclock/internal/notifier"
	"github.com/julianstephens/studyclock/internal/reminders"
	"github.com/julianstephens/studyclock/internal/storage"
	"github.com/julianstephens/studyclock/internal/study"
)

type Context struct {
	Config    *config.Config
	Store     storage.Provider
	Clock     *clock.Clock
	Registry  *notifier.Registry
	Armer     notifier.Armer
	Reminders *reminders.Manager
	Engine    *study.Engine

	amqp *notifier.AMQPArmer
}

// New wires the study engine over store. cfg must already be resolved.
// With the amqp notifier a broker connection is opened here; release it with Close.
func New(cfg *config.Config, store storage.Provider) (*Context, error) {
	c := &Context{
		Config: cfg,
		Store:  store,
		Clock:  clock.New(cfg.Location),
	}
	c.Registry = notifier.NewRegistry(store, cfg.Location)

	switch cfg.Notifier {
	case config.NotifierLog:
		c.Armer = notifier.LogArmer{}
	case config.NotifierAMQP:
		pub, err := notifier.NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to reminder gateway: %w", err)
		}
		c.amqp = notifier.NewAMQPArmer(pub)
		c.Armer = notifier.Multi{c.Registry, c.amqp}
	default:
		c.Armer = c.Registry
	}

	c.Reminders = reminders.NewManager(store, c.Armer)
	c.Engine = study.NewEngine(store, c.Clock, c.Reminders)
	return c, nil
}

// At pins the study clock to t so the engine answers as of that instant.
func (c *Context) At(t time.Time) {
	c.Clock = c.Clock.WithNow(func() time.Time { return t })
	c.Engine = study.NewEngine(c.Store, c.Clock, c.Reminders)
}

// Close releases the broker connection and the store.
func (c *Context) Close() error {
	if c.amqp != nil {
		if err := c.amqp.Close(); err != nil {
			logger.Warn("Failed to close reminder gateway connection", "error", err)
		}
	}
	return c.Store.Close()
}

// Backups returns the snapshot manager for a SQLite store. Other backends
// report false.
func (c *Context) Backups() (*backup.Manager, bool) {
	target := c.Store.GetConfigPath()
	if storage.DetectBackend(target) != storage.BackendSQLite {
		return nil, false
	}
	return backup.NewManager(target), true
}

// Snapshot backs up participant data before a destructive command. It is a
// no-op for non-SQLite backends and for a database that does not exist yet.
func (c *Context) Snapshot(reason string) (backup.Info, bool, error) {
	mgr, ok := c.Backups()
	if !ok {
		return backup.Info{}, false, nil
	}
	info, err := mgr.Create(reason)
	if errors.Is(err, backup.ErrNoDatabase) {
		return backup.Info{}, false, nil
	}
	if err != nil {
		return backup.Info{}, false, err
	}
	return info, true, nil
}

// Background is the context for a single CLI invocation.
func (c *Context) Background() context.Context {
	return context.Background()
}

// ParseAt parses an --at instant as RFC 3339, or as a date (YYYY-MM-DD)
// meaning noon of that day in loc.
func ParseAt(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (expected RFC 3339 or YYYY-MM-DD)", s)
	}
	return d.Add(12 * time.Hour), nil
}

// FormatStatus renders a completion mark for listings.
func FormatStatus(complete bool) string {
	if complete {
		return "✓"
	}
	return "○"
}

// FormatSetting renders a reminder setting for listings.
func FormatSetting(s models.ReminderSetting) string {
	switch {
	case !s.HasBeenScheduled:
		return "not set"
	case s.DoNotRemind:
		return "off"
	case s.Weekly():
		return fmt.Sprintf("%s at %s", s.Day.Plural(), s.Time)
	default:
		return fmt.Sprintf("daily at %s", s.Time)
	}
}
