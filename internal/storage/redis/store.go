package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/models"
)

const pingTimeout = 5 * time.Second

// Store keeps participant data in Redis under a namespace:
//
//	<ns>:kv:<key>          string values
//	<ns>:schedules         hash of GUID -> schedule JSON
//	<ns>:results           list of result JSON, oldest first
type Store struct {
	url       string
	namespace string
	client    *goredis.Client
}

// IsURL reports whether target names a Redis server.
func IsURL(target string) bool {
	return strings.HasPrefix(target, "redis://") || strings.HasPrefix(target, "rediss://")
}

func New(url, namespace string) *Store {
	if namespace == "" {
		namespace = constants.DefaultRedisNamespace
	}
	return &Store{url: url, namespace: namespace}
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, namespace string) *Store {
	s := New("", namespace)
	s.client = client
	return s
}

func (s *Store) connect() error {
	if s.client != nil {
		return nil
	}
	opts, err := goredis.ParseURL(s.url)
	if err != nil {
		return fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.client = client
	return nil
}

// Init connects; Redis needs no schema.
func (s *Store) Init() error {
	return s.connect()
}

func (s *Store) Load() error {
	return s.connect()
}

func (s *Store) Close() error {
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

func (s *Store) kvKey(key string) string {
	return s.namespace + ":kv:" + key
}

func (s *Store) schedulesKey() string {
	return s.namespace + ":schedules"
}

func (s *Store) resultsKey() string {
	return s.namespace + ":results"
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.kvKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.kvKey(key), value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.kvKey(key)).Err()
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	strip := s.kvKey("")
	var keys []string
	iter := s.client.Scan(ctx, 0, s.kvKey(escapeGlob(prefix))+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), strip))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func (s *Store) SaveSchedules(ctx context.Context, schedules []models.ScheduledActivity) error {
	if len(schedules) == 0 {
		return nil
	}
	guids := make([]string, len(schedules))
	for i, sa := range schedules {
		guids[i] = sa.GUID
	}
	existing, err := s.client.HMGet(ctx, s.schedulesKey(), guids...).Result()
	if err != nil {
		return err
	}

	merged := make(map[string]models.ScheduledActivity, len(schedules))
	for i, sa := range schedules {
		if prev, ok := merged[sa.GUID]; ok {
			sa = prev.Reissue(sa)
		} else if raw, ok := existing[i].(string); ok {
			var prev models.ScheduledActivity
			if err := json.Unmarshal([]byte(raw), &prev); err != nil {
				return fmt.Errorf("decoding schedule %s: %w", sa.GUID, err)
			}
			sa = prev.Reissue(sa)
		}
		merged[sa.GUID] = sa
	}

	values := make([]any, 0, len(merged)*2)
	for guid, sa := range merged {
		data, err := json.Marshal(sa)
		if err != nil {
			return fmt.Errorf("encoding schedule %s: %w", guid, err)
		}
		values = append(values, guid, string(data))
	}
	return s.client.HSet(ctx, s.schedulesKey(), values...).Err()
}

func (s *Store) GetSchedules(ctx context.Context) ([]models.ScheduledActivity, error) {
	raw, err := s.client.HGetAll(ctx, s.schedulesKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.ScheduledActivity, 0, len(raw))
	for guid, data := range raw {
		var sa models.ScheduledActivity
		if err := json.Unmarshal([]byte(data), &sa); err != nil {
			return nil, fmt.Errorf("decoding schedule %s: %w", guid, err)
		}
		out = append(out, sa)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledOn.Equal(out[j].ScheduledOn) {
			return out[i].GUID < out[j].GUID
		}
		return out[i].ScheduledOn.Before(out[j].ScheduledOn)
	})
	return out, nil
}

func (s *Store) AddResult(ctx context.Context, result models.ActivityResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", result.ID, err)
	}
	return s.client.RPush(ctx, s.resultsKey(), string(data)).Err()
}

func (s *Store) GetResults(ctx context.Context) ([]models.ActivityResult, error) {
	raw, err := s.client.LRange(ctx, s.resultsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.ActivityResult, 0, len(raw))
	for _, data := range raw {
		var r models.ActivityResult
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("decoding result: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Wipe(ctx context.Context) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, escapeGlob(s.namespace)+":*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) GetConfigPath() string {
	return s.url
}
