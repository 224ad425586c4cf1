package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/studyclock/internal/models"
)

// Store is a process-local provider. Nothing survives Close.
type Store struct {
	mu        sync.RWMutex
	kv        map[string]string
	schedules map[string]models.ScheduledActivity
	results   []models.ActivityResult
}

func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.kv = make(map[string]string)
	s.schedules = make(map[string]models.ScheduledActivity)
	s.results = nil
}

func (s *Store) Init() error  { return nil }
func (s *Store) Load() error  { return nil }
func (s *Store) Close() error { return nil }

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.kv[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, key)
	return nil
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) SaveSchedules(_ context.Context, schedules []models.ScheduledActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sa := range schedules {
		if prev, ok := s.schedules[sa.GUID]; ok {
			sa = prev.Reissue(sa)
		}
		s.schedules[sa.GUID] = sa
	}
	return nil
}

func (s *Store) GetSchedules(_ context.Context) ([]models.ScheduledActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScheduledActivity, 0, len(s.schedules))
	for _, sa := range s.schedules {
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

func (s *Store) AddResult(_ context.Context, result models.ActivityResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *Store) GetResults(_ context.Context) ([]models.ActivityResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ActivityResult, len(s.results))
	copy(out, s.results)
	return out, nil
}

func (s *Store) Wipe(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Store) GetConfigPath() string {
	return "memory"
}
