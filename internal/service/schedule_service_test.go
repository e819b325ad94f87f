package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type mockScheduleRepo struct {
	schedules []models.ExamSchedule
	calls     int
}

func (m *mockScheduleRepo) ListClosed(ctx context.Context, filter models.ScheduleFilter) ([]models.ExamSchedule, error) {
	m.calls++
	return m.schedules, nil
}

func (m *mockScheduleRepo) ListExistingDates(ctx context.Context) ([]string, error) {
	dates := make([]string, 0, len(m.schedules))
	for _, schedule := range m.schedules {
		dates = append(dates, schedule.ExamDate)
	}
	return dates, nil
}

// jsonCacheStore round-trips values through JSON like the Redis-backed store.
type jsonCacheStore struct {
	values map[string][]byte
	sets   int
}

func (m *jsonCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *jsonCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *jsonCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = nil
	return nil
}

func TestScheduleServiceListClosedGroupsAndCaches(t *testing.T) {
	repo := &mockScheduleRepo{schedules: []models.ExamSchedule{
		{ID: "s1", ExamDate: "2025-03-02", Session: models.SessionMorning, Status: models.ScheduleStatusClosed},
		{ID: "s2", ExamDate: "2025-02-14", Session: models.SessionAfternoon, Status: models.ScheduleStatusClosed},
	}}
	cache := &jsonCacheStore{}
	svc := NewScheduleService(repo, cache, time.Minute, nil)

	groups, err := svc.ListClosed(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Months, 2)
	assert.Equal(t, "March 2025", groups[0].Months[0].Label)
	assert.Equal(t, "February 2025", groups[0].Months[1].Label)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from the cache.
	cached, err := svc.ListClosed(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	assert.Equal(t, groups, cached)
	assert.Equal(t, 1, repo.calls)
}

func TestScheduleServiceCacheKeyVariesByFilter(t *testing.T) {
	repo := &mockScheduleRepo{}
	cache := &jsonCacheStore{}
	svc := NewScheduleService(repo, cache, time.Minute, nil)

	_, err := svc.ListClosed(context.Background(), models.ScheduleFilter{Query: "march"})
	require.NoError(t, err)
	_, err = svc.ListClosed(context.Background(), models.ScheduleFilter{Session: "morning"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.Len(t, cache.values, 2)
}

func TestScheduleServiceInvalidateCache(t *testing.T) {
	repo := &mockScheduleRepo{}
	cache := &jsonCacheStore{}
	svc := NewScheduleService(repo, cache, time.Minute, nil)

	_, err := svc.ListClosed(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, cache.values)

	svc.InvalidateCache(context.Background())
	assert.Empty(t, cache.values)

	_, err = svc.ListClosed(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestScheduleServiceWorksWithoutCache(t *testing.T) {
	repo := &mockScheduleRepo{schedules: []models.ExamSchedule{
		{ID: "s1", ExamDate: "2025-03-02", Session: models.SessionMorning, Status: models.ScheduleStatusClosed},
	}}
	svc := NewScheduleService(repo, nil, time.Minute, nil)

	groups, err := svc.ListClosed(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	svc.InvalidateCache(context.Background())
}

// wrappingMissCacheStore reports misses wrapped in another error, the way a
// caller adding context would.
type wrappingMissCacheStore struct {
	jsonCacheStore
}

func (m *wrappingMissCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	if err := m.jsonCacheStore.Get(ctx, key, dest); err != nil {
		return fmt.Errorf("cache lookup: %w", err)
	}
	return nil
}

func TestScheduleServiceTreatsWrappedMissAsMiss(t *testing.T) {
	repo := &mockScheduleRepo{schedules: []models.ExamSchedule{
		{ID: "s1", ExamDate: "2025-03-02", Session: models.SessionMorning, Status: models.ScheduleStatusClosed},
	}}
	core, logs := observer.New(zap.WarnLevel)
	svc := NewScheduleService(repo, &wrappingMissCacheStore{}, time.Minute, zap.New(core))

	groups, err := svc.ListClosed(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, repo.calls)
	assert.Zero(t, logs.FilterMessage("closed schedule cache read failed").Len())
}
