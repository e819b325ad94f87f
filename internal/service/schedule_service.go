package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type scheduleRepository interface {
	ListClosed(ctx context.Context, filter models.ScheduleFilter) ([]models.ExamSchedule, error)
	ListExistingDates(ctx context.Context) ([]string, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleService serves the closed exam schedule browser.
type ScheduleService struct {
	repo     scheduleRepository
	cache    cacheStore
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, cache cacheStore, cacheTTL time.Duration, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ListClosed returns closed schedules grouped by year and month, newest
// first. Results for a filter are cached; cache failures fall through to the
// database.
func (s *ScheduleService) ListClosed(ctx context.Context, filter models.ScheduleFilter) ([]dto.ScheduleYearGroup, error) {
	key := s.cacheKey(filter)
	if s.cache != nil {
		var cached []dto.ScheduleYearGroup
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("closed schedule cache read failed", zap.Error(err))
		}
	}

	schedules, err := s.repo.ListClosed(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list closed schedules")
	}
	groups := groupSchedulesByYear(schedules)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, groups, s.cacheTTL); err != nil {
			s.logger.Warn("closed schedule cache write failed", zap.Error(err))
		}
	}
	return groups, nil
}

// InvalidateCache drops all cached closed-schedule listings. Called after
// settings changes create or close schedules.
func (s *ScheduleService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "schedules:closed:*"); err != nil {
		s.logger.Warn("closed schedule cache invalidation failed", zap.Error(err))
	}
}

func (s *ScheduleService) cacheKey(filter models.ScheduleFilter) string {
	sum := sha1.Sum([]byte(filter.Query + "|" + filter.Session))
	return fmt.Sprintf("schedules:closed:%s", hex.EncodeToString(sum[:]))
}
