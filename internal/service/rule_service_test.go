package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type mockRuleRepo struct {
	rules   []models.RecommendationRule
	courses []models.Course
	nextID  int
}

func (m *mockRuleRepo) List(ctx context.Context, filter models.RuleFilter) ([]models.RecommendationRule, error) {
	out := make([]models.RecommendationRule, 0, len(m.rules))
	for _, rule := range m.rules {
		if filter.PersonalityType != "" && rule.PersonalityType != filter.PersonalityType {
			continue
		}
		if filter.AcademicYear != "" && rule.AcademicYear != filter.AcademicYear {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

func (m *mockRuleRepo) FindByID(ctx context.Context, id string) (*models.RecommendationRule, error) {
	for i := range m.rules {
		if m.rules[i].ID == id {
			cp := m.rules[i]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *models.RecommendationRule) error {
	m.nextID++
	rule.ID = fmt.Sprintf("r%d", m.nextID)
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *mockRuleRepo) BulkCreate(ctx context.Context, rules []models.RecommendationRule) error {
	for i := range rules {
		m.nextID++
		rules[i].ID = fmt.Sprintf("r%d", m.nextID)
		m.rules = append(m.rules, rules[i])
	}
	return nil
}

func (m *mockRuleRepo) Update(ctx context.Context, rule *models.RecommendationRule) error {
	for i := range m.rules {
		if m.rules[i].ID == rule.ID {
			m.rules[i] = *rule
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockRuleRepo) Delete(ctx context.Context, id string) error {
	for i := range m.rules {
		if m.rules[i].ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockRuleRepo) CountByPersonalityType(ctx context.Context, academicYear string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, rule := range m.rules {
		if rule.AcademicYear == academicYear {
			counts[rule.PersonalityType]++
		}
	}
	return counts, nil
}

func (m *mockRuleRepo) ListCourses(ctx context.Context) ([]models.Course, error) {
	return m.courses, nil
}

type mockCacheStore struct {
	values map[string]interface{}
}

func (m *mockCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *mockCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string]interface{})
	}
	m.values[key] = value
	return nil
}

func (m *mockCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = nil
	return nil
}

func intPtr(v int) *int { return &v }

func newRuleFixture() (*RuleService, *mockRuleRepo, *mockCacheStore) {
	repo := &mockRuleRepo{courses: []models.Course{
		{ID: "c1", Name: "Computer Science", PassingRate: intPtr(75)},
		{ID: "c2", Name: "Nursing", PassingRate: intPtr(90)},
		{ID: "c3", Name: "General Studies"},
	}}
	cache := &mockCacheStore{}
	svc := NewRuleService(repo, cache, nil, nil, nil, RulesConfig{DefaultPassingRate: 80, SnapshotTTL: time.Hour})
	return svc, repo, cache
}

func TestRuleServiceCompatibleCoursesBoundary(t *testing.T) {
	svc, _, _ := newRuleFixture()

	// min == passing rate must pass the filter.
	courses, err := svc.CompatibleCourses(context.Background(), 75)
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Science"}, courses)

	courses, err = svc.CompatibleCourses(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Science", "General Studies", "Nursing"}, courses)

	courses, err = svc.CompatibleCourses(context.Background(), 70)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestRuleServiceListGroupedHidesIncompatible(t *testing.T) {
	svc, repo, _ := newRuleFixture()
	repo.rules = []models.RecommendationRule{
		{ID: "r1", PersonalityType: "INTJ", MinScore: 80, MaxScore: 100, RecommendedCourse: "Computer Science", AcademicYear: "2026-2027"},
		// min 70 < Nursing's passing rate 90: hidden from grouped output.
		{ID: "r2", PersonalityType: "INTJ", MinScore: 70, MaxScore: 89, RecommendedCourse: "Nursing", AcademicYear: "2026-2027"},
	}

	groups, err := svc.ListGrouped(context.Background(), models.RuleFilter{AcademicYear: "2026-2027"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Total)
	assert.Equal(t, "80%-100%", groups[0].Ranges[0].Range)
}

func TestRuleServiceCreateOneRulePerCourse(t *testing.T) {
	svc, repo, _ := newRuleFixture()

	created, err := svc.Create(context.Background(), "u1", dto.CreateRuleRequest{
		PersonalityType: "ENFP",
		MinScore:        90,
		MaxScore:        100,
		Courses:         []string{"Computer Science", "Nursing"},
		AcademicYear:    "2026-2027",
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Len(t, repo.rules, 2)
}

func TestRuleServiceCreateRejectsIncompatibleCourse(t *testing.T) {
	svc, repo, _ := newRuleFixture()

	_, err := svc.Create(context.Background(), "u1", dto.CreateRuleRequest{
		PersonalityType: "ENFP",
		MinScore:        80,
		MaxScore:        100,
		Courses:         []string{"Nursing"},
		AcademicYear:    "2026-2027",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.rules)
}

func TestRuleServiceCreateNormalizesSwappedBounds(t *testing.T) {
	svc, repo, _ := newRuleFixture()

	created, err := svc.Create(context.Background(), "u1", dto.CreateRuleRequest{
		PersonalityType: "ISTJ",
		MinScore:        100,
		MaxScore:        80,
		Courses:         []string{"Computer Science"},
		AcademicYear:    "2026-2027",
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 80, created[0].MinScore)
	assert.Equal(t, 100, created[0].MaxScore)
	assert.Len(t, repo.rules, 1)
}

func TestRuleServiceGenerateAllReportsCreatedAndDelta(t *testing.T) {
	svc, repo, cache := newRuleFixture()
	repo.rules = []models.RecommendationRule{
		{ID: "r1", PersonalityType: "INTJ", MinScore: 80, MaxScore: 100, RecommendedCourse: "Computer Science", AcademicYear: "2026-2027"},
	}

	result, err := svc.GenerateAll(context.Background(), "u1", "2026-2027")
	require.NoError(t, err)

	// Only the 80-100 band clears any passing rate (CS 75, General Studies
	// default 80); Nursing at 90 clears none of the default bands' minima
	// except none (80 < 90). INTJ already holds the CS 80-100 slot.
	assert.Equal(t, 16*2-1, result.TotalCreated)
	assert.Equal(t, 1, result.Created["INTJ"])
	assert.Equal(t, 2, result.Created["ENFP"])
	assert.Equal(t, result.TotalCreated, sumCounts(result.Delta))
	assert.NotEmpty(t, cache.values)
}

func TestRuleServiceGenerateAllRequiresAcademicYear(t *testing.T) {
	svc, _, _ := newRuleFixture()

	_, err := svc.GenerateAll(context.Background(), "u1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}
