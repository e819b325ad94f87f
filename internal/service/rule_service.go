package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type ruleRepository interface {
	List(ctx context.Context, filter models.RuleFilter) ([]models.RecommendationRule, error)
	FindByID(ctx context.Context, id string) (*models.RecommendationRule, error)
	Create(ctx context.Context, rule *models.RecommendationRule) error
	BulkCreate(ctx context.Context, rules []models.RecommendationRule) error
	Update(ctx context.Context, rule *models.RecommendationRule) error
	Delete(ctx context.Context, id string) error
	CountByPersonalityType(ctx context.Context, academicYear string) (map[string]int, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// personalityTypes enumerates the sixteen MBTI types targeted by bulk rule
// generation.
var personalityTypes = []string{
	"ISTJ", "ISFJ", "INFJ", "INTJ",
	"ISTP", "ISFP", "INFP", "INTP",
	"ESTP", "ESFP", "ENFP", "ENTP",
	"ESTJ", "ESFJ", "ENFJ", "ENTJ",
}

// generationBands are the default score bands a bulk generation run fills.
var generationBands = [][2]int{
	{80, 100},
	{60, 79},
	{40, 59},
}

// RulesConfig tunes rule service behaviour.
type RulesConfig struct {
	DefaultPassingRate int
	SnapshotTTL        time.Duration
}

// RuleService manages course recommendation rules.
type RuleService struct {
	repo      ruleRepository
	cache     cacheStore
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	config    RulesConfig
}

// NewRuleService constructs a RuleService.
func NewRuleService(repo ruleRepository, cache cacheStore, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config RulesConfig) *RuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultPassingRate <= 0 {
		config.DefaultPassingRate = 80
	}
	if config.SnapshotTTL <= 0 {
		config.SnapshotTTL = time.Hour
	}
	return &RuleService{repo: repo, cache: cache, audit: audit, validator: validate, logger: logger, config: config}
}

// passingRate resolves a course's threshold, falling back to the default when
// the course is unknown or carries no rate.
func (s *RuleService) passingRate(rates map[string]int, course string) int {
	if rate, ok := rates[course]; ok {
		return rate
	}
	return s.config.DefaultPassingRate
}

// courseRates loads the course catalog as a name-to-threshold map.
func (s *RuleService) courseRates(ctx context.Context) (map[string]int, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}
	rates := make(map[string]int, len(courses))
	for _, course := range courses {
		if course.PassingRate != nil {
			rates[course.Name] = *course.PassingRate
		} else {
			rates[course.Name] = s.config.DefaultPassingRate
		}
	}
	return rates, nil
}

// ListGrouped returns rules grouped by personality type and score range. The
// compatibility filter hides rules whose minimum score falls below the
// recommended course's passing rate; min == rate passes.
func (s *RuleService) ListGrouped(ctx context.Context, filter models.RuleFilter) ([]dto.RuleTypeGroup, error) {
	rules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recommendation rules")
	}
	rates, err := s.courseRates(ctx)
	if err != nil {
		return nil, err
	}

	visible := rules[:0]
	for _, rule := range rules {
		if rule.MinScore >= s.passingRate(rates, rule.RecommendedCourse) {
			visible = append(visible, rule)
		}
	}
	return groupRulesByType(visible), nil
}

// CompatibleCourses returns the course names selectable for a score band: a
// course qualifies when the band's minimum score meets its passing rate.
func (s *RuleService) CompatibleCourses(ctx context.Context, minScore int) ([]string, error) {
	rates, err := s.courseRates(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rates))
	for name, rate := range rates {
		if minScore >= rate {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Create produces one rule per selected course.
func (s *RuleService) Create(ctx context.Context, actorID string, req dto.CreateRuleRequest) ([]models.RecommendationRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rule payload")
	}
	minScore, maxScore := req.MinScore, req.MaxScore
	if minScore > maxScore {
		minScore, maxScore = maxScore, minScore
	}

	rates, err := s.courseRates(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]models.RecommendationRule, 0, len(req.Courses))
	for _, course := range req.Courses {
		if minScore < s.passingRate(rates, course) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %q requires a minimum score of at least %d", course, s.passingRate(rates, course)))
		}
		rules = append(rules, models.RecommendationRule{
			PersonalityType:   req.PersonalityType,
			MinScore:          minScore,
			MaxScore:          maxScore,
			RecommendedCourse: course,
			AcademicYear:      req.AcademicYear,
		})
	}

	if err := s.repo.BulkCreate(ctx, rules); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create recommendation rules")
	}
	return rules, nil
}

// Update modifies a single rule.
func (s *RuleService) Update(ctx context.Context, id string, req dto.UpdateRuleRequest) (*models.RecommendationRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rule payload")
	}
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recommendation rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recommendation rule")
	}

	minScore, maxScore := req.MinScore, req.MaxScore
	if minScore > maxScore {
		minScore, maxScore = maxScore, minScore
	}
	rule.PersonalityType = req.PersonalityType
	rule.MinScore = minScore
	rule.MaxScore = maxScore
	rule.RecommendedCourse = req.RecommendedCourse
	rule.AcademicYear = req.AcademicYear

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update recommendation rule")
	}
	return rule, nil
}

// Delete removes a rule.
func (s *RuleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "recommendation rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete recommendation rule")
	}
	return nil
}

func snapshotKey(academicYear string) string {
	return fmt.Sprintf("rules:snapshot:%s", academicYear)
}

// GenerateAll fills every personality type's default score bands with rules
// for the compatible courses, skipping combinations that already exist. The
// response reports created counts per type plus the delta against the rule
// counts before the run, so callers get an authoritative "what changed"
// answer instead of diffing counts themselves.
func (s *RuleService) GenerateAll(ctx context.Context, actorID, academicYear string) (*dto.GenerateRulesResult, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}

	before, err := s.repo.CountByPersonalityType(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot rule counts")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotKey(academicYear), before, s.config.SnapshotTTL); err != nil {
			s.logger.Warn("failed to store rule count snapshot", zap.Error(err))
		}
	}

	existing, err := s.repo.List(ctx, models.RuleFilter{AcademicYear: academicYear})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list existing rules")
	}
	occupied := make(map[string]bool, len(existing))
	for _, rule := range existing {
		occupied[fmt.Sprintf("%s|%s|%s", rule.PersonalityType, scoreRangeLabel(rule.MinScore, rule.MaxScore), rule.RecommendedCourse)] = true
	}

	rates, err := s.courseRates(ctx)
	if err != nil {
		return nil, err
	}
	courseNames := make([]string, 0, len(rates))
	for name := range rates {
		courseNames = append(courseNames, name)
	}
	sort.Strings(courseNames)

	var batch []models.RecommendationRule
	created := make(map[string]int, len(personalityTypes))
	for _, personalityType := range personalityTypes {
		for _, band := range generationBands {
			for _, course := range courseNames {
				if band[0] < rates[course] {
					continue
				}
				key := fmt.Sprintf("%s|%s|%s", personalityType, scoreRangeLabel(band[0], band[1]), course)
				if occupied[key] {
					continue
				}
				batch = append(batch, models.RecommendationRule{
					PersonalityType:   personalityType,
					MinScore:          band[0],
					MaxScore:          band[1],
					RecommendedCourse: course,
					AcademicYear:      academicYear,
				})
				created[personalityType]++
			}
		}
	}

	if len(batch) > 0 {
		if err := s.repo.BulkCreate(ctx, batch); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate recommendation rules")
		}
	}

	after, err := s.repo.CountByPersonalityType(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count generated rules")
	}
	delta := make(map[string]int, len(after))
	for personalityType, count := range after {
		if diff := count - before[personalityType]; diff != 0 {
			delta[personalityType] = diff
		}
	}

	result := &dto.GenerateRulesResult{TotalCreated: len(batch), Created: created, Delta: delta}
	if s.audit != nil {
		log := &models.AuditLog{
			Action:    models.AuditActionRuleGenerate,
			Resource:  "recommendation_rules",
			NewValues: []byte(fmt.Sprintf(`{"total_created":%d,"academic_year":%q}`, len(batch), academicYear)),
		}
		if actorID != "" {
			log.UserID = &actorID
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record rule generation audit log", zap.Error(err))
		}
	}
	return result, nil
}
