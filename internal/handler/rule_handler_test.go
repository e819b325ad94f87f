package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/internal/service"
)

type ruleRepoStub struct {
	rules   []models.RecommendationRule
	courses []models.Course
}

func (s *ruleRepoStub) List(ctx context.Context, filter models.RuleFilter) ([]models.RecommendationRule, error) {
	return s.rules, nil
}

func (s *ruleRepoStub) FindByID(ctx context.Context, id string) (*models.RecommendationRule, error) {
	return nil, nil
}

func (s *ruleRepoStub) Create(ctx context.Context, rule *models.RecommendationRule) error { return nil }

func (s *ruleRepoStub) BulkCreate(ctx context.Context, rules []models.RecommendationRule) error {
	return nil
}

func (s *ruleRepoStub) Update(ctx context.Context, rule *models.RecommendationRule) error {
	return nil
}

func (s *ruleRepoStub) Delete(ctx context.Context, id string) error { return nil }

func (s *ruleRepoStub) CountByPersonalityType(ctx context.Context, academicYear string) (map[string]int, error) {
	return map[string]int{}, nil
}

func (s *ruleRepoStub) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.courses, nil
}

func newRuleHandlerFixture(repo *ruleRepoStub) *RuleHandler {
	svc := service.NewRuleService(repo, nil, nil, nil, nil, service.RulesConfig{})
	return NewRuleHandler(svc, nil)
}

func TestRuleHandlerCompatibleCoursesRejectsBadScore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRuleHandlerFixture(&ruleRepoStub{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/guidance/recommendation-rules/compatible-courses?min_score=high", nil)
	c.Request = req

	handler.CompatibleCourses(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuleHandlerGenerateAllRequiresYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRuleHandlerFixture(&ruleRepoStub{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/guidance/generate-all-rules", nil)
	c.Request = req

	handler.GenerateAll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuleHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRuleHandlerFixture(&ruleRepoStub{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/guidance/recommendation-rules", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuleHandlerListGroupsRules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &ruleRepoStub{
		rules: []models.RecommendationRule{
			{ID: "r1", PersonalityType: "INTJ", MinScore: 80, MaxScore: 100, RecommendedCourse: "Computer Science", AcademicYear: "2025-2026"},
		},
		courses: []models.Course{{ID: "c1", Name: "Computer Science"}},
	}
	handler := newRuleHandlerFixture(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/guidance/recommendation-rules?personality_type=intj", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []struct {
			PersonalityType string `json:"personality_type"`
			Total           int    `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "INTJ", envelope.Data[0].PersonalityType)
	assert.Equal(t, 1, envelope.Data[0].Total)
}
