package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/internal/service"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/response"
)

// RuleHandler exposes course recommendation rule routes.
type RuleHandler struct {
	rules   *service.RuleService
	metrics *service.MetricsService
}

// NewRuleHandler constructs a new RuleHandler.
func NewRuleHandler(rules *service.RuleService, metrics *service.MetricsService) *RuleHandler {
	return &RuleHandler{rules: rules, metrics: metrics}
}

// List godoc
// @Summary List recommendation rules grouped by personality type and score range
// @Tags RecommendationRules
// @Produce json
// @Param personality_type query string false "Filter by personality type"
// @Param academic_year query string false "Filter by academic year"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/recommendation-rules [get]
func (h *RuleHandler) List(c *gin.Context) {
	filter := models.RuleFilter{
		PersonalityType: strings.ToUpper(strings.TrimSpace(c.Query("personality_type"))),
		AcademicYear:    strings.TrimSpace(c.Query("academic_year")),
	}
	groups, err := h.rules.ListGrouped(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// CompatibleCourses godoc
// @Summary List courses whose passing rate admits a minimum score
// @Tags RecommendationRules
// @Produce json
// @Param min_score query int true "Minimum score of the rule being authored"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/recommendation-rules/compatible-courses [get]
func (h *RuleHandler) CompatibleCourses(c *gin.Context) {
	minScore, err := strconv.Atoi(c.Query("min_score"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "min_score must be an integer"))
		return
	}
	courses, err := h.rules.CompatibleCourses(c.Request.Context(), minScore)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Create godoc
// @Summary Create recommendation rules for one or more courses
// @Tags RecommendationRules
// @Accept json
// @Produce json
// @Param payload body dto.CreateRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/recommendation-rules [post]
func (h *RuleHandler) Create(c *gin.Context) {
	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}
	rules, err := h.rules.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rules)
}

// Update godoc
// @Summary Update a recommendation rule
// @Tags RecommendationRules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param payload body dto.UpdateRuleRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/recommendation-rules/{id} [put]
func (h *RuleHandler) Update(c *gin.Context) {
	var req dto.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}
	rule, err := h.rules.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// Delete godoc
// @Summary Delete a recommendation rule
// @Tags RecommendationRules
// @Param id path string true "Rule ID"
// @Success 204
// @Security BearerAuth
// @Router /guidance/recommendation-rules/{id} [delete]
func (h *RuleHandler) Delete(c *gin.Context) {
	if err := h.rules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GenerateAll godoc
// @Summary Generate default rules for every personality type and compatible course
// @Tags RecommendationRules
// @Produce json
// @Param academic_year query string true "Academic year to generate for"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/generate-all-rules [post]
func (h *RuleHandler) GenerateAll(c *gin.Context) {
	year := strings.TrimSpace(c.Query("academic_year"))
	if year == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year is required"))
		return
	}
	result, err := h.rules.GenerateAll(c.Request.Context(), actorID(c), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveRulesGenerated(result.TotalCreated)
	response.JSON(c, http.StatusOK, result, nil)
}
