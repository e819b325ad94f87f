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

// PersonalityHandler wires the personality question bank to HTTP routes.
type PersonalityHandler struct {
	questions   *service.PersonalityService
	metrics     *service.MetricsService
	maxFileSize int64
}

// NewPersonalityHandler constructs a new PersonalityHandler.
func NewPersonalityHandler(questions *service.PersonalityService, metrics *service.MetricsService, maxFileSize int64) *PersonalityHandler {
	if maxFileSize <= 0 {
		maxFileSize = 5 << 20
	}
	return &PersonalityHandler{questions: questions, metrics: metrics, maxFileSize: maxFileSize}
}

// List godoc
// @Summary List personality questions
// @Tags PersonalityQuestions
// @Produce json
// @Param search query string false "Search question text or dichotomy"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/personality-questions [get]
func (h *PersonalityHandler) List(c *gin.Context) {
	filter := models.PersonalityQuestionFilter{Search: strings.TrimSpace(c.Query("search"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "10")); err == nil {
		filter.PerPage = perPage
	}

	questions, meta, err := h.questions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions, meta)
}

// Get godoc
// @Summary Get a personality question
// @Tags PersonalityQuestions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/personality-questions/{id} [get]
func (h *PersonalityHandler) Get(c *gin.Context) {
	question, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, question, nil)
}

// Create godoc
// @Summary Create a personality question
// @Tags PersonalityQuestions
// @Accept json
// @Produce json
// @Param payload body dto.CreatePersonalityQuestionRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/personality-questions [post]
func (h *PersonalityHandler) Create(c *gin.Context) {
	var req dto.CreatePersonalityQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid question payload"))
		return
	}
	question, err := h.questions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, question)
}

// Update godoc
// @Summary Update a personality question
// @Tags PersonalityQuestions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.UpdatePersonalityQuestionRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/personality-questions/{id} [put]
func (h *PersonalityHandler) Update(c *gin.Context) {
	var req dto.UpdatePersonalityQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid question payload"))
		return
	}
	question, err := h.questions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, question, nil)
}

// Delete godoc
// @Summary Delete a personality question
// @Tags PersonalityQuestions
// @Param id path string true "Question ID"
// @Success 204
// @Security BearerAuth
// @Router /guidance/personality-questions/{id} [delete]
func (h *PersonalityHandler) Delete(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Bulk import personality questions from CSV
// @Tags PersonalityQuestions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/personality-questions/import [post]
func (h *PersonalityHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a CSV file upload is required"))
		return
	}
	defer file.Close()
	if header.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "CSV file exceeds the upload size limit"))
		return
	}

	summary, err := h.questions.ImportCSV(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveImport("personality", summary.Created, summary.Skipped)
	response.JSON(c, http.StatusOK, summary, nil)
}
