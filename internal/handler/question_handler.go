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

// QuestionHandler exposes exam question bank management routes.
type QuestionHandler struct {
	questions   *service.QuestionService
	metrics     *service.MetricsService
	maxFileSize int64
}

// NewQuestionHandler constructs a new QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService, metrics *service.MetricsService, maxFileSize int64) *QuestionHandler {
	if maxFileSize <= 0 {
		maxFileSize = 5 << 20
	}
	return &QuestionHandler{questions: questions, metrics: metrics, maxFileSize: maxFileSize}
}

func questionFilterFromQuery(c *gin.Context) models.QuestionFilter {
	filter := models.QuestionFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    strings.TrimSpace(c.Query("sort")),
		SortOrder: strings.TrimSpace(c.Query("order")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "10")); err == nil {
		filter.PerPage = perPage
	}
	return filter
}

// List godoc
// @Summary List exam questions
// @Tags ExamQuestions
// @Produce json
// @Param category query string false "Filter by category"
// @Param search query string false "Search question text"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size, -1 for all"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions [get]
func (h *QuestionHandler) List(c *gin.Context) {
	filter := questionFilterFromQuery(c)
	questions, meta, options, err := h.questions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions, meta, map[string]interface{}{"per_page_options": options})
}

// Locate godoc
// @Summary Find the page containing a question under the current filter
// @Tags ExamQuestions
// @Produce json
// @Param id path string true "Question ID"
// @Param per_page query int false "Page size used by the listing"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions/{id}/locate [get]
func (h *QuestionHandler) Locate(c *gin.Context) {
	filter := questionFilterFromQuery(c)
	location, err := h.questions.LocatePage(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// Get godoc
// @Summary Get an exam question
// @Tags ExamQuestions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions/{id} [get]
func (h *QuestionHandler) Get(c *gin.Context) {
	question, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, question, nil)
}

// Create godoc
// @Summary Create an exam question
// @Tags ExamQuestions
// @Accept json
// @Produce json
// @Param payload body dto.SaveQuestionRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions [post]
func (h *QuestionHandler) Create(c *gin.Context) {
	var req dto.SaveQuestionRequest
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
// @Summary Update an exam question
// @Tags ExamQuestions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.SaveQuestionRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions/{id} [put]
func (h *QuestionHandler) Update(c *gin.Context) {
	var req dto.SaveQuestionRequest
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

// Archive godoc
// @Summary Archive an exam question
// @Tags ExamQuestions
// @Param id path string true "Question ID"
// @Success 204
// @Security BearerAuth
// @Router /guidance/exam-questions/{id}/archive [post]
func (h *QuestionHandler) Archive(c *gin.Context) {
	if err := h.questions.Archive(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkArchive godoc
// @Summary Archive multiple exam questions
// @Tags ExamQuestions
// @Accept json
// @Produce json
// @Param payload body dto.BulkArchiveRequest true "Question IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions/bulk-archive [post]
func (h *QuestionHandler) BulkArchive(c *gin.Context) {
	var req dto.BulkArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk archive payload"))
		return
	}
	result, err := h.questions.BulkArchive(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Import godoc
// @Summary Bulk import exam questions from CSV
// @Tags ExamQuestions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions/import [post]
func (h *QuestionHandler) Import(c *gin.Context) {
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
	h.metrics.ObserveImport("exam", summary.Created, summary.Skipped)
	response.JSON(c, http.StatusOK, summary, nil)
}

// UploadImage godoc
// @Summary Attach an image to a question field
// @Tags ExamQuestions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Question ID"
// @Param field formData string true "Image slot: question, option_a..option_d, explanation"
// @Param file formData file true "Image file"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions/{id}/images [post]
func (h *QuestionHandler) UploadImage(c *gin.Context) {
	field := strings.TrimSpace(c.PostForm("field"))
	if field == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "an image field name is required"))
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "an image file upload is required"))
		return
	}
	defer file.Close()
	if header.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image exceeds the upload size limit"))
		return
	}

	image, err := h.questions.UploadImage(c.Request.Context(), c.Param("id"), field, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, image, nil)
}

// Images godoc
// @Summary List signed image URLs for a question
// @Tags ExamQuestions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/exam-questions/{id}/images [get]
func (h *QuestionHandler) Images(c *gin.Context) {
	images, err := h.questions.ImageURLs(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, images, nil)
}
