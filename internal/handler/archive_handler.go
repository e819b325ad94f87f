package handler

import (
	"fmt"
	"io"
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

// ArchiveHandler wires the archived registration browser to HTTP routes.
type ArchiveHandler struct {
	archive *service.ArchiveService
	reports *service.ReportService
}

// NewArchiveHandler constructs a new ArchiveHandler.
func NewArchiveHandler(archive *service.ArchiveService, reports *service.ReportService) *ArchiveHandler {
	return &ArchiveHandler{archive: archive, reports: reports}
}

// List godoc
// @Summary List archived registrations grouped by year, month and session
// @Tags Archive
// @Produce json
// @Param search query string false "Free-text search"
// @Param page query int false "Per-session page number"
// @Param per_page query int false "Per-session page size (-1 for all)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/archived-registrations [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	filter := models.ArchiveFilter{Query: strings.TrimSpace(c.Query("search"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "10")); err == nil {
		filter.PerPage = perPage
	}

	groups, err := h.archive.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	options, err := h.archive.PerPageOptions(c.Request.Context(), filter.Query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil, map[string]interface{}{"per_page_options": options})
}

// Unarchive godoc
// @Summary Restore one archived registration
// @Tags Archive
// @Param id path string true "Registration ID"
// @Success 204
// @Security BearerAuth
// @Router /guidance/archived-registrations/{id}/unarchive [post]
func (h *ArchiveHandler) Unarchive(c *gin.Context) {
	if err := h.archive.Unarchive(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkUnarchive godoc
// @Summary Restore a batch of archived registrations
// @Tags Archive
// @Accept json
// @Produce json
// @Param payload body dto.BulkUnarchiveRequest true "Registration IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/archived-registrations/bulk-unarchive [post]
func (h *ArchiveHandler) BulkUnarchive(c *gin.Context) {
	var req dto.BulkUnarchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid unarchive payload"))
		return
	}
	result, err := h.archive.BulkUnarchive(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RequestReport godoc
// @Summary Queue an archive export report
// @Tags Archive
// @Produce json
// @Param format query string true "Report format (csv/pdf)"
// @Param search query string false "Free-text search applied to the export"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/archived-registrations/reports [post]
func (h *ArchiveHandler) RequestReport(c *gin.Context) {
	format := service.ReportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	ticket, err := h.reports.Request(c.Request.Context(), format, strings.TrimSpace(c.Query("search")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, ticket, nil)
}

// DownloadReport godoc
// @Summary Download a rendered archive report
// @Tags Archive
// @Param token query string true "Signed report token"
// @Success 200
// @Router /guidance/archived-registrations/reports/download [get]
func (h *ArchiveHandler) DownloadReport(c *gin.Context) {
	file, name, err := h.reports.Fetch(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "text/csv"
	if strings.HasSuffix(name, ".pdf") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
