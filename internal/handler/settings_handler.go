package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/service"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/response"
)

// SettingsHandler wires registration settings management to HTTP routes.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs a new SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get registration settings with calendar layout
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/registration-settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	view, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Update godoc
// @Summary Save the whole registration settings object
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/registration-settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	view, err := h.settings.Update(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ToggleDate godoc
// @Summary Toggle one exam date's selection
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.ToggleDateRequest true "Date to toggle"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/registration-settings/exam-dates/toggle [post]
func (h *SettingsHandler) ToggleDate(c *gin.Context) {
	var req dto.ToggleDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}
	view, err := h.settings.ToggleDate(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// BulkSelect godoc
// @Summary Apply a bulk exam date selector
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.BulkSelectRequest true "Selection mode (all/weekdays/clear)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/registration-settings/exam-dates/bulk-select [post]
func (h *SettingsHandler) BulkSelect(c *gin.Context) {
	var req dto.BulkSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	view, err := h.settings.BulkSelect(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
