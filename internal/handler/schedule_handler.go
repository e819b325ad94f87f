package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/internal/service"
	"github.com/junyours/occ-admission-sub002/pkg/response"
)

// ScheduleHandler wires the closed schedule browser to HTTP routes.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs a new ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// ListClosed godoc
// @Summary List closed exam schedules grouped by year and month
// @Tags Schedules
// @Produce json
// @Param search query string false "Free-text search over date, session and times"
// @Param session query string false "Filter by session (morning/afternoon)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/schedules/closed [get]
func (h *ScheduleHandler) ListClosed(c *gin.Context) {
	filter := models.ScheduleFilter{
		Query:   strings.TrimSpace(c.Query("search")),
		Session: strings.TrimSpace(c.Query("session")),
	}
	groups, err := h.schedules.ListClosed(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}
