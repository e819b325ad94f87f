package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/service"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/response"
)

// EvaluatorHandler wires evaluator account management to HTTP routes.
type EvaluatorHandler struct {
	evaluators *service.EvaluatorService
}

// NewEvaluatorHandler constructs a new EvaluatorHandler.
func NewEvaluatorHandler(evaluators *service.EvaluatorService) *EvaluatorHandler {
	return &EvaluatorHandler{evaluators: evaluators}
}

// List godoc
// @Summary List evaluator accounts
// @Tags Evaluators
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/evaluators [get]
func (h *EvaluatorHandler) List(c *gin.Context) {
	items, err := h.evaluators.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Register an evaluator account
// @Tags Evaluators
// @Accept json
// @Produce json
// @Param payload body dto.CreateEvaluatorRequest true "Evaluator payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /guidance/evaluators [post]
func (h *EvaluatorHandler) Create(c *gin.Context) {
	var req dto.CreateEvaluatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluator payload"))
		return
	}
	item, err := h.evaluators.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete an evaluator account
// @Tags Evaluators
// @Param id path string true "Evaluator ID"
// @Success 204
// @Security BearerAuth
// @Router /guidance/evaluators/{id} [delete]
func (h *EvaluatorHandler) Delete(c *gin.Context) {
	if err := h.evaluators.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
