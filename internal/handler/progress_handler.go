package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/service"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
	"github.com/Poojitha-916/DRC-capstone/pkg/response"
)

// ProgressHandler exposes research progress endpoints.
type ProgressHandler struct {
	service *service.ProgressService
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(svc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: svc}
}

// Get godoc
// @Summary Get research progress for a scholar
// @Tags Progress
// @Produce json
// @Param id path string true "Scholar ID"
// @Success 200 {object} response.Envelope
// @Router /scholars/{id}/progress [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	progress, err := h.service.ForScholar(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Record godoc
// @Summary Record research progress counters
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Scholar ID"
// @Param payload body models.ResearchProgress true "Progress counters"
// @Success 200 {object} response.Envelope
// @Router /scholars/{id}/progress [put]
func (h *ProgressHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var progress models.ResearchProgress
	if err := c.ShouldBindJSON(&progress); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid progress payload"))
		return
	}
	progress.ScholarID = c.Param("id")
	if err := h.service.Record(c.Request.Context(), &progress, claims); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}
