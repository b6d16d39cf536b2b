package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Poojitha-916/DRC-capstone/internal/dto"
	"github.com/Poojitha-916/DRC-capstone/internal/service"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
	"github.com/Poojitha-916/DRC-capstone/pkg/response"
)

// NoticeHandler exposes announcement endpoints.
type NoticeHandler struct {
	service *service.NoticeService
}

// NewNoticeHandler constructs the handler.
func NewNoticeHandler(svc *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: svc}
}

// List godoc
// @Summary List notices visible to the caller
// @Tags Notices
// @Produce json
// @Param limit query int false "Limit"
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	notices, err := h.service.Visible(c.Request.Context(), claims, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// Create godoc
// @Summary Publish a notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body dto.CreateNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Router /notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid notice payload"))
		return
	}
	notice, err := h.service.Publish(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, notice, nil)
}

// Delete godoc
// @Summary Remove a notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Router /notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Remove(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
