package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/service"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
	"github.com/Poojitha-916/DRC-capstone/pkg/response"
)

// ScholarHandler exposes scholar profile and committee endpoints.
type ScholarHandler struct {
	service *service.ScholarService
}

// NewScholarHandler constructs the handler.
func NewScholarHandler(svc *service.ScholarService) *ScholarHandler {
	return &ScholarHandler{service: svc}
}

// Me godoc
// @Summary Get own scholar profile
// @Tags Scholars
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scholars/me [get]
func (h *ScholarHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	scholar, err := h.service.OwnProfile(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scholar, nil)
}

// Get godoc
// @Summary Get scholar profile
// @Tags Scholars
// @Produce json
// @Param id path string true "Scholar ID"
// @Success 200 {object} response.Envelope
// @Router /scholars/{id} [get]
func (h *ScholarHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	scholar, err := h.service.Profile(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scholar, nil)
}

// Committee godoc
// @Summary List committee assignments for a scholar
// @Tags Scholars
// @Produce json
// @Param id path string true "Scholar ID"
// @Param stage query string false "Committee stage"
// @Success 200 {object} response.Envelope
// @Router /scholars/{id}/committee [get]
func (h *ScholarHandler) Committee(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stage := models.WorkflowStage(strings.ToLower(strings.TrimSpace(c.Query("stage"))))
	members, err := h.service.Committee(c.Request.Context(), c.Param("id"), stage, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// AssignCommittee godoc
// @Summary Assign a committee member to a scholar
// @Tags Scholars
// @Accept json
// @Produce json
// @Param id path string true "Scholar ID"
// @Param payload body models.RACMember true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /scholars/{id}/committee [post]
func (h *ScholarHandler) AssignCommittee(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var member models.RACMember
	if err := c.ShouldBindJSON(&member); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload"))
		return
	}
	member.ScholarID = c.Param("id")
	if err := h.service.AssignCommitteeMember(c.Request.Context(), &member, claims); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, member, nil)
}
