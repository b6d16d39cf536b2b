package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Poojitha-916/DRC-capstone/internal/dto"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/service"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
	"github.com/Poojitha-916/DRC-capstone/pkg/response"
)

type applicationService interface {
	Submit(ctx context.Context, req dto.CreateApplicationRequest, actor *models.JWTClaims) (*models.Application, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApplicationWithTrail, error)
	List(ctx context.Context, query dto.ApplicationQuery, actor *models.JWTClaims) ([]models.Application, error)
	PendingQueue(ctx context.Context, stage models.WorkflowStage, actor *models.JWTClaims) ([]models.Application, error)
	SubmitDecision(ctx context.Context, id string, req dto.ReviewApplicationRequest, actor *models.JWTClaims) (*service.DecisionResult, error)
}

// ApplicationHandler exposes REST endpoints for the approval workflow.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(svc applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

// Create godoc
// @Summary Submit an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application payload"))
		return
	}
	app, err := h.service.Submit(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, app, nil)
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param scholar query string false "Scholar ID"
// @Param status query string false "Comma separated statuses"
// @Param stage query string false "Workflow stage"
// @Param type query string false "Application type"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.ApplicationQuery{
		ScholarID: strings.TrimSpace(c.Query("scholar")),
		Stage:     models.WorkflowStage(strings.ToLower(strings.TrimSpace(c.Query("stage")))),
		Type:      models.ApplicationType(strings.TrimSpace(c.Query("type"))),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.ApplicationStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			statuses = append(statuses, models.ApplicationStatus(part))
		}
		query.Status = statuses
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			query.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			query.Offset = offset
		}
	}
	apps, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// Get godoc
// @Summary Get application with review trail
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Queue godoc
// @Summary List pending applications at a stage
// @Tags Applications
// @Produce json
// @Param stage path string true "Workflow stage"
// @Success 200 {object} response.Envelope
// @Router /applications/queue/{stage} [get]
func (h *ApplicationHandler) Queue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stage := models.WorkflowStage(strings.ToLower(strings.TrimSpace(c.Param("stage"))))
	apps, err := h.service.PendingQueue(c.Request.Context(), stage, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// Review godoc
// @Summary Record a reviewer decision
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ReviewApplicationRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/review [post]
func (h *ApplicationHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
		return
	}
	result, err := h.service.SubmitDecision(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
