package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/dto"
	"github.com/Poojitha-916/DRC-capstone/internal/middleware"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/service"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

type applicationServiceMock struct {
	submitResp   *models.Application
	submitErr    error
	getResp      *dto.ApplicationWithTrail
	getErr       error
	listResp     []models.Application
	listErr      error
	queueResp    []models.Application
	queueErr     error
	decisionResp *service.DecisionResult
	decisionErr  error

	lastQuery dto.ApplicationQuery
	lastStage models.WorkflowStage
}

func (m *applicationServiceMock) Submit(ctx context.Context, req dto.CreateApplicationRequest, actor *models.JWTClaims) (*models.Application, error) {
	return m.submitResp, m.submitErr
}

func (m *applicationServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApplicationWithTrail, error) {
	return m.getResp, m.getErr
}

func (m *applicationServiceMock) List(ctx context.Context, query dto.ApplicationQuery, actor *models.JWTClaims) ([]models.Application, error) {
	m.lastQuery = query
	return m.listResp, m.listErr
}

func (m *applicationServiceMock) PendingQueue(ctx context.Context, stage models.WorkflowStage, actor *models.JWTClaims) ([]models.Application, error) {
	m.lastStage = stage
	return m.queueResp, m.queueErr
}

func (m *applicationServiceMock) SubmitDecision(ctx context.Context, id string, req dto.ReviewApplicationRequest, actor *models.JWTClaims) (*service.DecisionResult, error) {
	return m.decisionResp, m.decisionErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func scholarClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleScholar}
}

func TestApplicationHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &applicationServiceMock{
		submitResp: &models.Application{ID: "app-1", Status: models.ApplicationStatusPending, CurrentStage: models.StageSupervisor},
	}
	handler := NewApplicationHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateApplicationRequest{
		Type: models.ApplicationTypeExtension,
		Details: models.ApplicationDetails{
			Extension: &models.ExtensionDetails{
				RegistrationDate:  "15-08-2020",
				DurationEligible:  "5 years",
				ExtensionDuration: "6 months",
				Reason:            "additional experiments pending",
			},
		},
	})
	c, w := newGinContext(http.MethodPost, "/applications", payload)
	c.Set(middleware.ContextUserKey, scholarClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestApplicationHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewApplicationHandler(&applicationServiceMock{})

	c, w := newGinContext(http.MethodPost, "/applications", []byte(`{}`))
	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplicationHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &applicationServiceMock{listResp: []models.Application{}}
	handler := NewApplicationHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/applications?status=Pending,Approved&stage=DRC&type=Extension&limit=10", nil)
	c.Set(middleware.ContextUserKey, scholarClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []models.ApplicationStatus{models.ApplicationStatusPending, models.ApplicationStatusApproved}, mockSvc.lastQuery.Status)
	require.Equal(t, models.StageDRC, mockSvc.lastQuery.Stage)
	require.Equal(t, models.ApplicationTypeExtension, mockSvc.lastQuery.Type)
	require.Equal(t, 10, mockSvc.lastQuery.Limit)
}

func TestApplicationHandlerQueueNormalizesStage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &applicationServiceMock{queueResp: []models.Application{}}
	handler := NewApplicationHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/applications/queue/IRC", nil)
	c.Params = gin.Params{{Key: "stage", Value: "IRC"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleIRC})

	handler.Queue(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.StageIRC, mockSvc.lastStage)
}

func TestApplicationHandlerReviewPropagatesErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &applicationServiceMock{decisionErr: appErrors.ErrForbidden}
	handler := NewApplicationHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReviewApplicationRequest{Decision: models.DecisionApproved, Remarks: "ok"})
	c, w := newGinContext(http.MethodPost, "/applications/app-1/review", payload)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-3", Role: models.RoleSupervisor})

	handler.Review(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
