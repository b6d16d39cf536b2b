package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

type auditSinkStub struct {
	logs []*models.AuditLog
}

func (s *auditSinkStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func TestAuditRecordsSuccessfulRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &auditSinkStub{}

	r := gin.New()
	r.POST("/exports",
		func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-admin", Role: models.RoleAdmin})
		},
		Audit(sink, models.AuditActionExportRequest, "export_jobs"),
		func(c *gin.Context) { c.Status(http.StatusAccepted) },
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/exports", nil)
	req.Header.Set("User-Agent", "portal-test")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, sink.logs, 1)
	entry := sink.logs[0]
	require.Equal(t, models.AuditActionExportRequest, entry.Action)
	require.Equal(t, "export_jobs", entry.Resource)
	require.NotNil(t, entry.UserID)
	require.Equal(t, "user-admin", *entry.UserID)
	require.Equal(t, "portal-test", entry.UserAgent)
	require.NotEmpty(t, entry.NewValues)
}

func TestAuditSkipsFailedRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &auditSinkStub{}

	r := gin.New()
	r.POST("/exports",
		Audit(sink, models.AuditActionExportRequest, "export_jobs"),
		func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/exports", nil))

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, sink.logs)
}
