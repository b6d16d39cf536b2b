package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Poojitha-916/DRC-capstone/internal/middleware"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

// claimsFromContext returns the JWT claims the auth middleware stored, or
// nil when the request is unauthenticated.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	if claims, ok := value.(*models.JWTClaims); ok {
		return claims
	}
	return nil
}
