package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/junyours/occ-admission-sub002/internal/middleware"
	"github.com/junyours/occ-admission-sub002/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorID(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
