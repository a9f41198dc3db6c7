package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/repository"
	"github.com/tidemart/storefront/pkg/errors"
)

const buyerContextKey = "buyer"

// AuthMiddleware authenticates requests with a bearer session token
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		buyer, err := repos.Buyer.GetBySessionToken(c.Request.Context(), token)
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
				return
			}
			logger.Error("Failed to authenticate buyer", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(buyerContextKey, buyer)
		c.Next()
	}
}

// GetBuyerFromContext returns the authenticated buyer set by AuthMiddleware
func GetBuyerFromContext(c *gin.Context) (*domain.Buyer, bool) {
	val, ok := c.Get(buyerContextKey)
	if !ok {
		return nil, false
	}
	buyer, ok := val.(*domain.Buyer)
	return buyer, ok
}
