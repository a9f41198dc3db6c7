package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/api/middleware"
	"github.com/tidemart/storefront/internal/checkout"
	"github.com/tidemart/storefront/internal/repository"
	"github.com/tidemart/storefront/pkg/errors"
)

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	ShippingRef string `json:"shipping_ref" binding:"required"`
}

// CheckoutResponse represents a terminal checkout outcome
type CheckoutResponse struct {
	Status     checkout.Status                 `json:"status"`
	TxDigest   string                          `json:"tx_digest,omitempty"`
	Reason     string                          `json:"reason,omitempty"`
	OrderIDs   []string                        `json:"order_ids,omitempty"`
	Warnings   []string                        `json:"warnings,omitempty"`
	Validation *ValidationDetails              `json:"validation,omitempty"`
}

// ValidationDetails reports why a selection could not be purchased
type ValidationDetails struct {
	Insufficient []InsufficientDetail `json:"insufficient,omitempty"`
	Unavailable  []string             `json:"unavailable,omitempty"`
}

type InsufficientDetail struct {
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// HandleCheckout handles POST /v1/checkout
func HandleCheckout(pipeline *checkout.Pipeline, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		result, err := pipeline.Checkout(c.Request.Context(), buyer.Address, req.ShippingRef)
		if err != nil {
			switch err.(type) {
			case *errors.ErrCheckoutInFlight:
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case *errors.ErrBuildFailure:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				logger.Error("Checkout failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(statusCodeFor(result.Status), toCheckoutResponse(result))
	}
}

// HandleRetryReconciliation handles POST /v1/checkout/:digest/reconcile
func HandleRetryReconciliation(pipeline *checkout.Pipeline, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetBuyerFromContext(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		digest := c.Param("digest")

		result, err := pipeline.RetryReconciliation(c.Request.Context(), digest)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown transaction digest"})
				return
			}
			logger.Error("Retry reconciliation failed", zap.String("tx_digest", digest), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(statusCodeFor(result.Status), toCheckoutResponse(result))
	}
}

// HandleGetAttempt handles GET /v1/checkout/:digest
func HandleGetAttempt(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		digest := c.Param("digest")

		attempt, err := repos.CheckoutAttempt.GetByDigest(c.Request.Context(), digest)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown transaction digest"})
				return
			}
			logger.Error("Failed to get checkout attempt", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if attempt.BuyerAddress != buyer.Address {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown transaction digest"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tx_digest": attempt.TxDigest,
			"status":    attempt.Status,
			"updated_at": attempt.UpdatedAt,
		})
	}
}

func statusCodeFor(status checkout.Status) int {
	switch status {
	case checkout.StatusReconciled:
		return http.StatusOK
	case checkout.StatusValidationFailed:
		return http.StatusConflict
	case checkout.StatusRejected:
		return http.StatusBadGateway
	case checkout.StatusIndeterminate:
		return http.StatusAccepted
	case checkout.StatusReconciliationFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func toCheckoutResponse(result *checkout.Result) CheckoutResponse {
	resp := CheckoutResponse{
		Status:   result.Status,
		TxDigest: result.TxDigest,
		Reason:   result.Reason,
		Warnings: result.Warnings,
	}

	for _, order := range result.Orders {
		resp.OrderIDs = append(resp.OrderIDs, order.ID.String())
	}

	if result.Validation != nil {
		details := &ValidationDetails{}
		for _, ins := range result.Validation.Insufficient {
			details.Insufficient = append(details.Insufficient, InsufficientDetail{
				ProductID: ins.Line.ProductID,
				Requested: ins.Line.Quantity,
				Available: ins.Available,
			})
		}
		for _, line := range result.Validation.Unavailable {
			details.Unavailable = append(details.Unavailable, line.ProductID)
		}
		resp.Validation = details
	}

	return resp
}
