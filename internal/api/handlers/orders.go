package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/api/middleware"
	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/repository"
	"github.com/tidemart/storefront/pkg/errors"
)

// OrderResponse represents the order response
type OrderResponse struct {
	ID            string              `json:"id"`
	SellerAddress string              `json:"seller_address"`
	TxDigest      string              `json:"tx_digest"`
	Status        domain.OrderStatus  `json:"status"`
	ShippingRef   string              `json:"shipping_ref"`
	Total         int64               `json:"total"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orders, err := repos.Order.ListByBuyer(c.Request.Context(), buyer.Address)
		if err != nil {
			logger.Error("Failed to list orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]OrderResponse, 0, len(orders))
		for _, order := range orders {
			responses = append(responses, toOrderResponse(order, nil))
		}

		c.JSON(http.StatusOK, gin.H{"orders": responses})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if order.BuyerAddress != buyer.Address {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		items, err := repos.Order.GetItems(c.Request.Context(), order.ID)
		if err != nil {
			logger.Error("Failed to get order items", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(order, items))
	}
}

// HandleCancelOrder handles POST /v1/orders/:id/cancel. Cancellation only
// touches the fulfillment record; the ledger transfer is irreversible and
// refunds are settled off-pipeline between buyer and seller.
func HandleCancelOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if order.BuyerAddress != buyer.Address {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
			transitionErr := &errors.ErrInvalidStateTransition{From: order.Status, To: domain.OrderStatusCancelled}
			c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
			return
		}

		if err := repos.Order.UpdateStatus(c.Request.Context(), order.ID, domain.OrderStatusCancelled); err != nil {
			logger.Error("Failed to cancel order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		order.Status = domain.OrderStatusCancelled
		c.JSON(http.StatusOK, toOrderResponse(order, nil))
	}
}

func toOrderResponse(order *domain.Order, items []*domain.OrderLineItem) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID.String(),
		SellerAddress: order.SellerAddress,
		TxDigest:      order.TxDigest,
		Status:        order.Status,
		ShippingRef:   order.ShippingRef,
		Total:         order.Total,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
	}

	for _, item := range items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return resp
}
