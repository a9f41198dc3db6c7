package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/api/middleware"
	"github.com/tidemart/storefront/internal/cart"
	"github.com/tidemart/storefront/internal/checkout"
	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/repository"
	"github.com/tidemart/storefront/pkg/errors"
)

// AddCartItemRequest represents the add-to-cart payload
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

// SetQuantityRequest represents a quantity change
type SetQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

// SetSelectionRequest marks the lines participating in the next checkout
type SetSelectionRequest struct {
	LineIDs []string `json:"line_ids" binding:"required"`
}

// CartResponse represents the cart contents plus selection
type CartResponse struct {
	Lines     []domain.CartLine `json:"lines"`
	Selection []uuid.UUID       `json:"selection"`
}

// fenceCart rejects cart mutations while a checkout attempt is in flight
// for the buyer, so payment arithmetic never races a changing quantity
func fenceCart(c *gin.Context, pipeline *checkout.Pipeline, buyer string) bool {
	if pipeline.InFlight(buyer) {
		c.JSON(http.StatusConflict, gin.H{"error": "checkout in progress, cart is locked"})
		return false
	}
	return true
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(carts cart.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		lines, err := carts.Lines(c.Request.Context(), buyer.Address)
		if err != nil {
			logger.Error("Failed to read cart", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		selection, err := carts.Selection(c.Request.Context(), buyer.Address)
		if err != nil {
			logger.Error("Failed to read selection", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, CartResponse{Lines: lines, Selection: selection})
	}
}

// HandleAddCartItem handles POST /v1/cart/items
func HandleAddCartItem(carts cart.Store, repos *repository.Repositories, pipeline *checkout.Pipeline, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !fenceCart(c, pipeline, buyer.Address) {
			return
		}

		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		product, err := repos.Product.GetByID(c.Request.Context(), req.ProductID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			logger.Error("Failed to get product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		// Clamp to stock at mutation time; the checkout revalidates against
		// the ledger anyway
		quantity := req.Quantity
		if product.Stock > 0 && quantity > product.Stock {
			quantity = product.Stock
		}

		line := &domain.CartLine{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  quantity,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			AddedAt:   time.Now(),
		}

		if err := carts.Add(c.Request.Context(), buyer.Address, line); err != nil {
			logger.Error("Failed to add cart line", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, line)
	}
}

// HandleSetCartItemQuantity handles PATCH /v1/cart/items/:id
func HandleSetCartItemQuantity(carts cart.Store, repos *repository.Repositories, pipeline *checkout.Pipeline, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !fenceCart(c, pipeline, buyer.Address) {
			return
		}

		lineID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line ID"})
			return
		}

		var req SetQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		line, err := carts.Get(c.Request.Context(), buyer.Address, lineID)
		if err != nil {
			logger.Error("Failed to read cart line", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if line == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart line not found"})
			return
		}

		quantity := req.Quantity
		if product, err := repos.Product.GetByID(c.Request.Context(), line.ProductID); err == nil {
			if product.Stock > 0 && quantity > product.Stock {
				quantity = product.Stock
			}
		}

		if err := carts.SetQuantity(c.Request.Context(), buyer.Address, lineID, quantity); err != nil {
			logger.Error("Failed to set quantity", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": lineID, "quantity": quantity})
	}
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/:id
func HandleRemoveCartItem(carts cart.Store, pipeline *checkout.Pipeline, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !fenceCart(c, pipeline, buyer.Address) {
			return
		}

		lineID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line ID"})
			return
		}

		if err := carts.Remove(c.Request.Context(), buyer.Address, lineID); err != nil {
			logger.Error("Failed to remove cart line", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// HandleSetSelection handles PUT /v1/cart/selection
func HandleSetSelection(carts cart.Store, pipeline *checkout.Pipeline, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, ok := middleware.GetBuyerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !fenceCart(c, pipeline, buyer.Address) {
			return
		}

		var req SetSelectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		ids := make([]uuid.UUID, 0, len(req.LineIDs))
		for _, raw := range req.LineIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line ID: " + raw})
				return
			}
			ids = append(ids, id)
		}

		if err := carts.SetSelection(c.Request.Context(), buyer.Address, ids); err != nil {
			logger.Error("Failed to set selection", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"selection": ids})
	}
}
