package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/repository"
	"github.com/tidemart/storefront/pkg/errors"
)

const defaultPageSize = 50

// ProductResponse represents a catalog listing. Price and stock are the
// catalog copy; checkout revalidates against the ledger.
type ProductResponse struct {
	ID            string `json:"id"`
	SellerAddress string `json:"seller_address"`
	Name          string `json:"name"`
	ImageURL      string `json:"image_url,omitempty"`
	Price         int64  `json:"price"`
	Stock         int64  `json:"stock"`
	Kiosk         bool   `json:"kiosk"`
}

// HandleListProducts handles GET /v1/products
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
		if err != nil || limit < 1 || limit > 200 {
			limit = defaultPageSize
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		products, err := repos.Product.List(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Failed to list products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]ProductResponse, 0, len(products))
		for _, product := range products {
			responses = append(responses, toProductResponse(product))
		}

		c.JSON(http.StatusOK, gin.H{"products": responses})
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := repos.Product.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			logger.Error("Failed to get product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, toProductResponse(product))
	}
}

func toProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID,
		SellerAddress: product.SellerAddress,
		Name:          product.Name,
		ImageURL:      product.ImageURL,
		Price:         product.Price,
		Stock:         product.Stock,
		Kiosk:         product.KioskID != nil,
	}
}
