// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/pkg/hostbill"
)

// ProductHandler exposes the provider catalog with category classification
type ProductHandler struct {
	client     *hostbill.Client
	classifier *catalog.Classifier
	config     *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(client *hostbill.Client, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		client:     client,
		classifier: catalog.NewClassifier(cfg.Catalog),
		config:     cfg,
	}
}

// ClassifiedProduct is a provider product annotated with its resolved
// category and normalized pricing
type ClassifiedProduct struct {
	Product      catalog.Product      `json:"product"`
	CategoryType catalog.CategoryType `json:"category_type"`
	Pricing      catalog.Pricing      `json:"pricing"`
}

// GetProducts handles GET /products?category_id=N
func (h *ProductHandler) GetProducts(c *gin.Context) {
	categoryID, err := strconv.Atoi(c.Query("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "category_id query parameter is required",
		})
		return
	}

	products, err := h.client.GetProducts(c.Request.Context(), categoryID)
	if err != nil {
		h.renderProviderError(c, err)
		return
	}

	classified := make([]ClassifiedProduct, 0, len(products))
	for i := range products {
		classified = append(classified, h.classify(&products[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    classified,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := h.client.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.renderProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    h.classify(product),
	})
}

// Private helper methods

func (h *ProductHandler) classify(p *catalog.Product) ClassifiedProduct {
	return ClassifiedProduct{
		Product:      *p,
		CategoryType: h.classifier.Classify(p),
		Pricing:      p.Normalize(),
	}
}

func (h *ProductHandler) renderProviderError(c *gin.Context, err error) {
	var apiErr *hostbill.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	c.JSON(http.StatusBadGateway, gin.H{
		"error": "Failed to reach product catalog",
	})
}
