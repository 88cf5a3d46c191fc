// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
	config       *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(orderService *order.Service, pdfService *pdf.Service, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orderService,
		pdfService:   pdfService,
		config:       cfg,
	}
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var req order.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	record, err := h.orderService.Submit(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.renderSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order submitted successfully",
		"data":    record,
	})
}

// GetOrder handles GET /checkout/orders/:orderNumber
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	record, err := h.orderService.GetRecord(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    record,
	})
}

// GetConfirmation handles GET /checkout/orders/:orderNumber/confirmation
func (h *CheckoutHandler) GetConfirmation(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	record, err := h.orderService.GetRecord(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order",
		})
		return
	}

	buf, err := h.pdfService.GenerateConfirmation(record)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate confirmation",
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=bekraftelse-"+record.OrderNumber+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Private helper methods

func (h *CheckoutHandler) renderSubmitError(c *gin.Context, err error) {
	var schemaErr *order.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Order validation failed",
			"fields": schemaErr.Fields,
		})

	case errors.Is(err, order.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"error": "An order submission is already in progress for this session",
		})

	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart is empty",
		})

	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Order submission failed",
		})
	}
}
