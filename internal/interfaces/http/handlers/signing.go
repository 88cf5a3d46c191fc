// internal/interfaces/http/handlers/signing.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/signing"
)

// SigningHandler handles BankID signing endpoints
type SigningHandler struct {
	signingService *signing.Service
}

// NewSigningHandler creates a new signing handler
func NewSigningHandler(signingService *signing.Service) *SigningHandler {
	return &SigningHandler{
		signingService: signingService,
	}
}

// Start handles POST /signing
func (h *SigningHandler) Start(c *gin.Context) {
	var req signing.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.signingService.Start(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to start signing",
		})
		return
	}

	if session.Status == signing.StatusSessionConflict {
		c.JSON(http.StatusConflict, gin.H{
			"message": "A signing session is already in progress",
			"data":    session,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Signing session started",
		"data":    session,
	})
}

// Status handles GET /signing/:id
func (h *SigningHandler) Status(c *gin.Context) {
	session, err := h.signingService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, signing.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Signing session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve signing session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signing session retrieved",
		"data":    session,
	})
}

// RetryRequest re-initiates a conflicted signing session
type RetryRequest struct {
	Payload interface{} `json:"payload"`
}

// Retry handles POST /signing/:id/retry
func (h *SigningHandler) Retry(c *gin.Context) {
	// Empty body is fine for retry
	var req RetryRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.signingService.Retry(c.Request.Context(), c.Param("id"), req.Payload)
	if err != nil {
		if errors.Is(err, signing.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Signing session not found",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to retry signing",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signing session restarted",
		"data":    session,
	})
}

// Cancel handles DELETE /signing/:id
func (h *SigningHandler) Cancel(c *gin.Context) {
	if err := h.signingService.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, signing.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Signing session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to cancel signing session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signing session cancelled",
	})
}
