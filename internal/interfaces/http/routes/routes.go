// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Handlers bundles the storefront's route handlers
type Handlers struct {
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Signing  *handlers.SigningHandler
	Product  *handlers.ProductHandler
}

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	setupProductRoutes(rg, h)
	setupCartRoutes(rg, h, cfg)
	setupCheckoutRoutes(rg, h, cfg)
	setupSigningRoutes(rg, h)
}

// setupProductRoutes sets up the provider catalog routes
func setupProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/:id", h.Product.GetProduct)
	}
}

// setupCartRoutes sets up cart routes. All cart routes run under the
// session middleware, which resolves or issues the session token keying
// the cart.
func setupCartRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.Session(cfg))
	{
		cart.GET("", h.Cart.GetCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:id", h.Cart.UpdateQuantity)
		cart.PATCH("/items/:id/config", h.Cart.UpdateItemConfig)
		cart.DELETE("/items/:id", h.Cart.RemoveFromCart)
		cart.DELETE("", h.Cart.ClearCart)
	}
}

// setupCheckoutRoutes sets up order submission routes
func setupCheckoutRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.Session(cfg))
	{
		checkout.POST("", h.Checkout.Submit)
		checkout.GET("/orders/:orderNumber", h.Checkout.GetOrder)
		checkout.GET("/orders/:orderNumber/confirmation", h.Checkout.GetConfirmation)
	}
}

// setupSigningRoutes sets up BankID signing routes
func setupSigningRoutes(rg *gin.RouterGroup, h *Handlers) {
	signing := rg.Group("/signing")
	{
		signing.POST("", h.Signing.Start)
		signing.GET("/:id", h.Signing.Status)
		signing.POST("/:id/retry", h.Signing.Retry)
		signing.DELETE("/:id", h.Signing.Cancel)
	}
}
