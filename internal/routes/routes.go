package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/ippcom/goodies-api/internal/handlers"
	"github.com/ippcom/goodies-api/internal/middleware"
)

// CORSMiddleware allows the configured storefront origin to call the API.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	handlers.RegisterValidations()

	router := gin.Default()
	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		// --- Public Routes ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		v1.GET("/products", h.SearchProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/categories", h.GetCategories)

		v1.POST("/quotes", h.CreateQuote)

		// Payment provider callback: raw-body signature verification, no
		// session auth.
		v1.POST("/stripe/webhook", h.StripeWebhook)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/items", h.AddToCart)
			auth.PUT("/cart/items/:product_id", h.UpdateCartItem)
			auth.DELETE("/cart/items/:product_id", h.DeleteCartItem)
			auth.DELETE("/cart", h.ClearCart)

			auth.POST("/checkout", h.Checkout)

			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)

			auth.GET("/quotes/:id", h.GetQuoteDetails)
			auth.GET("/dashboard", h.GetDashboard)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.POST("/products", h.CreateProduct)
		}
	}

	return router
}
