package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/feedme/feedme-golang/internal/handlers"
	"github.com/feedme/feedme-golang/internal/middleware"
)

// CORSMiddleware allows the storefront frontend to call the API with JWT
// credentials. The allowed origin comes from ALLOWED_ORIGIN.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("ALLOWED_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before anything else.
	router.Use(CORSMiddleware())

	// Uploaded images are served straight from disk.
	router.Static("/"+h.Images.Bucket, h.Images.Dir)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/login", h.Login)

		// --- Public Storefront Routes ---
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/bundles", h.ListBundles)
		v1.GET("/bundles/:id", h.GetBundle)
		v1.GET("/categories", h.ListCategories)
		v1.GET("/categories/:id", h.GetCategory)
		v1.GET("/promotions", h.ListPromotions)
		v1.GET("/promotions/tag/:tag", h.GetPromotionByTag)
		v1.GET("/vendors", h.ListVendors)
		v1.GET("/vendors/:slug", h.GetVendor)

		// --- Public Contact Form ---
		v1.POST("/email/contact", h.Contact)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			// Notifications
			auth.GET("/notifications", h.GetMyNotifications)
			auth.GET("/notifications/stream", h.StreamNotifications)
			auth.PATCH("/notifications/:id/dismiss", h.DismissNotification)

			// Drafts
			auth.GET("/drafts/:key", h.GetDraft)
			auth.PUT("/drafts/:key", h.SaveDraft)
			auth.DELETE("/drafts/:key", h.ClearDraft)

			// Uploads
			auth.POST("/upload", h.UploadFile)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.POST("/bundles", h.CreateBundle)
			admin.PUT("/bundles/:id", h.UpdateBundle)
			admin.DELETE("/bundles/:id", h.DeleteBundle)
			admin.GET("/bundles/:id/products", h.GetBundleProducts)
			admin.POST("/bundles/:id/products", h.AddBundleProduct)
			admin.DELETE("/bundles/:id/products/:productId", h.RemoveBundleProduct)

			admin.POST("/categories", h.CreateCategory)
			admin.PUT("/categories/:id", h.UpdateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)

			admin.POST("/promotions", h.CreatePromotion)
			admin.PUT("/promotions/:id", h.UpdatePromotion)
			admin.DELETE("/promotions/:id", h.DeletePromotion)
			admin.GET("/products/search", h.SearchPromotionProducts)
			admin.GET("/promotions/:id/products", h.GetPromotionProducts)
			admin.POST("/promotions/:id/products", h.AddPromotionProduct)
			admin.DELETE("/promotions/:id/products/:productId", h.RemovePromotionProduct)

			admin.POST("/vendors", h.CreateVendor)
			admin.DELETE("/vendors/:id", h.DeleteVendor)

			admin.POST("/notifications", h.CreateNotification)

			admin.GET("/newsletter/recipients", h.ListRecipients)
			admin.POST("/newsletter/recipients", h.CreateRecipient)
			admin.PUT("/newsletter/recipients/:id", h.UpdateRecipient)
			admin.DELETE("/newsletter/recipients/:id", h.DeleteRecipient)
			admin.GET("/newsletter/campaigns", h.ListCampaigns)
			admin.POST("/newsletter/campaigns", h.CreateCampaign)
			admin.POST("/newsletter/campaigns/:id/send", h.SendCampaign)
			admin.POST("/newsletter/campaigns/:id/test", h.SendTestCampaign)

			admin.GET("/stats", h.GetAdminStats)
		}
	}

	return router
}
