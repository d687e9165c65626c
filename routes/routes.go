package routes

import (
	"net/http"
	"time"

	"renthaven/handlers"
	"renthaven/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPropertyRoutes registers listing endpoints.
func RegisterPropertyRoutes(r *gin.Engine) {
	api := r.Group("/api/properties")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", handlers.ListProperties)
		api.GET("/:id", handlers.GetProperty)

		landlord := api.Group("")
		landlord.Use(middleware.RequireRole("landlord"))
		landlord.POST("", handlers.CreateProperty)
		landlord.PATCH("/:id", handlers.UpdateProperty)
		landlord.DELETE("/:id", handlers.DeleteProperty)
	}
}

// RegisterViewingRoutes sets up the endpoints for the viewing engine.
func RegisterViewingRoutes(r *gin.Engine) {
	api := r.Group("/api/viewings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/availability", handlers.CheckAvailability)
		api.GET("", handlers.ListMyViewingRequests)
		api.GET("/:id", handlers.GetViewingRequest)
		api.POST("", handlers.CreateViewingRequest)
		api.PUT("/:id/reschedule", handlers.RescheduleViewingRequest)
		api.DELETE("/:id", handlers.CancelViewingRequest)

		landlord := api.Group("")
		landlord.Use(middleware.RequireRole("landlord"))
		landlord.PUT("/:id/status", handlers.UpdateViewingStatus)
	}
}

// RegisterChatRoutes registers conversation and messaging endpoints.
func RegisterChatRoutes(r *gin.Engine) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/conversations", handlers.CreateConversation)
		api.GET("/conversations", handlers.ListConversations)
		api.GET("/conversations/:id/messages", handlers.ListConversationMessages)
		api.POST("/conversations/:id/messages", handlers.SendMessage)
		api.GET("/conversations/:id/ws", handlers.SubscribeConversation)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Renthaven"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterPropertyRoutes(r)
	RegisterViewingRoutes(r)
	RegisterChatRoutes(r)
}
