package routes

import (
	"net/http"
	"time"

	"autodeel/handlers"
	"autodeel/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the login endpoint.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.Auth.Login)
	}
}

// RegisterReservationRoutes registers reservation endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		api.Use(middleware.UserAuthMiddleware())
		api.GET("", hb.Reservations.List)
		api.GET("/outstanding", hb.Reservations.Outstanding)
		api.GET("/:id", hb.Reservations.Get)
		api.PUT("/:id/business", hb.Reservations.SetBusinessFlag)

		// Admin usage import.
		admin := api.Group("")
		admin.Use(middleware.AdminOnlyMiddleware())
		admin.POST("", hb.Reservations.Create)
		admin.POST("/import", hb.Reservations.Import)
	}
}

// RegisterPaymentRoutes registers payment endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.Use(middleware.UserAuthMiddleware())
		api.POST("", hb.Payments.PayGroup)
		api.GET("", hb.Payments.List)
		api.GET("/:id", hb.Payments.Get)

		admin := api.Group("")
		admin.Use(middleware.AdminOnlyMiddleware())
		admin.POST("/sync", hb.Payments.Sync)
		admin.PUT("/:id/paid", hb.Payments.MarkPaid)
	}
}

// RegisterPriceSchemeRoutes registers rate card endpoints.
func RegisterPriceSchemeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/priceschemes")
	{
		api.Use(middleware.UserAuthMiddleware())
		api.GET("", hb.PriceSchemes.List)

		admin := api.Group("")
		admin.Use(middleware.AdminOnlyMiddleware())
		admin.POST("", hb.PriceSchemes.Create)
	}
}

// RegisterBunqRoutes registers gateway maintenance endpoints.
func RegisterBunqRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bunq")
	{
		api.Use(middleware.UserAuthMiddleware(), middleware.AdminOnlyMiddleware())
		api.POST("/test", hb.Bunq.Test)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm autodeel"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterPriceSchemeRoutes(r, hb)
	RegisterBunqRoutes(r, hb)
	RegisterHealthRoute(r)
}
