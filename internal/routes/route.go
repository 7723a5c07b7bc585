package routes

import (
	"net/http"

	"github.com/gatherly/gatherly-api/internal/container"
	"github.com/gatherly/gatherly-api/internal/handlers"
	"github.com/gatherly/gatherly-api/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secureCookies := cfg.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	if container.Metrics != nil {
		r.Use(middleware.Metrics(container.Metrics))
	}
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":      "OK",
				"service":     "gatherly-api",
				"bookingMode": container.BookingService.Mode(),
			})
		})

		v1.POST("/sign-up", handlers.SignUp(container.UserService))
		v1.POST("/resend-code", handlers.ResendCode(container.UserService))
		v1.GET("/check-username-unique", handlers.CheckUsernameUnique(container.UserService))
		v1.POST("/verify-code", handlers.VerifyCode(container.UserService))
		v1.POST("/sign-in", handlers.SignIn(container.UserService, secureCookies))
		v1.POST("/sign-out", handlers.SignOut(secureCookies))

		v1.GET("/events", handlers.ListEvents(container.EventService))
		v1.GET("/events/:id", handlers.GetEvent(container.EventService))
		v1.GET("/users", handlers.GetUser(container.UserService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.Tokens, container.Logger))
	{
		protected.POST("/book-ticket/:id", handlers.BookTicket(container.BookingService))
		protected.GET("/my-events", handlers.GetMyEvents(container.DashboardService))
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(container.EventService))
		eventRoutes.POST("/:id/bookings", handlers.BookTicket(container.BookingService))
		eventRoutes.POST("/:id/cancel", handlers.CancelEvent(container.EventService))
	}

	userRoutes := protected.Group("/users/me")
	{
		userRoutes.PATCH("", handlers.UpdateUser(container.UserService))
		userRoutes.POST("/password", handlers.UpdatePassword(container.UserService))
	}

	return r
}
