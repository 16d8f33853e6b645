package router

import (
	"os"
	"time"

	"github.com/gestor-dev/gestor/internal/handlers"
	"github.com/gestor-dev/gestor/internal/middleware"
	"github.com/gestor-dev/gestor/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func NewRouter() *gin.Engine {
	r := gin.New()

	r.Use(gin.Logger(), middleware.RecoveryWithLog())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Credential endpoints are rate limited; with REDIS_ADDR set the limit
	// is shared across instances.
	credentialLimiter := middleware.RateLimiter(rate.Every(time.Second), 5)

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		credentialLimiter = middleware.RedisRateLimiter(client, "login", 10, time.Minute)
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.POST("/login", credentialLimiter, handlers.Login)
		api.POST("/refresh", handlers.Refresh)
		api.GET("/ws/alerts", middleware.AuthMiddleware(), handlers.AlertStream)

		usuarios := api.Group("/usuarios")
		{
			usuarios.POST("", credentialLimiter, handlers.Register)

			authed := usuarios.Group("", middleware.AuthMiddleware())
			{
				authed.GET("", handlers.ListUsers)
				authed.GET("/me", handlers.Me)
				authed.DELETE("/delete", handlers.DeleteSelf)
				authed.GET("/:id", handlers.GetUser)
				authed.PUT("/:id", handlers.UpdateUser)
				authed.PATCH("/:id", handlers.UpdateUser)
				authed.DELETE("/:id", handlers.DeleteUser)
			}
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:id", handlers.GetProject)
			projects.PUT("/:id", handlers.UpdateProject)
			projects.PATCH("/:id", handlers.UpdateProject)
			projects.DELETE("/:id", handlers.DeleteProject)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.POST("", handlers.CreateTask)
			tasks.GET("", handlers.ListTasks)
			tasks.GET("/:id", handlers.GetTask)
			tasks.PUT("/:id", handlers.UpdateTask)
			tasks.PATCH("/:id", handlers.UpdateTask)
			tasks.DELETE("/:id", handlers.DeleteTask)
		}

		alertas := api.Group("/alertas", middleware.AuthMiddleware())
		{
			alertas.POST("", handlers.CreateAlert)
			alertas.GET("", handlers.ListAlerts)
			alertas.PATCH("/update-visibility", handlers.UpdateAlertVisibility)
			alertas.GET("/:id", handlers.GetAlert)
			alertas.DELETE("/:id", handlers.DeleteAlert)
		}
	}

	return r
}
