package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/datatwine/CreateScale/internal/config"
	"github.com/datatwine/CreateScale/internal/http/middleware"
	"github.com/datatwine/CreateScale/internal/interface/http/handler"
)

func SetupRouter(
	cfg *config.Config,
	tokens middleware.AccessTokenParser,
	engagementHandler *handler.EngagementHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(tokens))

	// Изменения ограничиваем по пользователю, чтение свободно.
	mutations := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	api.POST("/performers/:id/hire", middleware.UUIDValidator("id"), mutations, engagementHandler.Hire)

	engagements := api.Group("/engagements")
	{
		engagements.GET("", engagementHandler.List)
		engagements.GET("/live", engagementHandler.LiveEvents)
		engagements.GET("/:id", middleware.UUIDValidator("id"), engagementHandler.Get)
		engagements.POST("/:id/action", middleware.UUIDValidator("id"), mutations, engagementHandler.PerformAction)
	}

	return r
}
