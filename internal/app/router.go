package app

import (
	"github.com/HrushithaL/CyberQuest-sub001/internal/config"
	"github.com/HrushithaL/CyberQuest-sub001/internal/middleware"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/me", c.auth.Me)

		missions := authGroup.Group("/missions")
		{
			missions.GET("", c.mission.GetMissions)
			missions.GET("/:id", c.mission.GetMission)
			missions.POST("/submit", c.mission.Submit)
			missions.POST("/evaluate", c.mission.Evaluate)
			missions.POST("/autosave", c.mission.Autosave)
			missions.POST("/validate-section", c.mission.ValidateSection)
			missions.POST("/:id/complete", c.mission.Complete)
			missions.GET("/:id/challenges/:index/attachment", c.mission.Attachment)
		}

		progress := authGroup.Group("/progress")
		{
			progress.GET("", c.progress.GetProgress)
			progress.GET("/:missionId", c.progress.GetMissionProgress)
		}
	}
}
