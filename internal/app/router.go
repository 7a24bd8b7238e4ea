package app

import (
	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/middleware"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Check)

	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/health", c.health.Check)
	}

	authed := router.Group("/api")
	authed.Use(middleware.AuthMiddleware(cfg))
	{
		authed.GET("/me", c.auth.GetProfile)
		authed.GET("/me/weak-topics", c.insight.WeakTopics)
		authed.GET("/me/streak", c.insight.Streak)

		authed.GET("/tests", c.test.ListTests)
		authed.GET("/tests/:id", c.test.GetTest)
		authed.GET("/tests/:id/leaderboard", c.test.Leaderboard)
		authed.POST("/tests/:id/attempts", c.session.StartAttempt)

		authed.GET("/attempts/:id", c.session.GetSession)
		authed.PUT("/attempts/:id/answers/:questionId", c.session.SaveAnswer)
		authed.PUT("/attempts/:id/answers/:questionId/review", c.session.SetReview)
		authed.POST("/attempts/:id/submit", c.session.Submit)
		authed.POST("/attempts/:id/events", c.session.ReportEvent)
		authed.GET("/attempts/:id/ticker", c.session.Countdown)
		authed.GET("/attempts/:id/result", c.session.GetResult)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/tests", c.test.CreateTest)
		admin.POST("/tests/:id/questions", c.test.AddQuestions)
		admin.PUT("/tests/:id/publish", c.test.PublishTest)
	}
}
