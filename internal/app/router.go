package app

import (
	"exam_reviewer_backend/docs"
	"exam_reviewer_backend/internal/config"
	"exam_reviewer_backend/internal/middleware"
	"exam_reviewer_backend/internal/permission"
	"exam_reviewer_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, checker *permission.Checker, cfg *config.Config) {
	router.Use(middleware.RequestID())

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerAttemptRoutes(authGroup, c, checker)
	}
}

func (a *App) registerAttemptRoutes(rg *gin.RouterGroup, c *controllers, checker *permission.Checker) {
	can := func(actions ...permission.Action) gin.HandlerFunc {
		return middleware.RequirePermission(checker, actions...)
	}

	// 生成与作答
	rg.POST("/generate-attempt", can(permission.GenerateAttempt), c.attempt.GenerateAttempt)
	rg.POST("/submit-answer", can(permission.AnswerAttempt), c.attempt.SubmitAnswer)
	rg.POST("/reset-answer", can(permission.AnswerAttempt), c.attempt.ResetAnswer)
	rg.PUT("/set-flag", can(permission.AnswerAttempt), c.attempt.SetFlag)
	rg.POST("/submit-attempt/:attemptId", can(permission.SubmitAttempt), c.attempt.SubmitAttempt)

	// 查询（归属校验在服务层完成）
	view := can(permission.ViewOwnAttempt, permission.ViewAnyAttempt)
	rg.GET("/attempt-time", view, c.attempt.GetTimeRemaining)
	rg.GET("/attempt-questions", view, c.attempt.AttemptQuestions)
	rg.GET("/attempt", view, c.attempt.GetAttempt)
	rg.GET("/attempts", view, c.attempt.ListAttempts)
	rg.GET("/view-result", can(permission.ViewOwnAttempt, permission.ViewAnyResult), c.attempt.ViewResult)
}
