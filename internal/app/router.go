package app

import (
	"elearn_backend/docs"
	"elearn_backend/internal/config"
	"elearn_backend/internal/middleware"
	"elearn_backend/internal/model"
	"elearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/me", c.auth.Me)

		// 内容
		authGroup.GET("/paths", c.content.ListPaths)
		authGroup.GET("/paths/:id", c.content.GetPath)
		authGroup.GET("/lessons/:id", c.content.GetLesson)
		authGroup.GET("/quizzes/:id", c.content.GetQuiz)

		// 学习进度
		authGroup.POST("/lessons/:id/view", c.learning.ViewLesson)
		authGroup.POST("/lessons/:id/complete", c.learning.CompleteLesson)
		authGroup.GET("/lessons/:id/progress", c.learning.GetProgress)

		// 选课
		authGroup.POST("/paths/:id/enroll", c.enrollment.Enroll)
		authGroup.GET("/paths/:id/enrollment", c.enrollment.GetEnrollment)
		authGroup.GET("/enrollments", c.enrollment.ListMyEnrollments)

		// 提交与评分
		authGroup.POST("/quizzes/:id/submissions", c.submission.SubmitQuiz)
		authGroup.GET("/quizzes/:id/submissions", c.submission.ListMySubmissions)
		authGroup.GET("/submissions/:id", c.submission.GetSubmission)

		// 档案
		authGroup.GET("/profile/stats", c.profile.GetStats)
		authGroup.GET("/profile/badges", c.profile.GetBadges)

		// 教师接口
		instructor := authGroup.Group("/instructor")
		instructor.Use(middleware.RoleMiddleware(model.Instructor))
		{
			instructor.POST("/submissions/:id/regrade", c.submission.Regrade)
		}
	}
}
