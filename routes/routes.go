package routes

import (
	"github.com/thisdotrob/family-monolith/controllers"
	"github.com/thisdotrob/family-monolith/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, rateLimitPerMinute int) {
	authController := controllers.AuthController{}
	projectController := controllers.ProjectController{}
	tagController := controllers.TagController{}
	taskController := controllers.TaskController{}
	seriesController := controllers.SeriesController{}

	// 公开路由（无需认证）
	public := r.Group("/api/v1")
	{
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
		public.POST("/auth/test-user", authController.CreateTestUser)
	}

	// 需要认证的路由
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware())
	private.Use(middleware.RateLimitMiddleware(rateLimitPerMinute))
	{
		// 项目与标签
		private.POST("/projects", projectController.CreateProject)
		private.POST("/projects/:id/members", projectController.AddMember)
		private.POST("/tags", tagController.CreateTag)
		private.GET("/tags", tagController.ListTags)

		// 任务相关接口
		private.POST("/tasks", taskController.CreateTask)
		private.GET("/tasks", taskController.ListTasks)
		private.POST("/tasks/:id/complete", taskController.CompleteTask)
		private.POST("/tasks/:id/abandon", taskController.AbandonTask)
		private.POST("/tasks/:id/restore", taskController.RestoreTask)

		// 重复任务系列
		private.POST("/series", seriesController.CreateSeries)
		private.GET("/series/:id", seriesController.GetSeries)
		private.PATCH("/series/:id", seriesController.UpdateSeries)
	}

	// 内部路由组（仅限服务器内部调用）
	internal := r.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware())
	{
		internal.POST("/series/:id/topup", seriesController.TopUpSeries)
	}

	// 测试路由
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
