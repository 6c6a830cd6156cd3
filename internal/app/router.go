package app

import (
	"nexuslearn_backend/docs"
	"nexuslearn_backend/internal/config"
	"nexuslearn_backend/internal/middleware"
	"nexuslearn_backend/internal/model"

	"nexuslearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 问答模块
	a.registerForumRoutes(router, c, repos)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar", c.user.UploadAvatar)
	}

	// 4. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerForumRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	// 活跃时间必须在身份注入之后记录，否则读不到用户
	tryAuth := middleware.TryAuthMiddleware(a.Config)
	activity := middleware.ActivityMiddleware(repos.user)

	forum := router.Group("/api/forum")
	{
		// 列表类：可选认证，允许游客访问，登录用户可看我的
		forum.GET("/questions", tryAuth, activity, c.forum.GetQuestions)
		forum.GET("/questions/:id", tryAuth, activity, c.forum.GetQuestionDetail)
		forum.GET("/questions/:id/answers", tryAuth, activity, c.forum.GetAnswers)
		forum.GET("/questions/:id/related", c.forum.GetRelatedQuestions)
		forum.GET("/answers/:answerId/comments", c.forum.GetComments)
		forum.GET("/tags/popular", c.forum.PopularTags)
		forum.GET("/leaderboard", c.user.Leaderboard)
		forum.GET("/users/:id", c.user.GetUser)
		forum.GET("/users/:id/questions", c.user.GetUserQuestions)
		forum.GET("/users/:id/answers", c.user.GetUserAnswers)

		// 交互类：强制认证
		authorized := forum.Group("/")
		authorized.Use(middleware.AuthMiddleware(a.Config), activity)
		{
			authorized.POST("/questions", c.forum.CreateQuestion)
			authorized.POST("/questions/:id/answers", c.forum.PostAnswer)
			authorized.POST("/questions/:id/answers/:answerId/accept", c.forum.AcceptAnswer)
			authorized.POST("/questions/:id/vote", c.forum.VoteQuestion)
			authorized.POST("/answers/:answerId/vote", c.forum.VoteAnswer)
			authorized.POST("/answers/:answerId/comments", c.forum.CreateComment)
		}
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.GetUsers)
		admin.PATCH("/users/:id/disable", c.user.DisableUser)
	}
}
