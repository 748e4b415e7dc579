/*
 * @Description: 路由注册：公开接口、认证接口与管理员接口的分组
 * @Author: 安知鱼
 * @Date: 2025-09-04 16:08:55
 * @LastEditTime: 2025-11-07 21:30:14
 * @LastEditors: 安知鱼
 */
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anwen-blog/internal/app/middleware"
	auth_handler "github.com/anzhiyu-c/anwen-blog/pkg/handler/auth"
	post_handler "github.com/anzhiyu-c/anwen-blog/pkg/handler/post"
	user_handler "github.com/anzhiyu-c/anwen-blog/pkg/handler/user"
)

// Router 持有全部 Handler 和中间件，负责把它们装配到路由树上
type Router struct {
	authHandler *auth_handler.Handler
	postHandler *post_handler.Handler
	userHandler *user_handler.Handler
	mw          *middleware.Middleware
}

// New 是 Router 的构造函数
func New(
	authHandler *auth_handler.Handler,
	postHandler *post_handler.Handler,
	userHandler *user_handler.Handler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		authHandler: authHandler,
		postHandler: postHandler,
		userHandler: userHandler,
		mw:          mw,
	}
}

// Setup 构建 gin 引擎并注册所有路由
func (r *Router) Setup(debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.Cors())

	api := engine.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 认证与个人资料
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh-token", r.authHandler.RefreshToken)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword)

		authed := authGroup.Group("", r.mw.JWTAuth())
		{
			authed.POST("/logout", r.authHandler.Logout)
			authed.GET("/me", r.authHandler.Me)
			authed.PUT("/profile", r.authHandler.UpdateProfile)
			authed.PUT("/change-password", r.authHandler.ChangePassword)
		}
	}

	// 文章
	postGroup := api.Group("/posts")
	{
		postGroup.GET("", r.postHandler.List)
		// 详情挂可选认证：游客可读，带 Token 时响应中附带点赞状态
		postGroup.GET("/:slug", r.mw.JWTAuthOptional(), r.postHandler.GetBySlug)

		authed := postGroup.Group("", r.mw.JWTAuth())
		{
			authed.POST("", r.postHandler.Create)
			authed.PUT("/:id", r.postHandler.Update)
			authed.DELETE("/:id", r.postHandler.Delete)
			authed.POST("/:id/like", r.postHandler.ToggleLike)
			authed.POST("/:id/comments", r.postHandler.AddComment)
		}
	}

	// 用户
	userGroup := api.Group("/users")
	{
		userGroup.GET("/profile/:username", r.userHandler.PublicProfile)
		userGroup.GET("/profile/:username/posts", r.userHandler.PublicPosts)

		authed := userGroup.Group("", r.mw.JWTAuth())
		{
			// "我的文章"：草稿和已归档的只有作者自己可见
			authed.GET("/me/posts", r.postHandler.ListMine)
			authed.PUT("/:id", r.userHandler.Update)
			authed.DELETE("/:id", r.userHandler.Delete)
		}
	}

	// 管理员
	adminGroup := api.Group("/admin", r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		adminGroup.GET("/users", r.userHandler.AdminList)
		adminGroup.GET("/stats", r.userHandler.Stats)
	}

	return engine
}
