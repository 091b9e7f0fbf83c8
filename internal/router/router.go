package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teamhub/internal/config"
	"teamhub/internal/controller"
	"teamhub/internal/logger"
	"teamhub/internal/middleware"
	"teamhub/internal/model"
	"teamhub/internal/validator"
)

// SetupRouter 组装路由
func SetupRouter(db *gorm.DB) *gin.Engine {
	if config.GlobalConfig.App.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Init()

	r := gin.New()
	r.Use(logger.GinLogger(), gin.Recovery())

	userApi := controller.NewUserApi(db)
	adminApi := controller.NewAdminApi(db)
	notificationApi := controller.NewNotificationApi(db)
	streamApi := controller.NewStreamApi(db)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", userApi.Register)
		users.POST("/login", userApi.Login)
		users.POST("/refresh", middleware.RefreshAuth(), userApi.RefreshToken)
		users.POST("/forgot-password", userApi.ForgotPassword)

		authed := users.Group("", middleware.JWTAuth())
		{
			authed.POST("/logout", userApi.Logout)
			authed.GET("/me", userApi.Me)
			authed.PUT("/me", userApi.UpdateProfile)
			authed.PUT("/me/password", userApi.ChangePassword)
		}
	}

	admin := api.Group("/admin", middleware.JWTAuth(), middleware.AdminAuth())
	{
		admin.GET("/users", adminApi.ListUsers)
		admin.GET("/users/unverified", adminApi.ListUnverifiedUsers)
		admin.POST("/users/verify", adminApi.VerifyUsers)
		admin.PUT("/users/role", adminApi.UpdateUserRole)
		admin.GET("/password-resets", adminApi.ListPasswordResetRequests)
		admin.POST("/password-resets/:email/reset", adminApi.ResetUserPassword)
		admin.DELETE("/password-resets/:email", adminApi.DeletePasswordResetRequest)
	}

	notifications := api.Group("/notifications")
	{
		// SSE通道的令牌走query参数，在控制器内校验
		notifications.GET("/stream", streamApi.Stream)

		authed := notifications.Group("", middleware.JWTAuth())
		{
			authed.GET("/global", notificationApi.GlobalFeedPage)
			authed.GET("/personal", notificationApi.PersonalFeedPage)
			authed.GET("/global/unread", notificationApi.GlobalFeedByLastRead)
			authed.GET("/personal/unread", notificationApi.PersonalFeedByLastRead)
			authed.GET("/has-new", notificationApi.HasNew)

			authed.POST("/global", middleware.RoleAuth(model.RoleManager), notificationApi.CreateGlobal)
			authed.POST("/personal", middleware.RoleAuth(model.RoleManager), notificationApi.CreatePersonal)
			authed.DELETE("/global/:id", middleware.AdminAuth(), notificationApi.DeleteGlobal)
			authed.DELETE("/personal/:id", notificationApi.DeletePersonal)
		}
	}

	return r
}
