package router

import (
	"github.com/wangtianxing1010/Album-Wall/internal/handlers"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	photoHandler := handlers.NewPhotoHandler()
	userHandler := handlers.NewUserHandler()
	collectHandler := handlers.NewCollectHandler()
	commentHandler := handlers.NewCommentHandler()
	tagHandler := handlers.NewTagHandler()
	notificationHandler := handlers.NewNotificationHandler()
	ajaxHandler := handlers.NewAjaxHandler()
	adminHandler := handlers.NewAdminHandler()

	// 公共路由 (Public Routes)
	r.GET("/", photoHandler.Home)                            // 首页 - 关注时间线
	r.GET("/explore", photoHandler.Explore)                  // 随机发现
	r.GET("/search", photoHandler.Search)                    // 搜索
	r.GET("/photo/:id", photoHandler.Show)                   // 照片详情
	r.GET("/photo/:id/next", photoHandler.Next)              // 下一张
	r.GET("/photo/:id/previous", photoHandler.Previous)      // 上一张
	r.GET("/photo/:id/collectors", collectHandler.Collectors) // 收藏者列表
	r.GET("/tag/:id", tagHandler.Show)                       // 标签页
	r.GET("/user/:username", userHandler.Profile)            // 用户主页
	r.GET("/user/:username/followers", userHandler.Followers)
	r.GET("/user/:username/following", userHandler.Following)
	r.GET("/user/:username/collections", userHandler.Collections)

	// 认证路由 (Auth Routes)
	auth := r.Group("/auth")
	{
		auth.GET("/register", authHandler.ShowRegister)
		auth.POST("/register", authHandler.Register)
		auth.GET("/login", authHandler.ShowLogin)
		auth.POST("/login", authHandler.Login)
		auth.GET("/logout", authHandler.Logout)
		auth.GET("/forgot-password", authHandler.ShowForgotPassword)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.GET("/reset-password", authHandler.ShowResetPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// 已登录但可以未确认 (Logged-in, confirmation pending allowed)
	confirmFlow := r.Group("/auth")
	confirmFlow.Use(middleware.AuthRequired())
	{
		confirmFlow.GET("/confirm", authHandler.ShowConfirm)
		confirmFlow.POST("/confirm", authHandler.Confirm)
		confirmFlow.POST("/resend-confirm", authHandler.ResendConfirm)
	}

	// 受保护路由 (Protected Routes) - 需登录 + 已确认
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired(), middleware.ConfirmRequired())
	{
		authorized.GET("/upload", middleware.PermissionRequired(models.PermissionUpload), photoHandler.ShowUpload)
		authorized.POST("/upload", middleware.PermissionRequired(models.PermissionUpload), photoHandler.Upload)

		authorized.POST("/photo/:id/description", photoHandler.EditDescription)
		authorized.POST("/photo/:id/comment-toggle", photoHandler.ToggleComment)
		authorized.POST("/photo/:id/report", photoHandler.Report)
		authorized.POST("/photo/:id/delete", photoHandler.Delete)

		authorized.POST("/photo/:id/collect", middleware.PermissionRequired(models.PermissionCollect), collectHandler.Collect)
		authorized.POST("/photo/:id/uncollect", middleware.PermissionRequired(models.PermissionCollect), collectHandler.Uncollect)

		authorized.POST("/photo/:id/comment", middleware.PermissionRequired(models.PermissionComment), commentHandler.Create)
		authorized.POST("/comment/:id/delete", commentHandler.Delete)
		authorized.POST("/comment/:id/report", commentHandler.Report)

		authorized.POST("/photo/:id/tags", tagHandler.Create)
		authorized.POST("/photo/:id/tags/:tag_id/delete", tagHandler.Delete)
	}

	follow := r.Group("/user")
	follow.Use(middleware.AuthRequired(), middleware.ConfirmRequired(), middleware.PermissionRequired(models.PermissionFollow))
	{
		follow.POST("/:username/follow", userHandler.Follow)
		follow.POST("/:username/unfollow", userHandler.Unfollow)
	}

	// 个人设置 (Settings)
	settings := r.Group("/settings")
	settings.Use(middleware.AuthRequired())
	{
		settings.GET("", userHandler.ShowSettings)
		settings.POST("/profile", userHandler.EditProfile)
		settings.POST("/avatar", userHandler.UploadAvatar)
		settings.POST("/password", userHandler.ChangePassword)
		settings.POST("/email", userHandler.ChangeEmailRequest)
		settings.POST("/email/confirm", userHandler.ChangeEmail)
		settings.POST("/notification", userHandler.NotificationSetting)
		settings.POST("/privacy", userHandler.PrivacySetting)
		settings.POST("/delete-account", userHandler.DeleteAccount)
	}

	// 通知 (Notifications)
	notification := r.Group("/notification")
	notification.Use(middleware.AuthRequired())
	{
		notification.GET("", notificationHandler.List)
		notification.POST("/:id/read", notificationHandler.Read)
		notification.POST("/read-all", notificationHandler.ReadAll)
	}

	// AJAX 接口,错误以 JSON 状态码表达,鉴权在 handler 内完成
	ajax := r.Group("/ajax")
	{
		ajax.POST("/follow/:id", ajaxHandler.Follow)
		ajax.POST("/unfollow/:id", ajaxHandler.Unfollow)
		ajax.POST("/collect/:id", ajaxHandler.Collect)
		ajax.POST("/uncollect/:id", ajaxHandler.Uncollect)
		ajax.GET("/followers-count/:id", ajaxHandler.FollowersCount)
		ajax.GET("/collectors-count/:id", ajaxHandler.CollectorsCount)
		ajax.GET("/notifications-count", ajaxHandler.NotificationsCount)
		ajax.GET("/profile/:id", ajaxHandler.Profile)
	}

	// 管理后台 (Admin)
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.PermissionRequired(models.PermissionModerate))
	{
		admin.GET("", adminHandler.Dashboard)
		admin.GET("/users", adminHandler.ManageUsers)
		admin.POST("/users/:id/edit", adminHandler.EditUser)
		admin.POST("/users/:id/lock", adminHandler.Lock)
		admin.POST("/users/:id/unlock", adminHandler.Unlock)
		admin.POST("/users/:id/block", adminHandler.Block)
		admin.POST("/users/:id/unblock", adminHandler.Unblock)
		admin.GET("/photos", adminHandler.ManagePhotos)
		admin.GET("/comments", adminHandler.ManageComments)
		admin.GET("/tags", adminHandler.ManageTags)
		admin.POST("/tags/:id/delete", adminHandler.DeleteTag)
	}
}
