package middleware

import (
	"net/http"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// LoadUser retrieves user from session and sets to context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			result := db.DB.Preload("Role").First(&user, userID)
			if result.Error == nil && user.Active {
				c.Set(CheckUserKey, &user)
				c.Set(UnreadCountKey, services.UnreadCount(user.ID))
			} else {
				// 被封禁或已注销的账号直接踢出会话
				session.Clear()
				session.Save()
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ConfirmRequired 未确认邮箱的账号不能执行写操作
func ConfirmRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet(CheckUserKey).(*models.User)
		if !user.Confirmed {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"Error": "Please confirm your account first.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PermissionRequired 按角色位掩码做能力检查
func PermissionRequired(p models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet(CheckUserKey).(*models.User)
		if !user.Can(p) {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Error": "No permission.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
