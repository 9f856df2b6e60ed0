package handlers

import (
	"net/http"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/services"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List 通知列表 - filter=unread 时只看未读
func (h *NotificationHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	filter := c.Query("filter")
	page := pageParam(c)

	countQuery := db.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	listQuery := db.DB.Preload("Actor").Where("user_id = ?", user.ID)
	if filter == "unread" {
		countQuery = countQuery.Where("is_read = ?", false)
		listQuery = listQuery.Where("is_read = ?", false)
	}

	var count int64
	countQuery.Count(&count)

	var notifications []models.Notification
	listQuery.
		Order("created_at DESC").
		Offset((page - 1) * NotificationPerPage).
		Limit(NotificationPerPage).
		Find(&notifications)

	Render(c, http.StatusOK, "notification/list.html", gin.H{
		"Title":         "Notifications",
		"Notifications": notifications,
		"Filter":        filter,
		"Page":          page,
		"TotalPages":    totalPages(count, NotificationPerPage),
	})
}

// Read 标记单条已读 - 只有接收者本人可以,重复标记是幂等的
func (h *NotificationHandler) Read(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var notification models.Notification
	if err := db.DB.First(&notification, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Notification not found.")
		return
	}
	if notification.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	if !notification.IsRead {
		db.DB.Model(&notification).Update("is_read", true)
		services.InvalidateUnreadCount(user.ID)
	}

	c.Redirect(http.StatusFound, "/notification")
}

// ReadAll 全部标为已读,只影响当前用户自己的通知
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	services.InvalidateUnreadCount(user.ID)

	c.Redirect(http.StatusFound, "/notification")
}
