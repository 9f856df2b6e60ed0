package handlers

import (
	"net/http"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/services"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AjaxHandler 页面局部刷新用的 JSON 接口,鉴权失败返回 403 而不是重定向
type AjaxHandler struct{}

func NewAjaxHandler() *AjaxHandler {
	return &AjaxHandler{}
}

// ajaxUser 登录 + 确认 + 权限三道检查,失败时已写出响应并返回 nil
func ajaxUser(c *gin.Context, p models.Permission) *models.User {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Login required."})
		return nil
	}
	if !user.Confirmed {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Confirm account first."})
		return nil
	}
	if !user.Can(p) {
		c.JSON(http.StatusForbidden, gin.H{"message": "No permission."})
		return nil
	}
	return user
}

// Follow 关注 - JSON 版本
func (h *AjaxHandler) Follow(c *gin.Context) {
	user := ajaxUser(c, models.PermissionFollow)
	if user == nil {
		return
	}

	var target models.User
	if err := db.DB.First(&target, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}

	if IsFollowing(user.ID, target.ID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Already followed."})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		follow := models.Follow{FollowerID: user.ID, FollowedID: target.ID}
		if err := tx.Create(&follow).Error; err != nil {
			return err
		}
		return services.PushFollowNotification(tx, user, &target)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Already followed."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Followed."})
}

// Unfollow 取消关注 - JSON 版本
func (h *AjaxHandler) Unfollow(c *gin.Context) {
	user := ajaxUser(c, models.PermissionFollow)
	if user == nil {
		return
	}

	var target models.User
	if err := db.DB.First(&target, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}

	result := db.DB.Where("follower_id = ? AND followed_id = ?", user.ID, target.ID).Delete(&models.Follow{})
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Not followed yet."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed."})
}

// Collect 收藏 - JSON 版本
func (h *AjaxHandler) Collect(c *gin.Context) {
	user := ajaxUser(c, models.PermissionCollect)
	if user == nil {
		return
	}

	var photo models.Photo
	if err := db.DB.Preload("User").First(&photo, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Photo not found."})
		return
	}

	if IsCollecting(user.ID, photo.ID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Already collected."})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		collect := models.Collect{UserID: user.ID, PhotoID: photo.ID}
		if err := tx.Create(&collect).Error; err != nil {
			return err
		}
		return services.PushCollectNotification(tx, user, photo.ID, &photo.User)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Already collected."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collected."})
}

// Uncollect 取消收藏 - JSON 版本
func (h *AjaxHandler) Uncollect(c *gin.Context) {
	user := ajaxUser(c, models.PermissionCollect)
	if user == nil {
		return
	}

	var photo models.Photo
	if err := db.DB.First(&photo, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Photo not found."})
		return
	}

	result := db.DB.Where("user_id = ? AND photo_id = ?", user.ID, photo.ID).Delete(&models.Collect{})
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Not collected yet."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Uncollected."})
}

// FollowersCount 粉丝数,匿名可读
func (h *AjaxHandler) FollowersCount(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": FollowersCount(user.ID)})
}

// CollectorsCount 收藏数,匿名可读
func (h *AjaxHandler) CollectorsCount(c *gin.Context) {
	var photo models.Photo
	if err := db.DB.First(&photo, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Photo not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": CollectorsCount(photo.ID)})
}

// NotificationsCount 当前用户未读通知数,导航栏轮询用
func (h *AjaxHandler) NotificationsCount(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Login required."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": services.UnreadCount(user.ID)})
}

// Profile 用户卡片弹层
func (h *AjaxHandler) Profile(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}

	viewer := currentUser(c)
	isFollowing := false
	if viewer != nil {
		isFollowing = IsFollowing(viewer.ID, user.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"name":            user.DisplayName(),
		"bio":             user.Bio,
		"avatar":          user.Avatar,
		"followers_count": FollowersCount(user.ID),
		"is_following":    isFollowing,
	})
}
