package handlers

import (
	"net/http"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/services"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CollectHandler struct{}

func NewCollectHandler() *CollectHandler {
	return &CollectHandler{}
}

// IsCollecting 判断用户是否已收藏照片
func IsCollecting(userID, photoID uint) bool {
	var count int64
	db.DB.Model(&models.Collect{}).
		Where("user_id = ? AND photo_id = ?", userID, photoID).
		Count(&count)
	return count > 0
}

// CollectorsCount 照片的收藏数
func CollectorsCount(photoID uint) int64 {
	var count int64
	db.DB.Model(&models.Collect{}).Where("photo_id = ?", photoID).Count(&count)
	return count
}

// Collect 收藏照片 - 重复收藏返回 400,收藏边与通知同事务落库
func (h *CollectHandler) Collect(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	photoID := uint(utils.StringToInt(c.Param("id")))

	var photo models.Photo
	if err := db.DB.Preload("User").First(&photo, photoID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	if IsCollecting(user.ID, photo.ID) {
		RenderError(c, http.StatusBadRequest, "Already collected.")
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
		// 唯一索引兜底并发下的重复收藏
		RenderError(c, http.StatusBadRequest, "Already collected.")
		return
	}

	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// Uncollect 取消收藏 - 未收藏时返回 400
func (h *CollectHandler) Uncollect(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	photoID := uint(utils.StringToInt(c.Param("id")))

	var photo models.Photo
	if err := db.DB.First(&photo, photoID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	result := db.DB.Where("user_id = ? AND photo_id = ?", user.ID, photo.ID).Delete(&models.Collect{})
	if result.RowsAffected == 0 {
		RenderError(c, http.StatusBadRequest, "Not collected yet.")
		return
	}

	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// Collectors 照片的收藏者列表
func (h *CollectHandler) Collectors(c *gin.Context) {
	photoID := uint(utils.StringToInt(c.Param("id")))

	var photo models.Photo
	if err := db.DB.Preload("User").First(&photo, photoID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	page := pageParam(c)
	var count int64
	db.DB.Model(&models.Collect{}).Where("photo_id = ?", photo.ID).Count(&count)

	var collects []models.Collect
	db.DB.Preload("User").
		Where("photo_id = ?", photo.ID).
		Order("created_at DESC").
		Offset((page - 1) * UserPerPage).
		Limit(UserPerPage).
		Find(&collects)

	Render(c, http.StatusOK, "photo/collectors.html", gin.H{
		"Title":      "Collectors",
		"Photo":      photo,
		"Collects":   collects,
		"Page":       page,
		"TotalPages": totalPages(count, UserPerPage),
	})
}
