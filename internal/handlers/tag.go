package handlers

import (
	"net/http"
	"strings"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TagHandler struct{}

func NewTagHandler() *TagHandler {
	return &TagHandler{}
}

// Create 给照片加标签 - 空格分隔多个标签名,按名字复用已有标签
func (h *TagHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	photoID := uint(utils.StringToInt(c.Param("id")))

	var photo models.Photo
	if err := db.DB.Preload("Tags").First(&photo, photoID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}
	if photo.UserID != user.ID && !user.Can(models.PermissionModerate) {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	names := strings.Fields(c.PostForm("tag"))
	if len(names) == 0 {
		RenderError(c, http.StatusBadRequest, "Tag name cannot be empty.")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			var tag models.Tag
			if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
				tag = models.Tag{Name: name}
				if err := tx.Create(&tag).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&photo).Association("Tags").Append(&tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Tag failed.")
		return
	}

	utils.GetCache().Delete("tag:cloud")
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// Delete 移除照片上的标签 - 标签不再被任何照片引用时一并删除
func (h *TagHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	photoID := uint(utils.StringToInt(c.Param("id")))
	tagID := uint(utils.StringToInt(c.Param("tag_id")))

	var photo models.Photo
	if err := db.DB.First(&photo, photoID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}
	if photo.UserID != user.ID && !user.Can(models.PermissionModerate) {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	var tag models.Tag
	if err := db.DB.First(&tag, tagID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Tag not found.")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&photo).Association("Tags").Delete(&tag); err != nil {
			return err
		}
		return removeOrphanTags(tx, []uint{tag.ID})
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Delete failed.")
		return
	}

	utils.GetCache().Delete("tag:cloud")
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// Show 标签页 - 按时间或收藏数排序展示照片
func (h *TagHandler) Show(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))
	order := c.DefaultQuery("order", "by_time")
	page := pageParam(c)

	var tag models.Tag
	if err := db.DB.First(&tag, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Tag not found.")
		return
	}

	base := db.DB.Model(&models.Photo{}).
		Joins("JOIN photo_tags ON photo_tags.photo_id = photos.id").
		Where("photo_tags.tag_id = ?", tag.ID)

	var count int64
	base.Count(&count)

	query := db.DB.Preload("User").
		Joins("JOIN photo_tags ON photo_tags.photo_id = photos.id").
		Where("photo_tags.tag_id = ?", tag.ID)

	if order == "by_collections" {
		query = query.
			Joins("LEFT JOIN collects ON collects.photo_id = photos.id").
			Group("photos.id").
			Order("COUNT(collects.id) DESC")
	} else {
		query = query.Order("photos.created_at DESC")
	}

	var photos []models.Photo
	query.Offset((page - 1) * PhotoPerPage).Limit(PhotoPerPage).Find(&photos)
	fillPhotoCounts(photos)

	Render(c, http.StatusOK, "photo/tag.html", gin.H{
		"Title":      "Tag - " + tag.Name,
		"Tag":        tag,
		"Photos":     photos,
		"Order":      order,
		"Page":       page,
		"TotalPages": totalPages(count, PhotoPerPage),
	})
}
