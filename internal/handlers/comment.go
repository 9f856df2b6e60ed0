package handlers

import (
	"net/http"
	"strings"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/services"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// Create 发表评论 - 照片关闭评论时拒绝;带 reply 参数时是回复,
// 通知分别发给照片作者和被回复的评论作者
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	photoID := uint(utils.StringToInt(c.Param("id")))

	var photo models.Photo
	if err := db.DB.Preload("User").First(&photo, photoID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}
	if !photo.CommentAllowed {
		RenderError(c, http.StatusBadRequest, "Comments are disabled for this photo.")
		return
	}

	body := strings.TrimSpace(c.PostForm("body"))
	if body == "" {
		RenderError(c, http.StatusBadRequest, "Comment cannot be empty.")
		return
	}

	var parent *models.Comment
	if replyID := utils.StringToInt(c.Query("reply")); replyID > 0 {
		var p models.Comment
		if err := db.DB.Preload("User").Where("photo_id = ?", photo.ID).First(&p, replyID).Error; err != nil {
			RenderError(c, http.StatusNotFound, "Comment not found.")
			return
		}
		parent = &p
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		comment := models.Comment{
			PhotoID: photo.ID,
			UserID:  user.ID,
			Body:    utils.SanitizeHTML(body),
		}
		if parent != nil {
			comment.ParentID = &parent.ID
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if parent != nil {
			if err := services.PushReplyNotification(tx, user, photo.ID, &parent.User); err != nil {
				return err
			}
		}
		return services.PushCommentNotification(tx, user, photo.ID, &photo.User)
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Comment failed.")
		return
	}

	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID)+"#comments")
}

// Delete 删除评论 - 评论作者、照片作者或 MODERATE 权限,回复随父评论级联删除
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var comment models.Comment
	if err := db.DB.Preload("Photo").First(&comment, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}
	if comment.UserID != user.ID && comment.Photo.UserID != user.ID && !user.Can(models.PermissionModerate) {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Delete failed.")
		return
	}

	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(comment.PhotoID)+"#comments")
}

// Report 举报评论 - flag 计数 +1
func (h *CommentHandler) Report(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	db.DB.Model(&comment).UpdateColumn("flag", gorm.Expr("flag + 1"))
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(comment.PhotoID)+"#comments")
}
