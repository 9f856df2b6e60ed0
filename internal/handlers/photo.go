package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/services"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxUploadBytes = 3 * 1024 * 1024

type PhotoHandler struct{}

func NewPhotoHandler() *PhotoHandler {
	return &PhotoHandler{}
}

// fillPhotoCounts 列表页补充评论数/收藏数
func fillPhotoCounts(photos []models.Photo) {
	for i := range photos {
		db.DB.Model(&models.Comment{}).Where("photo_id = ?", photos[i].ID).Count(&photos[i].CommentCount)
		db.DB.Model(&models.Collect{}).Where("photo_id = ?", photos[i].ID).Count(&photos[i].CollectCount)
	}
}

// hotTags 标签云 - 按关联照片数取前 10,走本地缓存
func hotTags() []models.Tag {
	if cached := utils.GetCache().Get("tag:cloud"); cached != nil {
		return cached.([]models.Tag)
	}

	var tags []models.Tag
	db.DB.Raw(`SELECT tags.id, tags.name, COUNT(photo_tags.photo_id) AS photo_count
		FROM tags JOIN photo_tags ON photo_tags.tag_id = tags.id
		GROUP BY tags.id, tags.name
		ORDER BY photo_count DESC LIMIT 10`).Scan(&tags)

	utils.GetCache().Set("tag:cloud", tags, 5*time.Minute)
	return tags
}

// Home 首页 - 登录后是关注时间线(关注的作者 + 自己的照片),未登录展示入口页
func (h *PhotoHandler) Home(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		Render(c, http.StatusOK, "photo/index.html", gin.H{"Title": "Album Wall", "Tags": hotTags()})
		return
	}

	page := pageParam(c)

	// 不落自关注边,自己的照片在查询时并入时间线
	followed := db.DB.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", user.ID)

	var count int64
	db.DB.Model(&models.Photo{}).
		Where("user_id IN (?) OR user_id = ?", followed, user.ID).
		Count(&count)

	var photos []models.Photo
	db.DB.Preload("User").
		Where("user_id IN (?) OR user_id = ?", followed, user.ID).
		Order("created_at DESC").
		Offset((page - 1) * PhotoPerPage).
		Limit(PhotoPerPage).
		Find(&photos)
	fillPhotoCounts(photos)

	Render(c, http.StatusOK, "photo/index.html", gin.H{
		"Title":      "Home",
		"Photos":     photos,
		"Tags":       hotTags(),
		"Page":       page,
		"TotalPages": totalPages(count, PhotoPerPage),
	})
}

// Explore 随机照片发现页
func (h *PhotoHandler) Explore(c *gin.Context) {
	var photos []models.Photo
	db.DB.Preload("User").Order("RANDOM()").Limit(PhotoPerPage).Find(&photos)
	fillPhotoCounts(photos)

	Render(c, http.StatusOK, "photo/explore.html", gin.H{
		"Title":  "Explore",
		"Photos": photos,
	})
}

func (h *PhotoHandler) ShowUpload(c *gin.Context) {
	Render(c, http.StatusOK, "photo/upload.html", gin.H{"Title": "Upload"})
}

// Upload 上传照片 - 请求只落原图,派生尺寸交给后台队列
func (h *PhotoHandler) Upload(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	file, err := c.FormFile("file")
	if err != nil {
		Render(c, http.StatusBadRequest, "photo/upload.html", gin.H{"Error": "Please choose an image."})
		return
	}
	if file.Size > maxUploadBytes {
		Render(c, http.StatusBadRequest, "photo/upload.html", gin.H{"Error": "Image must be smaller than 3 MB."})
		return
	}

	filename := services.RenameImage(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(services.UploadPath(), filename)); err != nil {
		RenderError(c, http.StatusInternalServerError, "Upload failed.")
		return
	}

	photo := models.Photo{
		UserID:         user.ID,
		Filename:       filename,
		Description:    utils.SanitizeHTML(c.PostForm("description")),
		CommentAllowed: true,
	}
	if err := db.DB.Create(&photo).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Upload failed.")
		return
	}

	services.GetImageService().ScheduleDerive(photo.ID)

	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// Show 照片详情页 - 评论分页 + 收藏状态
func (h *PhotoHandler) Show(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var photo models.Photo
	if err := db.DB.Preload("User").Preload("Tags").First(&photo, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	page := pageParam(c)
	var commentCount int64
	db.DB.Model(&models.Comment{}).Where("photo_id = ?", photo.ID).Count(&commentCount)

	var comments []models.Comment
	db.DB.Preload("User").Preload("Parent").Preload("Parent.User").
		Where("photo_id = ?", photo.ID).
		Order("created_at DESC").
		Offset((page - 1) * CommentPerPage).
		Limit(CommentPerPage).
		Find(&comments)

	viewer := currentUser(c)
	isCollecting := false
	if viewer != nil {
		isCollecting = IsCollecting(viewer.ID, photo.ID)
	}

	Render(c, http.StatusOK, "photo/detail.html", gin.H{
		"Title":         "Photo",
		"Photo":         photo,
		"Comments":      comments,
		"CommentCount":  commentCount,
		"CollectCount":  CollectorsCount(photo.ID),
		"IsCollecting":  isCollecting,
		"Page":          page,
		"TotalPages":    totalPages(commentCount, CommentPerPage),
		"ReplyTo":       c.Query("reply"),
		"ReplyToAuthor": c.Query("author"),
	})
}

// Next 同一作者时间线上的下一张(更早)
func (h *PhotoHandler) Next(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var photo models.Photo
	if err := db.DB.First(&photo, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	var next models.Photo
	err := db.DB.Where("user_id = ? AND id < ?", photo.UserID, photo.ID).
		Order("id DESC").First(&next).Error
	if err != nil {
		// Already the last photo
		c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
		return
	}
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(next.ID))
}

// Previous 同一作者时间线上的上一张(更晚)
func (h *PhotoHandler) Previous(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var photo models.Photo
	if err := db.DB.First(&photo, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	var prev models.Photo
	err := db.DB.Where("user_id = ? AND id > ?", photo.UserID, photo.ID).
		Order("id ASC").First(&prev).Error
	if err != nil {
		c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
		return
	}
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(prev.ID))
}

// EditDescription 描述编辑 - 作者本人或 MODERATE 权限
func (h *PhotoHandler) EditDescription(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var photo models.Photo
	if err := db.DB.First(&photo, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}
	if photo.UserID != user.ID && !user.Can(models.PermissionModerate) {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	db.DB.Model(&photo).Update("description", utils.SanitizeHTML(c.PostForm("description")))
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// ToggleComment 评论开关 - 仅作者本人
func (h *PhotoHandler) ToggleComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var photo models.Photo
	if err := db.DB.First(&photo, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}
	if photo.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	db.DB.Model(&photo).Update("comment_allowed", !photo.CommentAllowed)
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// Report 举报照片 - flag 计数 +1
func (h *PhotoHandler) Report(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var photo models.Photo
	if err := db.DB.First(&photo, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	db.DB.Model(&photo).UpdateColumn("flag", gorm.Expr("flag + 1"))
	c.Redirect(http.StatusFound, "/photo/"+utils.UintToString(photo.ID))
}

// Delete 删除照片 - 作者本人或 MODERATE 权限,级联清理
func (h *PhotoHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var photo models.Photo
	if err := db.DB.First(&photo, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Photo not found.")
		return
	}
	if photo.UserID != user.ID && !user.Can(models.PermissionModerate) {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return deletePhotoCascade(tx, &photo)
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Delete failed.")
		return
	}

	var owner models.User
	if err := db.DB.First(&owner, photo.UserID).Error; err == nil {
		c.Redirect(http.StatusFound, "/user/"+owner.Username)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// deletePhotoCascade 删除照片及其评论、收藏边、标签关联,
// 关联清空后变成孤儿的标签一并删除,最后清理磁盘文件
func deletePhotoCascade(tx *gorm.DB, photo *models.Photo) error {
	var tagIDs []uint
	if err := tx.Table("photo_tags").Where("photo_id = ?", photo.ID).Pluck("tag_id", &tagIDs).Error; err != nil {
		return err
	}

	if err := tx.Where("photo_id = ?", photo.ID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("photo_id = ?", photo.ID).Delete(&models.Collect{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM photo_tags WHERE photo_id = ?", photo.ID).Error; err != nil {
		return err
	}
	if err := removeOrphanTags(tx, tagIDs); err != nil {
		return err
	}
	if err := tx.Delete(photo).Error; err != nil {
		return err
	}

	services.DeletePhotoFiles(photo)
	return nil
}

// removeOrphanTags 删除不再关联任何照片的标签
func removeOrphanTags(tx *gorm.DB, tagIDs []uint) error {
	for _, tagID := range tagIDs {
		var count int64
		if err := tx.Table("photo_tags").Where("tag_id = ?", tagID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Delete(&models.Tag{}, tagID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Search 搜索 - category 为 user/tag/photo,走 ILIKE 匹配
func (h *PhotoHandler) Search(c *gin.Context) {
	q := c.Query("q")
	category := c.DefaultQuery("category", "photo")
	page := pageParam(c)

	if q == "" {
		Render(c, http.StatusOK, "photo/search.html", gin.H{
			"Title": "Search", "Query": q, "Category": category,
		})
		return
	}

	pattern := "%" + q + "%"
	data := gin.H{"Title": "Search - " + q, "Query": q, "Category": category, "Page": page}

	switch category {
	case "user":
		var count int64
		db.DB.Model(&models.User{}).Where("username ILIKE ? OR name ILIKE ?", pattern, pattern).Count(&count)
		var users []models.User
		db.DB.Where("username ILIKE ? OR name ILIKE ?", pattern, pattern).
			Offset((page - 1) * SearchPerPage).Limit(SearchPerPage).Find(&users)
		data["Users"] = users
		data["TotalPages"] = totalPages(count, SearchPerPage)
	case "tag":
		var count int64
		db.DB.Model(&models.Tag{}).Where("name ILIKE ?", pattern).Count(&count)
		var tags []models.Tag
		db.DB.Where("name ILIKE ?", pattern).
			Offset((page - 1) * SearchPerPage).Limit(SearchPerPage).Find(&tags)
		data["Tags"] = tags
		data["TotalPages"] = totalPages(count, SearchPerPage)
	default:
		var count int64
		db.DB.Model(&models.Photo{}).Where("description ILIKE ?", pattern).Count(&count)
		var photos []models.Photo
		db.DB.Preload("User").Where("description ILIKE ?", pattern).
			Offset((page - 1) * SearchPerPage).Limit(SearchPerPage).Find(&photos)
		fillPhotoCounts(photos)
		data["Photos"] = photos
		data["TotalPages"] = totalPages(count, SearchPerPage)
	}

	Render(c, http.StatusOK, "photo/search.html", data)
}
