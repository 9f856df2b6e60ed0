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

// AdminHandler 管理后台,路由组整体挂 MODERATE 权限,
// 角色调整等敏感操作在方法内再查 ADMINISTER
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Dashboard 后台首页 - 全站统计
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var userCount, lockedCount, blockedCount int64
	var photoCount, reportedPhotoCount int64
	var commentCount, reportedCommentCount int64
	var tagCount int64

	db.DB.Model(&models.User{}).Count(&userCount)
	db.DB.Model(&models.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", models.RoleLocked).
		Count(&lockedCount)
	db.DB.Model(&models.User{}).Where("active = ?", false).Count(&blockedCount)
	db.DB.Model(&models.Photo{}).Count(&photoCount)
	db.DB.Model(&models.Photo{}).Where("flag > 0").Count(&reportedPhotoCount)
	db.DB.Model(&models.Comment{}).Count(&commentCount)
	db.DB.Model(&models.Comment{}).Where("flag > 0").Count(&reportedCommentCount)
	db.DB.Model(&models.Tag{}).Count(&tagCount)

	Render(c, http.StatusOK, "admin/index.html", gin.H{
		"Title":                "Dashboard",
		"UserCount":            userCount,
		"LockedCount":          lockedCount,
		"BlockedCount":         blockedCount,
		"PhotoCount":           photoCount,
		"ReportedPhotoCount":   reportedPhotoCount,
		"CommentCount":         commentCount,
		"ReportedCommentCount": reportedCommentCount,
		"TagCount":             tagCount,
	})
}

// ManageUsers 用户管理 - filter 支持 locked/blocked/moderator/administrator
func (h *AdminHandler) ManageUsers(c *gin.Context) {
	filter := c.DefaultQuery("filter", "all")
	page := pageParam(c)

	applyFilter := func(q *gorm.DB) *gorm.DB {
		switch filter {
		case "locked":
			return q.Where("roles.name = ?", models.RoleLocked)
		case "blocked":
			return q.Where("users.active = ?", false)
		case "moderator":
			return q.Where("roles.name = ?", models.RoleModerator)
		case "administrator":
			return q.Where("roles.name = ?", models.RoleAdministrator)
		}
		return q
	}

	var count int64
	applyFilter(db.DB.Model(&models.User{}).
		Joins("JOIN roles ON roles.id = users.role_id")).
		Count(&count)

	var users []models.User
	applyFilter(db.DB.Preload("Role").
		Joins("JOIN roles ON roles.id = users.role_id")).
		Order("users.created_at DESC").
		Offset((page - 1) * ManageUserPerPage).
		Limit(ManageUserPerPage).
		Find(&users)

	var roles []models.Role
	db.DB.Order("id").Find(&roles)

	Render(c, http.StatusOK, "admin/users.html", gin.H{
		"Title":      "Manage Users",
		"Users":      users,
		"Roles":      roles,
		"Filter":     filter,
		"Page":       page,
		"TotalPages": totalPages(count, ManageUserPerPage),
	})
}

// EditUser 调整用户资料和角色 - 资料字段按需更新,改角色需要 ADMINISTER 权限
func (h *AdminHandler) EditUser(c *gin.Context) {
	admin := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var user models.User
	if err := db.DB.Preload("Role").First(&user, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}

	updates := map[string]interface{}{}
	for _, field := range []string{"name", "location", "website", "bio"} {
		if value, ok := c.GetPostForm(field); ok {
			updates[field] = value
		}
	}
	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			RenderError(c, http.StatusInternalServerError, "Update failed.")
			return
		}
	}

	roleID := uint(utils.StringToInt(c.PostForm("role_id")))
	if roleID != 0 && roleID != user.RoleID {
		if !admin.Can(models.PermissionAdminister) {
			RenderError(c, http.StatusForbidden, "No permission.")
			return
		}
		var role models.Role
		if err := db.DB.First(&role, roleID).Error; err != nil {
			RenderError(c, http.StatusBadRequest, "Unknown role.")
			return
		}
		if err := db.DB.Model(&user).Update("role_id", role.ID).Error; err != nil {
			RenderError(c, http.StatusInternalServerError, "Update failed.")
			return
		}
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

// Lock 锁定用户 - 切到 Locked 角色,内容保留但失去全部能力
func (h *AdminHandler) Lock(c *gin.Context) {
	h.switchRole(c, models.RoleLocked, "Your account has been locked by a moderator.")
}

// Unlock 解锁 - 恢复为普通 User 角色
func (h *AdminHandler) Unlock(c *gin.Context) {
	h.switchRole(c, models.RoleUser, "Your account has been unlocked.")
}

func (h *AdminHandler) switchRole(c *gin.Context, roleName, message string) {
	admin := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var user models.User
	if err := db.DB.Preload("Role").First(&user, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}
	// 管理员之间互不操作
	if user.IsAdmin() || user.ID == admin.ID {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	var role models.Role
	if err := db.DB.Where("name = ?", roleName).First(&role).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Role table not initialized.")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("role_id", role.ID).Error; err != nil {
			return err
		}
		return services.PushSystemNotification(tx, user.ID, message)
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Update failed.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

// Block 封禁 - 账号无法登录,已有会话会被 LoadUser 踢出
func (h *AdminHandler) Block(c *gin.Context) {
	h.switchActive(c, false)
}

// Unblock 解封
func (h *AdminHandler) Unblock(c *gin.Context) {
	h.switchActive(c, true)
}

func (h *AdminHandler) switchActive(c *gin.Context, active bool) {
	admin := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToInt(c.Param("id"))

	var user models.User
	if err := db.DB.Preload("Role").First(&user, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}
	if user.IsAdmin() || user.ID == admin.ID {
		RenderError(c, http.StatusForbidden, "No permission.")
		return
	}

	db.DB.Model(&user).Update("active", active)
	c.Redirect(http.StatusFound, "/admin/users")
}

// ManagePhotos 照片管理 - order=by_flag 时把被举报的排前面
func (h *AdminHandler) ManagePhotos(c *gin.Context) {
	order := c.DefaultQuery("order", "by_flag")
	page := pageParam(c)

	var count int64
	db.DB.Model(&models.Photo{}).Count(&count)

	query := db.DB.Preload("User")
	if order == "by_flag" {
		query = query.Order("flag DESC, created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	var photos []models.Photo
	query.Offset((page - 1) * ManagePhotoPerPage).Limit(ManagePhotoPerPage).Find(&photos)

	Render(c, http.StatusOK, "admin/photos.html", gin.H{
		"Title":      "Manage Photos",
		"Photos":     photos,
		"Order":      order,
		"Page":       page,
		"TotalPages": totalPages(count, ManagePhotoPerPage),
	})
}

// ManageComments 评论管理
func (h *AdminHandler) ManageComments(c *gin.Context) {
	order := c.DefaultQuery("order", "by_flag")
	page := pageParam(c)

	var count int64
	db.DB.Model(&models.Comment{}).Count(&count)

	query := db.DB.Preload("User").Preload("Photo")
	if order == "by_flag" {
		query = query.Order("flag DESC, created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	var comments []models.Comment
	query.Offset((page - 1) * ManageCommentPerPage).Limit(ManageCommentPerPage).Find(&comments)

	Render(c, http.StatusOK, "admin/comments.html", gin.H{
		"Title":      "Manage Comments",
		"Comments":   comments,
		"Order":      order,
		"Page":       page,
		"TotalPages": totalPages(count, ManageCommentPerPage),
	})
}

// ManageTags 标签管理
func (h *AdminHandler) ManageTags(c *gin.Context) {
	page := pageParam(c)

	var count int64
	db.DB.Model(&models.Tag{}).Count(&count)

	var tags []models.Tag
	db.DB.Order("id").
		Offset((page - 1) * ManageTagPerPage).
		Limit(ManageTagPerPage).
		Find(&tags)
	for i := range tags {
		db.DB.Table("photo_tags").Where("tag_id = ?", tags[i].ID).Count(&tags[i].PhotoCount)
	}

	Render(c, http.StatusOK, "admin/tags.html", gin.H{
		"Title":      "Manage Tags",
		"Tags":       tags,
		"Page":       page,
		"TotalPages": totalPages(count, ManageTagPerPage),
	})
}

// DeleteTag 删除标签及其全部照片关联
func (h *AdminHandler) DeleteTag(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var tag models.Tag
	if err := db.DB.First(&tag, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Tag not found.")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM photo_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Delete failed.")
		return
	}

	utils.GetCache().Delete("tag:cloud")
	c.Redirect(http.StatusFound, "/admin/tags")
}
