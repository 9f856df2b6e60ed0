package handlers

import (
	"net/http"
	"strings"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/services"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	mailService *services.MailService
}

func NewUserHandler() *UserHandler {
	return &UserHandler{
		mailService: services.NewMailService(),
	}
}

// currentUser 从上下文取登录用户,未登录返回 nil
func currentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// IsFollowing 检查关注边是否存在
func IsFollowing(followerID, followedID uint) bool {
	var follow models.Follow
	err := db.DB.Where("follower_id = ? AND followed_id = ?", followerID, followedID).First(&follow).Error
	return err == nil
}

// FollowersCount 粉丝数
func FollowersCount(userID uint) int64 {
	var count int64
	db.DB.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count)
	return count
}

// FollowingCount 关注数
func FollowingCount(userID uint) int64 {
	var count int64
	db.DB.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count)
	return count
}

// Profile 用户主页 /user/:username - 照片流
func (h *UserHandler) Profile(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := db.DB.Preload("Role").Where("username = ?", username).First(&user).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}

	page := pageParam(c)
	var photoCount int64
	db.DB.Model(&models.Photo{}).Where("user_id = ?", user.ID).Count(&photoCount)

	var photos []models.Photo
	db.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Offset((page - 1) * PhotoPerPage).
		Limit(PhotoPerPage).
		Find(&photos)
	fillPhotoCounts(photos)

	viewer := currentUser(c)
	isFollowing := false
	if viewer != nil {
		isFollowing = IsFollowing(viewer.ID, user.ID)
	}

	Render(c, http.StatusOK, "user/index.html", gin.H{
		"Title":          user.DisplayName(),
		"User":           user,
		"Photos":         photos,
		"Page":           page,
		"TotalPages":     totalPages(photoCount, PhotoPerPage),
		"PhotoCount":     photoCount,
		"FollowersCount": FollowersCount(user.ID),
		"FollowingCount": FollowingCount(user.ID),
		"IsFollowing":    isFollowing,
	})
}

// Follow 关注用户 - 重复关注返回 400
func (h *UserHandler) Follow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	username := c.Param("username")

	var target models.User
	if err := db.DB.Where("username = ?", username).First(&target).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}

	if IsFollowing(user.ID, target.ID) {
		RenderError(c, http.StatusBadRequest, "Already followed.")
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
		// 并发下撞唯一索引也归为"已关注"
		RenderError(c, http.StatusBadRequest, "Already followed.")
		return
	}

	c.Redirect(http.StatusFound, "/user/"+target.Username)
}

// Unfollow 取消关注 - 无边可删返回 400,不产生通知
func (h *UserHandler) Unfollow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	username := c.Param("username")

	var target models.User
	if err := db.DB.Where("username = ?", username).First(&target).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}

	result := db.DB.Where("follower_id = ? AND followed_id = ?", user.ID, target.ID).Delete(&models.Follow{})
	if result.RowsAffected == 0 {
		RenderError(c, http.StatusBadRequest, "Not followed yet.")
		return
	}

	c.Redirect(http.StatusFound, "/user/"+target.Username)
}

// Followers 粉丝列表
func (h *UserHandler) Followers(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}

	page := pageParam(c)
	count := FollowersCount(user.ID)

	var follows []models.Follow
	db.DB.Preload("Follower").
		Where("followed_id = ?", user.ID).
		Order("created_at DESC").
		Offset((page - 1) * UserPerPage).
		Limit(UserPerPage).
		Find(&follows)

	Render(c, http.StatusOK, "user/followers.html", gin.H{
		"Title":      user.DisplayName() + "'s followers",
		"User":       user,
		"Follows":    follows,
		"Page":       page,
		"TotalPages": totalPages(count, UserPerPage),
	})
}

// Following 关注列表
func (h *UserHandler) Following(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}

	page := pageParam(c)
	count := FollowingCount(user.ID)

	var follows []models.Follow
	db.DB.Preload("Followed").
		Where("follower_id = ?", user.ID).
		Order("created_at DESC").
		Offset((page - 1) * UserPerPage).
		Limit(UserPerPage).
		Find(&follows)

	Render(c, http.StatusOK, "user/following.html", gin.H{
		"Title":      user.DisplayName() + " is following",
		"User":       user,
		"Follows":    follows,
		"Page":       page,
		"TotalPages": totalPages(count, UserPerPage),
	})
}

// Collections 用户收藏列表,受 PublicCollections 隐私开关保护
func (h *UserHandler) Collections(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found.")
		return
	}

	viewer := currentUser(c)
	if !user.PublicCollections && (viewer == nil || viewer.ID != user.ID) {
		Render(c, http.StatusOK, "user/collections.html", gin.H{
			"Title":   user.DisplayName() + "'s collections",
			"User":    user,
			"Private": true,
		})
		return
	}

	page := pageParam(c)
	var count int64
	db.DB.Model(&models.Collect{}).Where("user_id = ?", user.ID).Count(&count)

	var collects []models.Collect
	db.DB.Preload("Photo").Preload("Photo.User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Offset((page - 1) * PhotoPerPage).
		Limit(PhotoPerPage).
		Find(&collects)

	Render(c, http.StatusOK, "user/collections.html", gin.H{
		"Title":      user.DisplayName() + "'s collections",
		"User":       user,
		"Collects":   collects,
		"Page":       page,
		"TotalPages": totalPages(count, PhotoPerPage),
	})
}

// ShowSettings 设置页(资料/密码/通知/隐私共用一页)
func (h *UserHandler) ShowSettings(c *gin.Context) {
	Render(c, http.StatusOK, "user/settings.html", gin.H{"Title": "Settings"})
}

// EditProfile 更新资料
func (h *UserHandler) EditProfile(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	username := strings.TrimSpace(c.PostForm("username"))
	if username == "" {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Username cannot be empty."})
		return
	}

	err := db.DB.Model(user).Updates(map[string]interface{}{
		"username": username,
		"name":     strings.TrimSpace(c.PostForm("name")),
		"location": strings.TrimSpace(c.PostForm("location")),
		"website":  strings.TrimSpace(c.PostForm("website")),
		"bio":      strings.TrimSpace(c.PostForm("bio")),
	}).Error
	if err != nil {
		Render(c, http.StatusConflict, "user/settings.html", gin.H{"Error": "Username already taken."})
		return
	}

	c.Redirect(http.StatusFound, "/user/"+username)
}

// UploadAvatar 头像上传,文件重命名后直接落盘
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	file, err := c.FormFile("avatar")
	if err != nil {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Please choose an image."})
		return
	}
	if file.Size > 3*1024*1024 {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Avatar must be smaller than 3 MB."})
		return
	}

	filename := services.RenameImage(file.Filename)
	if err := c.SaveUploadedFile(file, services.UploadPath()+"/"+filename); err != nil {
		RenderError(c, http.StatusInternalServerError, "Upload failed.")
		return
	}

	db.DB.Model(user).Update("avatar", filename)
	c.Redirect(http.StatusFound, "/settings")
}

// ChangePassword 修改密码,需验证旧密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("password")

	if !utils.CheckPasswordHash(oldPassword, user.Password) {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Old password is incorrect."})
		return
	}
	if len(newPassword) < 8 {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Password must be at least 8 characters."})
		return
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Password update failed.")
		return
	}
	db.DB.Model(user).Update("password", hash)

	c.Redirect(http.StatusFound, "/user/"+user.Username)
}

// ChangeEmailRequest 换绑邮箱第一步 - 向新地址发送确认码
func (h *UserHandler) ChangeEmailRequest(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	if !strings.Contains(email, "@") {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Invalid email address."})
		return
	}

	code := utils.GenerateRandomCode(6)
	db.DB.Model(user).Update("verify_code", code)
	h.mailService.SendChangeEmailEmail(email, code)

	session := sessions.Default(c)
	session.Set("pending_email", email)
	session.Save()

	Render(c, http.StatusOK, "user/settings.html", gin.H{"Success": "Confirmation code sent to the new address."})
}

// ChangeEmail 换绑邮箱第二步 - 校验确认码后切换
func (h *UserHandler) ChangeEmail(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	code := strings.TrimSpace(c.PostForm("code"))

	session := sessions.Default(c)
	pending, _ := session.Get("pending_email").(string)

	if pending == "" || user.VerifyCode == "" || user.VerifyCode != code {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Invalid or expired confirmation code."})
		return
	}

	err := db.DB.Model(user).Updates(map[string]interface{}{
		"email":       pending,
		"verify_code": "",
	}).Error
	if err != nil {
		Render(c, http.StatusConflict, "user/settings.html", gin.H{"Error": "Email already in use."})
		return
	}

	session.Delete("pending_email")
	session.Save()

	Render(c, http.StatusOK, "user/settings.html", gin.H{"Success": "Email updated."})
}

// NotificationSetting 通知偏好,三个通道独立开关
func (h *UserHandler) NotificationSetting(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	db.DB.Model(user).Updates(map[string]interface{}{
		"receive_comment_notifications": c.PostForm("receive_comment_notifications") == "on",
		"receive_follow_notifications":  c.PostForm("receive_follow_notifications") == "on",
		"receive_collect_notifications": c.PostForm("receive_collect_notifications") == "on",
	})

	c.Redirect(http.StatusFound, "/settings")
}

// PrivacySetting 收藏列表公开开关
func (h *UserHandler) PrivacySetting(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	db.DB.Model(user).Update("public_collections", c.PostForm("public_collections") == "on")
	c.Redirect(http.StatusFound, "/settings")
}

// DeleteAccount 注销账号 - 显式级联删除拥有的内容和所有关系边
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	if c.PostForm("username") != user.Username {
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Type your username to confirm deletion."})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, user)
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Account deletion failed.")
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

// deleteUserCascade 删除用户及其全部内容:照片(连带评论/收藏/标签关联)、
// 发出的评论、两个方向的关注边、收藏边和通知,保证不残留悬挂引用
func deleteUserCascade(tx *gorm.DB, user *models.User) error {
	var photos []models.Photo
	if err := tx.Where("user_id = ?", user.ID).Find(&photos).Error; err != nil {
		return err
	}
	for i := range photos {
		if err := deletePhotoCascade(tx, &photos[i]); err != nil {
			return err
		}
	}

	if err := tx.Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("follower_id = ? OR followed_id = ?", user.ID, user.ID).Delete(&models.Follow{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.Collect{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ? OR actor_id = ?", user.ID, user.ID).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	return tx.Delete(user).Error
}
