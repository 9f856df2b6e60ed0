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
)

type AuthHandler struct {
	mailService *services.MailService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		mailService: services.NewMailService(),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

// Register 注册 - 默认 User 角色,未确认状态,发送确认码邮件
func (h *AuthHandler) Register(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	password := c.PostForm("password")

	if username == "" || !strings.Contains(email, "@") {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Please fill in a valid username and email."})
		return
	}
	if len(password) < 8 {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Password must be at least 8 characters."})
		return
	}

	var role models.Role
	if err := db.DB.Where("name = ?", models.RoleUser).First(&role).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Role table not initialized.")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Registration failed.")
		return
	}

	user := models.User{
		Username:   username,
		Email:      email,
		Password:   hash,
		Name:       name,
		RoleID:     role.ID,
		Confirmed:  false,
		Active:     true,
		VerifyCode: utils.GenerateRandomCode(6),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "Username or email already registered."})
		return
	}

	h.mailService.SendConfirmEmail(email, username, user.VerifyCode)

	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Success": "Account created. A confirmation code was sent to your inbox.",
	})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if _, exists := c.Get(middleware.CheckUserKey); exists {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid email or password."})
		return
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid email or password."})
		return
	}
	if !user.Active {
		Render(c, http.StatusForbidden, "auth/login.html", gin.H{"Error": "Your account is blocked."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowConfirm(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	if user.Confirmed {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/confirm.html", nil)
}

// Confirm 输入邮件里的确认码完成账号确认
func (h *AuthHandler) Confirm(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	if user.Confirmed {
		c.Redirect(http.StatusFound, "/")
		return
	}

	code := strings.TrimSpace(c.PostForm("code"))
	if user.VerifyCode == "" || user.VerifyCode != code {
		Render(c, http.StatusBadRequest, "auth/confirm.html", gin.H{"Error": "Invalid confirmation code."})
		return
	}

	db.DB.Model(user).Updates(map[string]interface{}{
		"confirmed":   true,
		"verify_code": "",
	})

	c.Redirect(http.StatusFound, "/")
}

// ResendConfirm 重新生成并发送确认码
func (h *AuthHandler) ResendConfirm(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	if user.Confirmed {
		c.Redirect(http.StatusFound, "/")
		return
	}

	code := utils.GenerateRandomCode(6)
	db.DB.Model(user).Update("verify_code", code)
	h.mailService.SendConfirmEmail(user.Email, user.Username, code)

	Render(c, http.StatusOK, "auth/confirm.html", gin.H{"Success": "New confirmation code sent, check your inbox."})
}

func (h *AuthHandler) ShowForgotPassword(c *gin.Context) {
	Render(c, http.StatusOK, "auth/forgot_password.html", nil)
}

// ForgotPassword 发送重置码;为避免探测注册邮箱,找不到用户也返回同样的提示
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err == nil {
		code := utils.GenerateRandomCode(6)
		db.DB.Model(&user).Update("verify_code", code)
		h.mailService.SendResetPasswordEmail(email, code)
	}

	Render(c, http.StatusOK, "auth/reset_password.html", gin.H{
		"Email":   email,
		"Success": "If the email is registered, a reset code has been sent.",
	})
}

func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	Render(c, http.StatusOK, "auth/reset_password.html", gin.H{"Email": c.Query("email")})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	code := strings.TrimSpace(c.PostForm("code"))
	newPassword := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusBadRequest, "auth/reset_password.html", gin.H{"Error": "Invalid reset code.", "Email": email})
		return
	}
	if user.VerifyCode == "" || user.VerifyCode != code {
		Render(c, http.StatusBadRequest, "auth/reset_password.html", gin.H{"Error": "Invalid reset code.", "Email": email})
		return
	}
	if len(newPassword) < 8 {
		Render(c, http.StatusBadRequest, "auth/reset_password.html", gin.H{"Error": "Password must be at least 8 characters.", "Email": email})
		return
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Reset failed.")
		return
	}
	db.DB.Model(&user).Updates(map[string]interface{}{
		"password":    hash,
		"verify_code": "",
	})

	Render(c, http.StatusOK, "auth/login.html", gin.H{"Success": "Password updated, please log in."})
}
