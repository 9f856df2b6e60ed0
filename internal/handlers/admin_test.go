package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HTMLRender = stubHTMLRender{}
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
		c.Next()
	})

	h := NewAdminHandler()
	r.POST("/admin/users/:id/edit", h.EditUser)
	r.POST("/admin/users/:id/lock", h.Lock)
	r.POST("/admin/users/:id/unlock", h.Unlock)
	r.POST("/admin/users/:id/block", h.Block)
	r.POST("/admin/users/:id/unblock", h.Unblock)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAdminLockSwapsRoleAndNotifies(t *testing.T) {
	g := setupTestDB(t)
	moderator := createTestUserWithRole(t, g, "mod", models.RoleModerator)
	victim := createTestUser(t, g, "victim")

	r := newAdminRouter(moderator)
	code := postForm(r, "/admin/users/"+itoa(victim.ID)+"/lock", nil)
	assert.Equal(t, http.StatusFound, code)

	var check models.User
	require.NoError(t, g.Preload("Role").First(&check, victim.ID).Error)
	assert.Equal(t, models.RoleLocked, check.Role.Name)
	assert.True(t, check.IsLocked())
	assert.False(t, check.Can(models.PermissionFollow))
	assert.Equal(t, int64(1), notificationCount(t, g, victim.ID))

	// 解锁回到普通用户
	code = postForm(r, "/admin/users/"+itoa(victim.ID)+"/unlock", nil)
	assert.Equal(t, http.StatusFound, code)
	require.NoError(t, g.Preload("Role").First(&check, victim.ID).Error)
	assert.Equal(t, models.RoleUser, check.Role.Name)
}

func TestAdminCannotLockAdministrator(t *testing.T) {
	g := setupTestDB(t)
	moderator := createTestUserWithRole(t, g, "mod", models.RoleModerator)
	boss := createTestUserWithRole(t, g, "boss", models.RoleAdministrator)

	r := newAdminRouter(moderator)
	code := postForm(r, "/admin/users/"+itoa(boss.ID)+"/lock", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminBlockKeepsContent(t *testing.T) {
	g := setupTestDB(t)
	moderator := createTestUserWithRole(t, g, "mod", models.RoleModerator)
	victim := createTestUser(t, g, "victim")
	photo := createTestPhoto(t, g, victim)

	r := newAdminRouter(moderator)
	code := postForm(r, "/admin/users/"+itoa(victim.ID)+"/block", nil)
	assert.Equal(t, http.StatusFound, code)

	var check models.User
	require.NoError(t, g.First(&check, victim.ID).Error)
	assert.False(t, check.Active)

	// 封禁不动内容
	var count int64
	g.Model(&models.Photo{}).Where("id = ?", photo.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	code = postForm(r, "/admin/users/"+itoa(victim.ID)+"/unblock", nil)
	assert.Equal(t, http.StatusFound, code)
	require.NoError(t, g.First(&check, victim.ID).Error)
	assert.True(t, check.Active)
}

func TestRoleChangeRequiresAdminister(t *testing.T) {
	g := setupTestDB(t)
	moderator := createTestUserWithRole(t, g, "mod", models.RoleModerator)
	admin := createTestUserWithRole(t, g, "boss", models.RoleAdministrator)
	victim := createTestUser(t, g, "victim")

	var modRole models.Role
	require.NoError(t, g.Where("name = ?", models.RoleModerator).First(&modRole).Error)
	form := url.Values{"role_id": {itoa(modRole.ID)}}

	// 版主改不了角色
	code := postForm(newAdminRouter(moderator), "/admin/users/"+itoa(victim.ID)+"/edit", form)
	assert.Equal(t, http.StatusForbidden, code)

	// 管理员可以
	code = postForm(newAdminRouter(admin), "/admin/users/"+itoa(victim.ID)+"/edit", form)
	assert.Equal(t, http.StatusFound, code)

	var check models.User
	require.NoError(t, g.Preload("Role").First(&check, victim.ID).Error)
	assert.Equal(t, models.RoleModerator, check.Role.Name)
}
