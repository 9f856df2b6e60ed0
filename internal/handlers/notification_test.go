package handlers

import (
	"net/http"
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubHTMLRender 用模板名当响应体,测试里不渲染真实页面
type stubHTMLRender struct{}

func (stubHTMLRender) Instance(name string, data interface{}) render.Render {
	return render.Data{ContentType: "text/html; charset=utf-8", Data: []byte(name)}
}

func newNotificationRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HTMLRender = stubHTMLRender{}
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
		c.Next()
	})

	h := NewNotificationHandler()
	r.POST("/notification/:id/read", h.Read)
	r.POST("/notification/read-all", h.ReadAll)
	return r
}

func pushTestNotification(t *testing.T, g *gorm.DB, receiverID uint) *models.Notification {
	t.Helper()
	n := models.Notification{
		UserID:  receiverID,
		Type:    models.NotificationTypeSystem,
		Message: "hello",
	}
	require.NoError(t, g.Create(&n).Error)
	return &n
}

func TestNotificationReadOnlyByReceiver(t *testing.T) {
	g := setupTestDB(t)
	receiver := createTestUser(t, g, "receiver")
	stranger := createTestUser(t, g, "stranger")
	n := pushTestNotification(t, g, receiver.ID)

	// 其他用户标记别人的通知被拒绝
	w := doRequest(newNotificationRouter(stranger), http.MethodPost, "/notification/"+itoa(n.ID)+"/read")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var check models.Notification
	require.NoError(t, g.First(&check, n.ID).Error)
	assert.False(t, check.IsRead)

	// 接收者本人可以
	w = doRequest(newNotificationRouter(receiver), http.MethodPost, "/notification/"+itoa(n.ID)+"/read")
	assert.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, g.First(&check, n.ID).Error)
	assert.True(t, check.IsRead)

	// 重复标记是幂等的
	w = doRequest(newNotificationRouter(receiver), http.MethodPost, "/notification/"+itoa(n.ID)+"/read")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestNotificationReadUnknownID(t *testing.T) {
	g := setupTestDB(t)
	receiver := createTestUser(t, g, "receiver")

	w := doRequest(newNotificationRouter(receiver), http.MethodPost, "/notification/9999/read")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationReadAllScopedToCaller(t *testing.T) {
	g := setupTestDB(t)
	receiver := createTestUser(t, g, "receiver")
	other := createTestUser(t, g, "other")
	pushTestNotification(t, g, receiver.ID)
	pushTestNotification(t, g, receiver.ID)
	foreign := pushTestNotification(t, g, other.ID)

	w := doRequest(newNotificationRouter(receiver), http.MethodPost, "/notification/read-all")
	assert.Equal(t, http.StatusFound, w.Code)

	var unread int64
	g.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", receiver.ID, false).Count(&unread)
	assert.Equal(t, int64(0), unread)

	// 别人的未读不受影响
	var check models.Notification
	require.NoError(t, g.First(&check, foreign.ID).Error)
	assert.False(t, check.IsRead)
}
