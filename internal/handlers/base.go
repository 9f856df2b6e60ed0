package handlers

import (
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-gonic/gin"
)

// 各列表页的分页大小
const (
	PhotoPerPage        = 12
	CommentPerPage      = 15
	NotificationPerPage = 20
	UserPerPage         = 20
	SearchPerPage       = 20

	ManagePhotoPerPage   = 20
	ManageUserPerPage    = 30
	ManageCommentPerPage = 30
	ManageTagPerPage     = 50
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			obj["UnreadCount"] = count.(int64)
		} else {
			obj["UnreadCount"] = int64(0)
		}
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError 错误页
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// pageParam 解析 ?page= 参数,最小为 1
func pageParam(c *gin.Context) int {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return page
}

// totalPages 按总数和每页大小计算页数,至少 1 页
func totalPages(count int64, perPage int) int {
	pages := int((count + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}
