package main

import (
	"fmt"
	"html/template"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/middleware"
	"github.com/wangtianxing1010/Album-Wall/internal/router"
	"github.com/wangtianxing1010/Album-Wall/internal/services"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// 未读计数缓存
	services.InitRedis()

	// 初始化异步图片派生服务
	services.GetImageService()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("albumwall_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")
	r.Static("/uploads", services.UploadPath())

	// Middleware
	r.Use(middleware.LoadUser())

	// Routes
	router.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Album Wall server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"markdown": func(s string) template.HTML {
			return utils.RenderMarkdown(s)
		},
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)
	r.AddFromFilesFuncs("auth/confirm.html", funcMap, assemble(templatesDir+"/views/auth/confirm.html")...)
	r.AddFromFilesFuncs("auth/forgot_password.html", funcMap, assemble(templatesDir+"/views/auth/forgot_password.html")...)
	r.AddFromFilesFuncs("auth/reset_password.html", funcMap, assemble(templatesDir+"/views/auth/reset_password.html")...)

	// Photo
	r.AddFromFilesFuncs("photo/index.html", funcMap, assemble(templatesDir+"/views/photo/index.html")...)
	r.AddFromFilesFuncs("photo/explore.html", funcMap, assemble(templatesDir+"/views/photo/explore.html")...)
	r.AddFromFilesFuncs("photo/upload.html", funcMap, assemble(templatesDir+"/views/photo/upload.html")...)
	r.AddFromFilesFuncs("photo/detail.html", funcMap, assemble(templatesDir+"/views/photo/detail.html")...)
	r.AddFromFilesFuncs("photo/tag.html", funcMap, assemble(templatesDir+"/views/photo/tag.html")...)
	r.AddFromFilesFuncs("photo/search.html", funcMap, assemble(templatesDir+"/views/photo/search.html")...)
	r.AddFromFilesFuncs("photo/collectors.html", funcMap, assemble(templatesDir+"/views/photo/collectors.html")...)

	// User
	r.AddFromFilesFuncs("user/index.html", funcMap, assemble(templatesDir+"/views/user/index.html")...)
	r.AddFromFilesFuncs("user/followers.html", funcMap, assemble(templatesDir+"/views/user/followers.html")...)
	r.AddFromFilesFuncs("user/following.html", funcMap, assemble(templatesDir+"/views/user/following.html")...)
	r.AddFromFilesFuncs("user/collections.html", funcMap, assemble(templatesDir+"/views/user/collections.html")...)
	r.AddFromFilesFuncs("user/settings.html", funcMap, assemble(templatesDir+"/views/user/settings.html")...)

	// Notification
	r.AddFromFilesFuncs("notification/list.html", funcMap, assemble(templatesDir+"/views/notification/list.html")...)

	// Admin
	r.AddFromFilesFuncs("admin/index.html", funcMap, assemble(templatesDir+"/views/admin/index.html")...)
	r.AddFromFilesFuncs("admin/users.html", funcMap, assemble(templatesDir+"/views/admin/users.html")...)
	r.AddFromFilesFuncs("admin/photos.html", funcMap, assemble(templatesDir+"/views/admin/photos.html")...)
	r.AddFromFilesFuncs("admin/comments.html", funcMap, assemble(templatesDir+"/views/admin/comments.html")...)
	r.AddFromFilesFuncs("admin/tags.html", funcMap, assemble(templatesDir+"/views/admin/tags.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
