package db

import (
	"errors"
	"log"
	"os"

	"github.com/wangtianxing1010/Album-Wall/internal/models"
	"github.com/wangtianxing1010/Album-Wall/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=albumwall port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedAdmin(DB)
}

// Migrate 建表并写入固定角色表,测试用内存库时也走这里
func Migrate(g *gorm.DB) error {
	err := g.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Follow{},
		&models.Photo{},
		&models.Tag{},
		&models.Comment{},
		&models.Collect{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}
	return seedRoles(g)
}

// seedRoles 角色表是固定集合,缺什么补什么,权限掩码以代码为准
func seedRoles(g *gorm.DB) error {
	for name, perms := range models.RolePermissions() {
		var role models.Role
		err := g.Where("name = ?", name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{Name: name, Permissions: perms}
			if err := g.Create(&role).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if role.Permissions != perms {
			if err := g.Model(&role).Update("permissions", perms).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// seedAdmin 按环境变量创建引导管理员账号,已存在则跳过
func seedAdmin(g *gorm.DB) {
	email := os.Getenv("ALBUM_WALL_ADMIN_EMAIL")
	password := os.Getenv("ALBUM_WALL_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	g.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return
	}

	var role models.Role
	if err := g.Where("name = ?", models.RoleAdministrator).First(&role).Error; err != nil {
		log.Printf("Failed to load administrator role: %v", err)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username:  "admin",
		Email:     email,
		Password:  hash,
		Name:      "Admin",
		RoleID:    role.ID,
		Confirmed: true,
		Active:    true,
	}
	if err := g.Create(&admin).Error; err != nil {
		log.Printf("Failed to create admin account: %v", err)
		return
	}
	log.Printf("Admin account %s created", email)
}
