package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/redis/go-redis/v9"
)

// 未读通知计数,每个页面都要渲染,走 Redis 缓存,Redis 不可用时直接查库

var rdb *redis.Client

const unreadCountTTL = 5 * time.Minute

// InitRedis 按 REDIS_URL 初始化连接,未配置或连不上时禁用缓存
func InitRedis() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		log.Println("REDIS_URL not set, notification counter cache disabled")
		return
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Invalid REDIS_URL, counter cache disabled: %v", err)
		return
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, counter cache disabled: %v", err)
		return
	}

	rdb = client
	log.Println("Redis connected")
}

// SetRedisClient 测试注入用
func SetRedisClient(client *redis.Client) {
	rdb = client
}

func unreadCountKey(userID uint) string {
	return fmt.Sprintf("notification:unread:%d", userID)
}

// UnreadCount 用户的未读通知数
func UnreadCount(userID uint) int64 {
	if rdb != nil {
		ctx := context.Background()
		if val, err := rdb.Get(ctx, unreadCountKey(userID)).Result(); err == nil {
			if count, err := strconv.ParseInt(val, 10, 64); err == nil {
				return count
			}
		}
	}

	var count int64
	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count)

	if rdb != nil {
		rdb.Set(context.Background(), unreadCountKey(userID), count, unreadCountTTL)
	}
	return count
}

// InvalidateUnreadCount 通知写入或已读后使缓存失效
func InvalidateUnreadCount(userID uint) {
	if rdb == nil {
		return
	}
	rdb.Del(context.Background(), unreadCountKey(userID))
}
