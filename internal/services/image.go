package services

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/google/uuid"
)

// 照片尺寸派生服务 - 上传请求只落原图,缩略图(_s)和展示图(_m)
// 由后台 worker 在请求路径之外生成并回填到照片记录。

const (
	PhotoSizeSmall  = 400
	PhotoSizeMedium = 800

	suffixSmall  = "_s"
	suffixMedium = "_m"
)

type ImageService struct {
	queue   chan uint // 待派生的照片 ID 队列
	pending map[uint]bool
	mu      sync.Mutex
}

var (
	imageService *ImageService
	imageOnce    sync.Once
)

// GetImageService 获取单例派生服务并启动后台 worker
func GetImageService() *ImageService {
	imageOnce.Do(func() {
		imageService = &ImageService{
			queue:   make(chan uint, 1000), // 缓冲队列,防止阻塞上传请求
			pending: make(map[uint]bool),
		}
		go imageService.worker()
	})
	return imageService
}

// UploadPath 上传目录,按环境变量覆盖
func UploadPath() string {
	if path := os.Getenv("ALBUM_WALL_UPLOAD_PATH"); path != "" {
		return path
	}
	return "./uploads"
}

// RenameImage 上传文件统一换成随机文件名,保留扩展名
func RenameImage(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
	default:
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}

// ScheduleDerive 照片入队等待派生(异步,带去重)
func (s *ImageService) ScheduleDerive(photoID uint) {
	s.mu.Lock()
	if s.pending[photoID] {
		s.mu.Unlock()
		return
	}
	s.pending[photoID] = true
	s.mu.Unlock()

	select {
	case s.queue <- photoID:
	default:
		s.mu.Lock()
		delete(s.pending, photoID)
		s.mu.Unlock()
		log.Printf("Derive queue full, photo %d skipped", photoID)
	}
}

func (s *ImageService) worker() {
	for photoID := range s.queue {
		if err := s.Derive(photoID); err != nil {
			log.Printf("Failed to derive sizes for photo %d: %v", photoID, err)
		}
		s.mu.Lock()
		delete(s.pending, photoID)
		s.mu.Unlock()
	}
}

// Derive 生成小/中两个派生尺寸并回填文件名,原图比目标窄时只做复制编码
func (s *ImageService) Derive(photoID uint) error {
	var photo models.Photo
	if err := db.DB.First(&photo, photoID).Error; err != nil {
		return err
	}

	src := filepath.Join(UploadPath(), photo.Filename)
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", photo.Filename, err)
	}

	small, err := saveResized(img, photo.Filename, suffixSmall, PhotoSizeSmall)
	if err != nil {
		return err
	}
	medium, err := saveResized(img, photo.Filename, suffixMedium, PhotoSizeMedium)
	if err != nil {
		return err
	}

	return db.DB.Model(&photo).Updates(map[string]interface{}{
		"filename_s": small,
		"filename_m": medium,
	}).Error
}

// DeletePhotoFiles 删除原图及派生文件,文件缺失不算错误
func DeletePhotoFiles(photo *models.Photo) {
	for _, name := range []string{photo.Filename, photo.FilenameS, photo.FilenameM} {
		if name == "" {
			continue
		}
		if err := os.Remove(filepath.Join(UploadPath(), name)); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove %s: %v", name, err)
		}
	}
}

func saveResized(img image.Image, filename, suffix string, width int) (string, error) {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext) + suffix + ext

	out := scaleToWidth(img, width)

	f, err := os.Create(filepath.Join(UploadPath(), name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	switch strings.ToLower(ext) {
	case ".png":
		err = png.Encode(f, out)
	case ".gif":
		err = gif.Encode(f, out, nil)
	default:
		err = jpeg.Encode(f, out, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// scaleToWidth 最近邻缩放到目标宽度,不放大
// 派生图只是列表/详情页的带宽优化,不追求重采样质量
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= width {
		return img
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := bounds.Min.Y + y*bounds.Dy()/height
		for x := 0; x < width; x++ {
			srcX := bounds.Min.X + x*bounds.Dx()/width
			out.Set(x, y, img.At(srcX, srcY))
		}
	}
	return out
}
