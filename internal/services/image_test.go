package services

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameImage(t *testing.T) {
	assert.True(t, strings.HasSuffix(RenameImage("holiday.PNG"), ".png"))
	assert.True(t, strings.HasSuffix(RenameImage("cat.jpeg"), ".jpeg"))
	// 未知扩展名回退到 jpg
	assert.True(t, strings.HasSuffix(RenameImage("weird.exe"), ".jpg"))
	assert.NotEqual(t, RenameImage("a.jpg"), RenameImage("a.jpg"))
}

func TestScaleToWidth(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1600, 1200))

	out := scaleToWidth(src, 400)
	assert.Equal(t, 400, out.Bounds().Dx())
	assert.Equal(t, 300, out.Bounds().Dy())

	// 原图更窄时不放大
	small := image.NewRGBA(image.Rect(0, 0, 200, 100))
	assert.Equal(t, small.Bounds(), scaleToWidth(small, 400).Bounds())
}

func TestDeriveGeneratesSizes(t *testing.T) {
	g := setupNotifyDB(t)

	dir := t.TempDir()
	t.Setenv("ALBUM_WALL_UPLOAD_PATH", dir)

	// 落一张 1000px 宽的原图
	f, err := os.Create(filepath.Join(dir, "orig.jpg"))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 1000, 500)), nil))
	require.NoError(t, f.Close())

	user := makeUser(t, g, "alice")
	photo := models.Photo{UserID: user.ID, Filename: "orig.jpg", CommentAllowed: true}
	require.NoError(t, g.Create(&photo).Error)

	svc := &ImageService{queue: make(chan uint, 1), pending: map[uint]bool{}}
	require.NoError(t, svc.Derive(photo.ID))

	require.NoError(t, g.First(&photo, photo.ID).Error)
	assert.Equal(t, "orig_s.jpg", photo.FilenameS)
	assert.Equal(t, "orig_m.jpg", photo.FilenameM)

	for _, name := range []string{photo.FilenameS, photo.FilenameM} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}

	// 缩略图确实被缩到目标宽度
	sf, err := os.Open(filepath.Join(dir, photo.FilenameS))
	require.NoError(t, err)
	defer sf.Close()
	img, err := jpeg.Decode(sf)
	require.NoError(t, err)
	assert.Equal(t, PhotoSizeSmall, img.Bounds().Dx())
}

func TestDeletePhotoFilesIgnoresMissing(t *testing.T) {
	t.Setenv("ALBUM_WALL_UPLOAD_PATH", t.TempDir())
	DeletePhotoFiles(&models.Photo{Filename: "gone.jpg", FilenameS: "gone_s.jpg"})
}
