package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"uniform-inspection/internal/entity"
)

func fileHeader(name string, size int64, contentType string) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   header,
	}
}

func TestValidateImageFile(t *testing.T) {
	u := New()

	require.NoError(t, u.ValidateImageFile(fileHeader("foto.jpg", 1024, "image/jpeg")))
	require.NoError(t, u.ValidateImageFile(fileHeader("foto.PNG", 1024, "image/png")))

	require.Error(t, u.ValidateImageFile(nil))
	require.Error(t, u.ValidateImageFile(fileHeader("doc.pdf", 1024, "application/pdf")))
	require.Error(t, u.ValidateImageFile(fileHeader("foto.bmp", 1024, "image/bmp")))
	require.Error(t, u.ValidateImageFile(fileHeader("foto.jpg", 5*1024*1024, "image/jpeg")))
	require.Error(t, u.ValidateImageFile(fileHeader("foto.jpg", 1024, "text/plain")))
}

func TestSafeUploadName(t *testing.T) {
	u := New()

	name, err := u.SafeUploadName("mi foto.jpg")
	require.NoError(t, err)
	require.NotContains(t, name, " ")
	require.Contains(t, name, "mi_foto.jpg")

	other, err := u.SafeUploadName("mi foto.jpg")
	require.NoError(t, err)
	require.NotEqual(t, name, other, "names must not collide")
}

func TestConvertFileToBase64(t *testing.T) {
	u := New()

	encoded, err := u.ConvertFileToBase64(strings.NewReader("carnet bytes"))
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Equal(t, "carnet bytes", string(decoded))
}

func TestCropToBox(t *testing.T) {
	u := New()

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for x := 0; x < 100; x++ {
		for y := 0; y < 100; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	cropped, err := u.CropToBox(buf.Bytes(), entity.BoundingBox{X: 50, Y: 50, Width: 40, Height: 40})
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(cropped))
	require.NoError(t, err)
	require.Equal(t, 40, decoded.Bounds().Dx())
	require.Equal(t, 40, decoded.Bounds().Dy())
}

func TestCropToBox_OutOfBounds(t *testing.T) {
	u := New()

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	_, err := u.CropToBox(buf.Bytes(), entity.BoundingBox{X: 500, Y: 500, Width: 10, Height: 10})
	require.Error(t, err)

	_, err = u.CropToBox([]byte("not an image"), entity.BoundingBox{X: 5, Y: 5, Width: 2, Height: 2})
	require.Error(t, err)
}

func TestCleanOldFiles(t *testing.T) {
	u := New()
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "old.jpg")
	require.NoError(t, os.WriteFile(oldFile, []byte("x"), 0o644))
	stale := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, stale, stale))

	freshFile := filepath.Join(dir, "fresh.jpg")
	require.NoError(t, os.WriteFile(freshFile, []byte("x"), 0o644))

	removed := u.CleanOldFiles(dir, 7*24*time.Hour)
	require.Equal(t, 1, removed)

	_, err := os.Stat(oldFile)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshFile)
	require.NoError(t, err)
}
