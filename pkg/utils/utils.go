package utils

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"uniform-inspection/internal/entity"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	SafeUploadName(original string) (string, error)
	ConvertFileToBase64(file io.Reader) (string, error)
	CropToBox(imageData []byte, box entity.BoundingBox) ([]byte, error)
	CleanOldFiles(dir string, maxAge time.Duration) int
}

type utils struct {
	maxFileSize int64
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func New() IUtils {
	return &utils{
		maxFileSize: 4 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxFileSize {
		return errors.New("file size exceeds limit")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return errors.New("only JPG, JPEG or PNG images are allowed")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return errors.New("uploaded file is not an image")
	}

	return nil
}

// SafeUploadName builds a collision-free filename for a stored upload,
// keeping only the base name and extension of what the client sent.
func (u *utils) SafeUploadName(original string) (string, error) {
	id, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return "", err
	}

	base := filepath.Base(original)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.ReplaceAll(base, string(os.PathSeparator), "_")

	return fmt.Sprintf("%s_%s", id, base), nil
}

func (u *utils) ConvertFileToBase64(file io.Reader) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	base64Encoded := base64.StdEncoding.EncodeToString(fileBytes)
	return base64Encoded, nil
}

// CropToBox cuts the region described by a detector bounding box out of an
// image. The box is center-based (x, y are the center of the region) as
// returned by the detection API. The crop is re-encoded as JPEG.
func (u *utils) CropToBox(imageData []byte, box entity.BoundingBox) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()

	x0 := int(box.X - box.Width/2)
	y0 := int(box.Y - box.Height/2)
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}

	x1 := x0 + int(box.Width)
	y1 := y0 + int(box.Height)
	if x1 > bounds.Max.X {
		x1 = bounds.Max.X
	}
	if y1 > bounds.Max.Y {
		y1 = bounds.Max.Y
	}

	if x1 <= x0 || y1 <= y0 {
		return nil, errors.New("bounding box outside image bounds")
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}

	si, ok := img.(subImager)
	if !ok {
		return nil, errors.New("image format does not support cropping")
	}

	cropped := si.SubImage(image.Rect(x0, y0, x1, y1))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// CleanOldFiles removes regular files in dir whose modification time is older
// than maxAge and returns how many were removed. Errors are skipped so a stale
// file can never block an upload.
func (u *utils) CleanOldFiles(dir string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
				removed++
			}
		}
	}

	return removed
}
