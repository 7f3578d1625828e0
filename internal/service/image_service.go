package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"carelog/internal/config"
	"carelog/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir       = "static/images"
	DefaultMaxUploadSizeMB = 10
	MasterMaxSize          = 1600
	ThumbnailSize          = 256
	JPEGQuality            = 82
	WebPQuality            = 70
)

// Upload namespaces. Profile pictures and blog images live in separate
// subdirectories so a blog image can never shadow an avatar.
const (
	NamespaceUser = "user"
	NamespaceBlog = "blog"
)

// ImageService stores uploaded images on disk as a JPEG master with a
// WebP sibling and a small thumbnail.
type ImageService struct {
	uploadDir string
	maxBytes  int64
}

func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := DefaultUploadDir
	maxUploadMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.MaxUploadMB > 0 {
			maxUploadMB = cfg.MaxUploadMB
		}
	}

	return &ImageService{
		uploadDir: uploadDir,
		maxBytes:  int64(maxUploadMB) * 1024 * 1024,
	}
}

// Save validates and stores an upload, returning the relative path to
// put on the owning record, e.g. "blog/5f0c...jpg".
func (s *ImageService) Save(namespace, filename string, content []byte) (string, error) {
	if namespace != NamespaceUser && namespace != NamespaceBlog {
		return "", models.NewValidationError("Invalid upload namespace")
	}
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return "", models.NewValidationError("Unsupported image format")
	}

	// The stored name is generated, so a crafted client filename can
	// never traverse out of the upload directory.
	name := uuid.NewString()
	if ext := sanitizedExt(filename); ext != "" {
		name += ext
	} else {
		name += ".jpg"
	}
	rel := filepath.ToSlash(filepath.Join(namespace, name))

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)

	jpgBytes, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(s.uploadDir, rel), jpgBytes); err != nil {
		return "", models.NewInternalError(err)
	}

	webpBytes, err := encodeWebP(master, WebPQuality)
	if err == nil {
		_ = writeBytesToFile(filepath.Join(s.uploadDir, webpSibling(rel)), webpBytes)
	}

	thumb := resizeToFit(master, ThumbnailSize, ThumbnailSize)
	thumbBytes, err := encodeJPEG(thumb, JPEGQuality)
	if err == nil {
		_ = writeBytesToFile(filepath.Join(s.uploadDir, thumbSibling(rel)), thumbBytes)
	}

	return rel, nil
}

// Remove deletes a stored image and its derived files. Missing files
// are not an error.
func (s *ImageService) Remove(rel string) {
	if rel == "" || strings.Contains(rel, "..") {
		return
	}
	_ = os.Remove(filepath.Join(s.uploadDir, rel))
	_ = os.Remove(filepath.Join(s.uploadDir, webpSibling(rel)))
	_ = os.Remove(filepath.Join(s.uploadDir, thumbSibling(rel)))
}

// URL returns the public path for a stored relative path.
func (s *ImageService) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/static/images/" + filepath.ToSlash(rel)
}

func webpSibling(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".webp"
}

func thumbSibling(rel string) string {
	ext := filepath.Ext(rel)
	return strings.TrimSuffix(rel, ext) + "_thumb" + ext
}

// sanitizedExt keeps only a known-safe image extension from the client
// filename; anything else is dropped.
func sanitizedExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ""
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
