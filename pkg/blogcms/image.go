package blogcms

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxImageBytes is the upper bound for uploaded images (5 MiB).
const MaxImageBytes = 5 << 20

// Allow-list for uploaded images: JPEG, PNG, GIF, WebP.
var (
	imageExtensions = map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".gif":  {},
		".webp": {},
	}

	imageMIMETypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
		"image/gif":  {},
		"image/webp": {},
	}
)

// ValidateImage checks an upload against the allow-list and the size bound.
// The declared media type, the filename extension, and the sniffed content
// signature must all agree on an allowed image type. Callers run this
// before any asset is written.
func ValidateImage(img *ImageUpload) error {
	if int64(len(img.Data)) > MaxImageBytes {
		return fmt.Errorf("%w: image exceeds %d bytes", ErrPayloadTooLarge, MaxImageBytes)
	}

	ext := strings.ToLower(filepath.Ext(img.FileName))
	if _, ok := imageExtensions[ext]; !ok {
		return fmt.Errorf("%w: file extension %q is not an allowed image type", ErrUnsupportedMedia, ext)
	}

	if img.ContentType != "" {
		declared, _, err := mime.ParseMediaType(img.ContentType)
		if err != nil {
			return fmt.Errorf("%w: malformed content type %q", ErrUnsupportedMedia, img.ContentType)
		}
		if _, ok := imageMIMETypes[declared]; !ok {
			return fmt.Errorf("%w: declared content type %q is not an allowed image type", ErrUnsupportedMedia, declared)
		}
	}

	// Content signature check: never trust the declared type alone.
	sniffed := http.DetectContentType(img.Data)
	if _, ok := imageMIMETypes[sniffed]; !ok {
		return fmt.Errorf("%w: content does not look like an allowed image (detected %q)", ErrUnsupportedMedia, sniffed)
	}

	return nil
}
