// Package validation checks uploaded files against the configured
// type allow-lists and size ceilings before any network call is made.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileKind selects which allow-list and size ceiling apply to an upload.
type FileKind string

const (
	KindVideo     FileKind = "video"
	KindThumbnail FileKind = "thumbnail"
	KindImage     FileKind = "image"
)

// Default size ceilings in bytes.
const (
	MaxVideoSize     int64 = 500 << 20 // 500MB
	MaxThumbnailSize int64 = 10 << 20  // 10MB
	MaxImageSize     int64 = 5 << 20   // 5MB
)

// videoMimeTypes maps the accepted video content types to their
// canonical file extensions, used for the extension fallback match.
var videoMimeTypes = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
	"video/webm":       ".webm",
}

var imageMimeTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// videoExtensions is the extension fallback for clients that send a
// generic or empty content type.
var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".svg": true,
}

// Validator holds the configured size ceilings.
type Validator struct {
	maxVideoSize     int64
	maxThumbnailSize int64
	maxImageSize     int64
}

// New creates a Validator. Zero or negative ceilings fall back to the defaults.
func New(maxVideo, maxThumbnail, maxImage int64) *Validator {
	if maxVideo <= 0 {
		maxVideo = MaxVideoSize
	}
	if maxThumbnail <= 0 {
		maxThumbnail = MaxThumbnailSize
	}
	if maxImage <= 0 {
		maxImage = MaxImageSize
	}
	return &Validator{
		maxVideoSize:     maxVideo,
		maxThumbnailSize: maxThumbnail,
		maxImageSize:     maxImage,
	}
}

// ValidateFile checks fileName/mimeType/size against the allow-list and
// ceiling for the given kind. It returns a descriptive error on the
// first failed check and never touches the network.
func (v *Validator) ValidateFile(kind FileKind, fileName, mimeType string, size int64) error {
	if size <= 0 {
		return fmt.Errorf("file %q is empty", fileName)
	}

	limit := v.limitFor(kind)
	if size > limit {
		return fmt.Errorf("file %q is %d bytes, exceeds the %d byte limit for %s uploads", fileName, size, limit, kind)
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(filepath.Ext(fileName))

	switch kind {
	case KindVideo:
		if _, ok := videoMimeTypes[mimeType]; ok {
			return nil
		}
		// Fallback: some browsers send application/octet-stream for .mkv etc.
		if videoExtensions[ext] {
			return nil
		}
		return fmt.Errorf("unsupported video type %q for file %q", mimeType, fileName)
	case KindThumbnail, KindImage:
		if _, ok := imageMimeTypes[mimeType]; ok {
			return nil
		}
		if imageExtensions[ext] {
			return nil
		}
		return fmt.Errorf("unsupported image type %q for file %q", mimeType, fileName)
	default:
		return fmt.Errorf("unknown file kind %q", kind)
	}
}

func (v *Validator) limitFor(kind FileKind) int64 {
	switch kind {
	case KindThumbnail:
		return v.maxThumbnailSize
	case KindImage:
		return v.maxImageSize
	default:
		return v.maxVideoSize
	}
}

// ExtensionFor returns the canonical extension for a video content type,
// or the file's own extension when the type is unknown.
func ExtensionFor(mimeType, fileName string) string {
	if ext, ok := videoMimeTypes[strings.ToLower(mimeType)]; ok {
		return ext
	}
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	return ".mp4"
}
