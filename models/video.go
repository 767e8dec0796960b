package models

import (
	"time"
)

// ProcessingStatus is the lifecycle state of a video record.
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case ProcessingPending, ProcessingCompleted, ProcessingFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal edge.
// A record is created as pending and never returns to pending; failed
// records may be reprocessed to completed by the reconciler sweep.
func (s ProcessingStatus) CanTransition(next ProcessingStatus) bool {
	if !next.Valid() {
		return false
	}
	if next == ProcessingPending {
		return false
	}
	return true
}

// VideoRecord represents the structure of a video in the catalog table.
// Pointer fields map to nullable columns; the derived technical fields
// (Duration, Resolution, FileSize, VideoFormat) and ThumbnailURL are
// populated only by the processing function.
type VideoRecord struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      *string          `json:"description,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Category         *string          `json:"category,omitempty"`
	VideoURL         string           `json:"video_url"`
	ThumbnailURL     *string          `json:"thumbnail_url,omitempty"`
	Duration         *float64         `json:"duration,omitempty"`    // seconds
	Resolution       *string          `json:"resolution,omitempty"`  // e.g. "1920x1080"
	FileSize         *int64           `json:"file_size,omitempty"`   // bytes
	VideoFormat      *string          `json:"video_format,omitempty"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	ViewCount        int64            `json:"view_count"`
	LikeCount        int64            `json:"like_count"`
	ShareCount       int64            `json:"share_count"`
	SaveCount        int64            `json:"save_count"`
	Slug             *string          `json:"slug,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// UploadReference is what the upload endpoint resolves once bytes land
// in the blob store. No catalog record exists yet at this point.
type UploadReference struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

// VideoMetadata holds the coarse technical metadata derived during processing.
type VideoMetadata struct {
	Duration   float64 `json:"duration"`
	Resolution string  `json:"resolution"`
	FileSize   int64   `json:"fileSize"`
	Format     string  `json:"format"`
}
