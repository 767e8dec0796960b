// Package processing implements the server-side processing step that
// moves a video record from pending to a terminal status: slug
// generation, metadata extraction, and placeholder thumbnail upload.
package processing

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/mediaprobe"
	"trailforge/video-service/internal/storage"
	"trailforge/video-service/models"
)

// Fallback values used when metadata extraction is entirely best-effort
// (no prober available and the size probe failed). Estimation assumes a
// ~1 Mbps asset, which is close enough for gallery display.
const (
	defaultResolution   = "1920x1080"
	defaultFormat       = "mp4"
	estimatedBitsPerSec = 1_000_000
)

// fallbackThumbnailKey points at a static placeholder asset so a
// completed record always carries a non-null thumbnail URL, even when
// the generated thumbnail upload failed.
const fallbackThumbnailKey = "thumbnails/default_thumbnail.svg"

// Request is the invocation payload for the processing function.
type Request struct {
	VideoID  string `json:"video_id" validate:"required"`
	VideoURL string `json:"video_url" validate:"required,url"`
	Title    string `json:"title"`
}

// Result is returned to the caller on success.
type Result struct {
	VideoID      string               `json:"video_id"`
	Slug         string               `json:"slug,omitempty"`
	Metadata     models.VideoMetadata `json:"metadata"`
	ThumbnailURL string               `json:"thumbnail_url"`
}

// Processor runs the processing step against the blob store and catalog.
type Processor struct {
	blob    storage.BlobStore
	catalog catalog.Store
	prober  mediaprobe.Prober
	logger  *logrus.Logger
}

// NewProcessor creates a Processor. prober may be nil, in which case
// metadata is estimated from the asset's byte length alone.
func NewProcessor(blob storage.BlobStore, cat catalog.Store, prober mediaprobe.Prober, logger *logrus.Logger) *Processor {
	return &Processor{blob: blob, catalog: cat, prober: prober, logger: logger}
}

// Process runs the full processing step for one video. On unrecoverable
// errors it writes processing_status = failed (unless the record is
// already completed) and returns the error. Metadata extraction and
// thumbnail upload are best-effort and never fail the operation.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	record, err := p.catalog.Get(ctx, req.VideoID)
	if err != nil {
		return nil, fmt.Errorf("fetching record %s: %w", req.VideoID, err)
	}

	if !record.ProcessingStatus.CanTransition(models.ProcessingCompleted) {
		return nil, fmt.Errorf("record %s in status %q cannot be processed", req.VideoID, record.ProcessingStatus)
	}

	fields := make(map[string]interface{})

	// Slug is immutable once set; generate only for titled, unslugged records.
	slug := ""
	if record.Slug != nil {
		slug = *record.Slug
	} else if req.Title != "" {
		slug = Slugify(req.Title)
		fields["slug"] = slug
	}

	meta := p.extractMetadata(ctx, req.VideoURL)
	fields["duration"] = meta.Duration
	fields["resolution"] = meta.Resolution
	fields["file_size"] = meta.FileSize
	fields["video_format"] = meta.Format

	thumbnailURL := p.uploadThumbnail(ctx, req.VideoID, pickTitle(req.Title, record.Title))
	fields["thumbnail_url"] = thumbnailURL

	if err := p.catalog.CompleteProcessing(ctx, req.VideoID, fields); err != nil {
		p.logger.WithFields(logrus.Fields{
			"video_id": req.VideoID,
			"error":    err.Error(),
		}).Error("Failed to write processing outcome")

		if record.ProcessingStatus != models.ProcessingCompleted {
			if failErr := p.catalog.FailProcessing(ctx, req.VideoID, err.Error()); failErr != nil {
				p.logger.WithField("video_id", req.VideoID).WithError(failErr).Error("Failed to mark record as failed")
			}
		}
		return nil, fmt.Errorf("completing processing for %s: %w", req.VideoID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"video_id":   req.VideoID,
		"slug":       slug,
		"duration":   meta.Duration,
		"resolution": meta.Resolution,
	}).Info("Video processing completed")

	return &Result{
		VideoID:      req.VideoID,
		Slug:         slug,
		Metadata:     meta,
		ThumbnailURL: thumbnailURL,
	}, nil
}

// extractMetadata probes the asset, falling back to byte-length
// estimation when the prober is unavailable or fails. It never returns
// an error: processing proceeds with defaults rather than aborting.
func (p *Processor) extractMetadata(ctx context.Context, videoURL string) models.VideoMetadata {
	size, _, probeErr := p.blob.Probe(ctx, videoURL)
	if probeErr != nil {
		p.logger.WithError(probeErr).Warn("Size probe failed, using defaults")
	}

	if p.prober != nil {
		if meta, err := p.prober.Probe(ctx, videoURL); err == nil {
			result := models.VideoMetadata{
				Duration:   meta.Duration,
				Resolution: meta.Resolution(),
				FileSize:   size,
				Format:     meta.Format,
			}
			if result.Resolution == "" {
				result.Resolution = defaultResolution
			}
			if result.Format == "" {
				result.Format = formatFromURL(videoURL)
			}
			return result
		} else {
			p.logger.WithError(err).Warn("Media probe failed, estimating metadata")
		}
	}

	return models.VideoMetadata{
		Duration:   estimateDuration(size),
		Resolution: defaultResolution,
		FileSize:   size,
		Format:     formatFromURL(videoURL),
	}
}

// uploadThumbnail generates and stores the placeholder thumbnail. Upload
// errors degrade to the static fallback asset rather than failing the
// processing step.
func (p *Processor) uploadThumbnail(ctx context.Context, videoID, title string) string {
	svg := PlaceholderThumbnail(title)
	key := storage.ThumbnailKey(videoID, ".svg")

	url, err := p.blob.Upload(ctx, key, strings.NewReader(string(svg)), "image/svg+xml", true)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"video_id": videoID,
			"error":    err.Error(),
		}).Warn("Thumbnail upload failed, using fallback")
		return p.blob.PublicURL(fallbackThumbnailKey)
	}
	return url
}

func estimateDuration(size int64) float64 {
	if size <= 0 {
		return 0
	}
	return float64(size*8) / estimatedBitsPerSec
}

func formatFromURL(videoURL string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(videoURL)), ".")
	if ext == "" {
		return defaultFormat
	}
	return ext
}

func pickTitle(requestTitle, recordTitle string) string {
	if requestTitle != "" {
		return requestTitle
	}
	return recordTitle
}
