package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"trailforge/video-service/internal/metrics"
	"trailforge/video-service/internal/storage"
	"trailforge/video-service/internal/validation"
	"trailforge/video-service/models"
	"trailforge/video-service/utils"
)

// UploadVideo godoc
// @Summary Upload a raw video asset
// @Description Validates the file against the type allow-list and size ceiling, then writes it to the blob store under raw/<uuid>_original.<ext>. No catalog record is created here.
// @Tags videos
// @Accept  multipart/form-data
// @Produce json
// @Success 201 {object} models.UploadReference
// @Failure 400 {object} ErrorResponse "Validation failure, no storage call was made"
// @Failure 500 {object} ErrorResponse "The blob store rejected the write"
// @Router /videos/upload [post]
func (h *ApplicationHandler) UploadVideo(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Error getting file: %v", err))
	}

	mimeType := file.Header.Get("Content-Type")

	// Validation happens before any network call; a rejected file never
	// reaches the blob store.
	if err := h.Validator.ValidateFile(validation.KindVideo, file.Filename, mimeType, file.Size); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		h.Logger.WithField("file_name", file.Filename).WithError(err).Warn("Upload rejected by validation")
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	ext := validation.ExtensionFor(mimeType, file.Filename)
	videoID, key := storage.RawVideoKey(ext)

	fileHandle, err := file.Open()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		h.Logger.WithError(err).Error("Error opening uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error opening file: %v", err))
	}
	defer fileHandle.Close()

	body := storage.NewProgressReader(fileHandle, file.Size, func(percent int) {
		h.Logger.WithFields(map[string]interface{}{
			"video_id": videoID,
			"percent":  percent,
		}).Debug("Upload progress")
	})

	// Raw uploads are no-overwrite: a duplicate key is a store error.
	url, err := h.Blob.Upload(c.Context(), key, body, mimeType, false)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		h.Logger.WithFields(map[string]interface{}{
			"video_id": videoID,
			"key":      key,
		}).WithError(err).Error("Blob store rejected upload")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Upload failed: %v", err))
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	h.Logger.WithFields(map[string]interface{}{
		"video_id": videoID,
		"key":      key,
		"size":     file.Size,
	}).Info("Video uploaded")

	return utils.RespondWithJSON(c, fiber.StatusCreated, models.UploadReference{
		ID:       videoID,
		URL:      url,
		FileName: file.Filename,
		FileSize: file.Size,
		MimeType: mimeType,
	})
}
