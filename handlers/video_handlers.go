package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/metrics"
	"trailforge/video-service/models"
	"trailforge/video-service/utils"
)

// CreateVideoRequest defines the expected request body for creating a
// catalog record. The id and video_url come from a prior upload; record
// creation is deliberately decoupled from the byte upload.
type CreateVideoRequest struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	VideoURL    string   `json:"video_url" validate:"required,url"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// UpdateVideoRequest carries the editorial fields a content owner may
// change. Derived technical fields and the slug are not editable here.
type UpdateVideoRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// InteractionRequest names the counter to bump for a video.
type InteractionRequest struct {
	Action string `json:"action" validate:"required,oneof=like share save"`
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateVideo godoc
// @Summary Create a catalog record for an uploaded video
// @Tags videos
// @Accept  json
// @Produce json
// @Router /videos [post]
func (h *ApplicationHandler) CreateVideo(c *fiber.Ctx) error {
	payload := new(CreateVideoRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse video JSON: %v", err))
	}

	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	now := time.Now()
	record := &models.VideoRecord{
		ID:               payload.ID,
		Title:            payload.Title,
		Description:      payload.Description,
		Tags:             payload.Tags,
		Category:         payload.Category,
		VideoURL:         payload.VideoURL,
		ProcessingStatus: models.ProcessingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := h.Catalog.Insert(c.Context(), record)
	if err != nil {
		h.Logger.WithField("video_id", payload.ID).WithError(err).Error("Failed to create video record")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not create video record: %v", err))
	}

	h.Logger.WithField("video_id", created.ID).Info("Video record created")
	return utils.RespondWithJSON(c, fiber.StatusCreated, created)
}

// ListVideos returns catalog records, newest first.
func (h *ApplicationHandler) ListVideos(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	records, err := h.Catalog.List(c.Context(), limit)
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list video records")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve videos")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, records)
}

// GetVideo returns one catalog record by id.
func (h *ApplicationHandler) GetVideo(c *fiber.Ctx) error {
	videoID := c.Params("id")

	record, err := h.Catalog.Get(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		h.Logger.WithField("video_id", videoID).WithError(err).Error("Failed to fetch video record")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve video")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, record)
}

// UpdateVideo patches the editorial metadata of a record.
func (h *ApplicationHandler) UpdateVideo(c *fiber.Ctx) error {
	videoID := c.Params("id")

	payload := new(UpdateVideoRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse video JSON: %v", err))
	}

	fields := make(map[string]interface{})
	if payload.Title != nil {
		fields["title"] = *payload.Title
	}
	if payload.Description != nil {
		fields["description"] = *payload.Description
	}
	if payload.Tags != nil {
		fields["tags"] = payload.Tags
	}
	if payload.Category != nil {
		fields["category"] = *payload.Category
	}
	if len(fields) == 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No editable fields provided")
	}

	updated, err := h.Catalog.Update(c.Context(), videoID, fields)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		h.Logger.WithField("video_id", videoID).WithError(err).Error("Failed to update video record")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not update video")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, updated)
}

// DeleteVideo removes the stored blobs and then the catalog record. A
// record is only deleted after its raw asset is gone, so a failure here
// never leaves an ownerless record pointing at nothing.
func (h *ApplicationHandler) DeleteVideo(c *fiber.Ctx) error {
	videoID := c.Params("id")

	record, err := h.Catalog.Get(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		h.Logger.WithField("video_id", videoID).WithError(err).Error("Failed to fetch video record for deletion")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve video")
	}

	if key, ok := h.Blob.KeyFromURL(record.VideoURL); ok {
		if err := h.Blob.Remove(c.Context(), key); err != nil {
			h.Logger.WithFields(map[string]interface{}{
				"video_id": videoID,
				"key":      key,
			}).WithError(err).Error("Failed to remove video blob")
			return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not remove video asset")
		}
	}

	// Thumbnail removal is best-effort; an orphaned placeholder is harmless.
	if record.ThumbnailURL != nil {
		if key, ok := h.Blob.KeyFromURL(*record.ThumbnailURL); ok {
			if err := h.Blob.Remove(c.Context(), key); err != nil {
				h.Logger.WithField("video_id", videoID).WithError(err).Warn("Failed to remove thumbnail blob")
			}
		}
	}

	if err := h.Catalog.Delete(c.Context(), videoID); err != nil {
		h.Logger.WithField("video_id", videoID).WithError(err).Error("Failed to delete video record")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not delete video record")
	}

	h.Logger.WithField("video_id", videoID).Info("Video deleted")
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"id": videoID})
}

// RecordInteraction bumps one of the like/share/save counters.
func (h *ApplicationHandler) RecordInteraction(c *fiber.Ctx) error {
	videoID := c.Params("id")

	payload := new(InteractionRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse interaction JSON: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	counter := payload.Action + "_count"
	count, err := h.Catalog.IncrementCounter(c.Context(), videoID, counter)
	if err != nil {
		h.Logger.WithFields(map[string]interface{}{
			"video_id": videoID,
			"counter":  counter,
		}).WithError(err).Error("Interaction increment failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not record interaction")
	}

	metrics.InteractionsTotal.WithLabelValues(counter).Inc()
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"action": payload.Action,
		"count":  count,
	})
}
