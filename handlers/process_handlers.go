package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"trailforge/video-service/internal/metrics"
	"trailforge/video-service/internal/processing"
)

var validate = validator.New()

// ProcessVideo godoc
// @Summary Invoke the processing step for an uploaded video
// @Description Derives the slug, extracts coarse metadata, uploads the placeholder thumbnail, and writes the terminal processing status.
// @Tags videos
// @Accept  json
// @Produce json
// @Router /videos/process [post]
func (h *ApplicationHandler) ProcessVideo(c *fiber.Ctx) error {
	payload := new(processing.Request)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("invalid request body: %v", err)})
	}

	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("validation failed: %v", err)})
	}

	result, err := h.Processor.Process(c.Context(), *payload)
	if err != nil {
		metrics.ProcessingTotal.WithLabelValues("failed").Inc()
		h.Logger.WithField("video_id", payload.VideoID).WithError(err).Error("Processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	metrics.ProcessingTotal.WithLabelValues("completed").Inc()

	response := fiber.Map{
		"success":       true,
		"video_id":      result.VideoID,
		"metadata":      result.Metadata,
		"thumbnail_url": result.ThumbnailURL,
	}
	if result.Slug != "" {
		response["slug"] = result.Slug
	}
	return c.JSON(response)
}
