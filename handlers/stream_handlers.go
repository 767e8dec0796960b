package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/httprange"
	"trailforge/video-service/internal/metrics"
)

// StreamVideo serves GET /videos/stream?id=<id>&action=stream|view.
//
// action=view increments the view counter and returns the new count.
// action=stream (the default) re-serves the asset's bytes, honoring a
// single Range header with a 206 partial response; an absent or
// unsatisfiable range falls back to a full 200 body. Both responses
// advertise Accept-Ranges so clients can scrub.
func (h *ApplicationHandler) StreamVideo(c *fiber.Ctx) error {
	videoID := c.Query("id")
	if videoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id query parameter is required"})
	}

	if c.Query("action", "stream") == "view" {
		return h.trackView(c, videoID)
	}

	record, err := h.Catalog.Get(c.Context(), videoID)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("video %s not found", videoID)})
	}

	size, contentType, err := h.Blob.Probe(c.Context(), record.VideoURL)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues("error").Inc()
		h.Logger.WithField("video_id", videoID).WithError(err).Error("Video asset unreachable")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "video asset unreachable"})
	}
	if contentType == "" {
		contentType = "video/mp4"
	}

	if br, ok := httprange.Parse(c.Get(fiber.HeaderRange), size); ok {
		return h.servePartial(c, record.VideoURL, contentType, size, br)
	}

	return h.serveFull(c, record.VideoURL, contentType, size)
}

func (h *ApplicationHandler) trackView(c *fiber.Ctx, videoID string) error {
	count, err := h.Catalog.IncrementCounter(c.Context(), videoID, catalog.CounterView)
	if err != nil {
		h.Logger.WithField("video_id", videoID).WithError(err).Error("View increment failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to track view"})
	}

	metrics.InteractionsTotal.WithLabelValues(catalog.CounterView).Inc()
	return c.JSON(fiber.Map{
		"success":    true,
		"view_count": count,
	})
}

func (h *ApplicationHandler) servePartial(c *fiber.Ctx, videoURL, contentType string, size int64, br httprange.ByteRange) error {
	result, err := h.Blob.Fetch(c.Context(), videoURL, br.Header())
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues("error").Inc()
		h.Logger.WithError(err).Error("Upstream range fetch failed")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "video asset unreachable"})
	}

	metrics.StreamRequestsTotal.WithLabelValues("partial").Inc()

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderContentRange, br.ContentRange(size))
	c.Set(fiber.HeaderContentLength, fmt.Sprintf("%d", br.Length()))
	c.Status(fiber.StatusPartialContent)
	return c.SendStream(result.Body, int(br.Length()))
}

func (h *ApplicationHandler) serveFull(c *fiber.Ctx, videoURL, contentType string, size int64) error {
	result, err := h.Blob.Fetch(c.Context(), videoURL, "")
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues("error").Inc()
		h.Logger.WithError(err).Error("Upstream fetch failed")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "video asset unreachable"})
	}

	metrics.StreamRequestsTotal.WithLabelValues("full").Inc()

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Status(fiber.StatusOK)
	return c.SendStream(result.Body, int(size))
}
