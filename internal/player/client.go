package player

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"trailforge/video-service/config"
)

// Client builds playback sessions against one service instance. Every
// session it creates carries the configured watched-fraction threshold
// and posts its one-shot view event through the reporter.
type Client struct {
	reporter  *ViewReporter
	threshold float64
	timeout   time.Duration
	logger    *logrus.Logger
}

// NewClient creates a playback client for the streaming endpoint at
// baseURL, e.g. "http://localhost:8080/api/v1/videos/stream". The view
// threshold comes from the playback configuration.
func NewClient(baseURL string, cfg config.PlaybackConfig, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		reporter:  NewViewReporter(baseURL, timeout),
		threshold: cfg.ViewThreshold,
		timeout:   timeout,
		logger:    logger,
	}
}

// Session creates a playback session for videoID. Crossing the view
// threshold reports the view to the service; reporting failures are
// logged and never disturb playback.
func (c *Client) Session(videoID string) *Session {
	return NewSession(videoID, c.threshold, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if _, err := c.reporter.ReportView(ctx, videoID); err != nil {
			c.logger.WithField("video_id", videoID).WithError(err).Warn("View report failed")
		}
	})
}
