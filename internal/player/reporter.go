package player

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ViewReporter calls the streaming function's view action when a
// session's watch threshold is crossed.
type ViewReporter struct {
	baseURL    string
	httpClient *http.Client
}

// NewViewReporter creates a reporter against the streaming endpoint,
// e.g. "http://localhost:8080/api/v1/videos/stream".
func NewViewReporter(baseURL string, timeout time.Duration) *ViewReporter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ViewReporter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ReportView increments the video's view count and returns the new count.
func (r *ViewReporter) ReportView(ctx context.Context, videoID string) (int64, error) {
	endpoint := fmt.Sprintf("%s?id=%s&action=view", r.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("creating view request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reporting view for %s: %w", videoID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("reporting view for %s: unexpected status %d", videoID, resp.StatusCode)
	}

	var payload struct {
		Success   bool  `json:"success"`
		ViewCount int64 `json:"view_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decoding view response for %s: %w", videoID, err)
	}
	if !payload.Success {
		return 0, fmt.Errorf("view increment rejected for %s", videoID)
	}

	return payload.ViewCount, nil
}
