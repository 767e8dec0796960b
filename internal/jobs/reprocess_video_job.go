// Package jobs defines the work items the reconciler dispatches.
package jobs

import (
	"context"
	"time"

	"trailforge/video-service/internal/processing"
)

// ReprocessVideoJob re-runs the processing step for one stalled record
// (pending or failed with a missing thumbnail).
type ReprocessVideoJob struct {
	VideoID   string
	VideoURL  string
	Title     string
	Processor *processing.Processor
	Timeout   time.Duration
}

// ID returns the job identifier, which is the video id.
func (j *ReprocessVideoJob) ID() string {
	return j.VideoID
}

// Execute runs processing for the stalled record.
func (j *ReprocessVideoJob) Execute() error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := j.Processor.Process(ctx, processing.Request{
		VideoID:  j.VideoID,
		VideoURL: j.VideoURL,
		Title:    j.Title,
	})
	return err
}
