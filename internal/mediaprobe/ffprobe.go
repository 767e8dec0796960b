// Package mediaprobe extracts technical metadata from video assets by
// running ffprobe against their URL. The processor treats probing as
// best-effort: when ffprobe is unavailable or fails, it falls back to
// estimation from the asset's byte length.
package mediaprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Metadata is the coarse technical metadata the catalog stores.
type Metadata struct {
	Duration float64 // seconds
	Width    int
	Height   int
	Format   string
}

// Resolution formats the probed dimensions as "WxH", or empty when unknown.
func (m *Metadata) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Prober probes a video asset for its technical metadata.
type Prober interface {
	Probe(ctx context.Context, url string) (*Metadata, error)
}

// ffprobeOutput maps the subset of ffprobe's JSON output we read.
type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// FFProbe shells out to ffprobe, which reads both local paths and URLs.
type FFProbe struct {
	Timeout time.Duration
}

// NewFFProbe creates a prober with the given per-invocation timeout.
func NewFFProbe(timeout time.Duration) *FFProbe {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbe{Timeout: timeout}
}

func (f *FFProbe) Probe(ctx context.Context, url string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		url,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %v, stderr: %s", err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("unmarshalling ffprobe output: %w", err)
	}

	meta := &Metadata{Format: out.Format.FormatName}

	if out.Format.Duration != "" {
		duration, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing duration %q: %w", out.Format.Duration, err)
		}
		meta.Duration = duration
	}

	for _, stream := range out.Streams {
		if stream.CodecType == "video" && stream.Width > 0 {
			meta.Width = stream.Width
			meta.Height = stream.Height
			break
		}
	}

	return meta, nil
}
