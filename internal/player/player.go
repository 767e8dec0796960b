// Package player models a playback session over a video element:
// transport controls, position tracking, and the one-shot view callback
// fired once enough of the video has been watched.
package player

import (
	"sync"
)

// DefaultViewThreshold is the watched fraction of the duration after
// which a playback counts as a view. Short previews below the threshold
// never report.
const DefaultViewThreshold = 0.25

// ViewCallback fires at most once per session, when playback first
// crosses the view threshold.
type ViewCallback func()

// Session tracks one playback of one video. All methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	videoID    string
	duration   float64
	position   float64
	playing    bool
	muted      bool
	volume     float64
	fullscreen bool

	threshold   float64
	viewTracked bool
	onView      ViewCallback

	lastErr error
}

// NewSession creates a playback session for videoID. threshold is the
// watched fraction that counts as a view; values outside (0, 1] fall
// back to DefaultViewThreshold. onView may be nil.
func NewSession(videoID string, threshold float64, onView ViewCallback) *Session {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultViewThreshold
	}
	return &Session{
		videoID:   videoID,
		volume:    1.0,
		threshold: threshold,
		onView:    onView,
	}
}

// VideoID returns the id of the video being played.
func (s *Session) VideoID() string { return s.videoID }

// LoadedMetadata records the duration once the element has metadata.
func (s *Session) LoadedMetadata(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = duration
}

// TimeUpdate records the current playback position. Crossing the view
// threshold for the first time fires the view callback; seeking back and
// crossing again does not re-fire it.
func (s *Session) TimeUpdate(position float64) {
	s.mu.Lock()
	s.position = position

	fire := false
	if !s.viewTracked && s.duration > 0 && position >= s.duration*s.threshold {
		s.viewTracked = true
		fire = s.onView != nil
	}
	cb := s.onView
	s.mu.Unlock()

	// Callback runs outside the lock so it may call back into the session.
	if fire {
		cb()
	}
}

// ViewTracked reports whether this session has already counted a view.
func (s *Session) ViewTracked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewTracked
}

// Play marks the session as playing.
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.lastErr = nil
}

// Pause marks the session as paused.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// Playing reports whether playback is active.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// SeekTo moves the playhead. Positions are clamped to [0, duration].
// Seeking alone never fires the view callback; the next TimeUpdate does.
func (s *Session) SeekTo(position float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if position < 0 {
		position = 0
	}
	if s.duration > 0 && position > s.duration {
		position = s.duration
	}
	s.position = position
}

// Position returns the current playhead position.
func (s *Session) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the known duration, zero before LoadedMetadata.
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// SetVolume sets the volume, clamped to [0, 1].
func (s *Session) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	s.volume = volume
}

// Volume returns the current volume.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// ToggleMute flips the muted state and returns the new value.
func (s *Session) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = !s.muted
	return s.muted
}

// ToggleFullscreen flips the fullscreen state and returns the new value.
func (s *Session) ToggleFullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreen = !s.fullscreen
	return s.fullscreen
}

// Fail records a decode or network error; playback stops and the error
// is held for the retry affordance.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.lastErr = err
}

// Err returns the last playback error, nil when healthy.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Retry clears the error state so the caller can re-request the stream.
// The view-tracked flag is preserved: a retry is the same session.
func (s *Session) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}
