//go:build !((linux && cgo) || windows || darwin)

package beepsink

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/encore/internal/catalog"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/ports"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio output requires cgo on Linux.
const AudioAvailable = false

// Sink decodes sources to report their duration but cannot produce sound.
// Play always fails with domain.ErrAudioUnavailable.
type Sink struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	observer func(domain.Message)
	source   string
	closed   bool
}

// New creates a sink for builds without an audio backend.
func New(cfg Config, logger *slog.Logger) *Sink {
	return &Sink{
		cfg:    cfg,
		logger: logger.With("sink", "beep", "audio", false),
	}
}

// Observe registers the notification callback.
func (s *Sink) Observe(observer func(domain.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// Load decodes the source to validate it and report its length.
func (s *Sink) Load(source string) error {
	path, err := catalog.SourcePath(s.cfg.MediaRoot, source)
	if err != nil {
		return domain.NewSinkError("load", source, err)
	}
	streamer, format, err := openSource(path)
	if err != nil {
		return domain.NewSinkError("load", source, err)
	}
	duration := lengthSeconds(streamer, format)
	_ = streamer.Close()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSinkClosed
	}
	s.source = source
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(domain.DurationKnown{Seconds: duration})
	}
	return nil
}

// Play always fails: there is no audio device in this build.
func (s *Sink) Play(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSinkClosed
	}
	return domain.NewSinkError("play", s.source, domain.ErrAudioUnavailable)
}

// Pause is a no-op.
func (s *Sink) Pause() error { return nil }

// SetCurrentTime is a no-op.
func (s *Sink) SetCurrentTime(float64) error { return nil }

// SetVolume validates the level and otherwise does nothing.
func (s *Sink) SetVolume(level float64) error { return validLevel(level) }

// Close marks the sink closed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Verify interface implementation
var _ ports.MediaSink = (*Sink)(nil)
