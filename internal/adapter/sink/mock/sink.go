// Package mock provides an in-memory implementation of the MediaSink interface.
// It is used by tests and by the --sink=mock mode, where no audio device is needed.
package mock

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/ports"
)

// DefaultDuration is the simulated length of every loaded source (3 minutes).
const DefaultDuration = 180.0

// Sink simulates a media element in memory without actually playing audio.
//
// Thread-safety: This implementation is thread-safe. The observer is always
// called after the internal lock is released.
type Sink struct {
	logger *slog.Logger

	mu       sync.Mutex
	observer func(domain.Message)

	// Source state
	source   string
	loaded   bool
	playing  bool
	position float64
	duration float64
	volume   float64
	closed   bool

	// Behavior configuration (for testing error scenarios)
	failLoad bool
	failPlay bool
	gate     chan struct{}

	// Recorded calls, oldest first
	calls []string

	clockStop chan struct{}
	clockWG   sync.WaitGroup
}

// NewSink creates a new mock sink. A nil logger discards diagnostics.
func NewSink(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{
		logger:   logger.With("sink", "mock"),
		duration: DefaultDuration,
		volume:   1,
	}
}

// SetFailLoad configures the mock to fail loading sources (for testing).
func (s *Sink) SetFailLoad(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad = fail
}

// SetFailPlay configures the mock to reject play requests (for testing).
func (s *Sink) SetFailPlay(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPlay = fail
}

// SetDuration sets the duration reported for sources loaded from now on.
func (s *Sink) SetDuration(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = seconds
}

// HoldPlay makes Play block until ReleasePlay is called or its context ends.
func (s *Sink) HoldPlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		s.gate = make(chan struct{})
	}
}

// ReleasePlay unblocks every Play waiting since HoldPlay.
func (s *Sink) ReleasePlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Observe registers the notification callback.
func (s *Sink) Observe(observer func(domain.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// notify delivers messages to the observer. Must be called without s.mu held.
func (s *Sink) notify(msgs ...domain.Message) {
	s.mu.Lock()
	observer := s.observer
	s.mu.Unlock()

	if observer == nil {
		return
	}
	for _, msg := range msgs {
		observer(msg)
	}
}

// Load replaces the current source and reports its duration.
func (s *Sink) Load(source string) error {
	s.mu.Lock()
	s.record("load " + source)

	if s.closed {
		s.mu.Unlock()
		return domain.ErrSinkClosed
	}
	if s.failLoad || source == "" {
		// A failed load leaves nothing loaded
		s.unload()
		s.mu.Unlock()
		if source == "" {
			return domain.NewSinkError("load", source, domain.ErrInvalidSource)
		}
		return domain.NewSinkError("load", source, domain.ErrUnsupportedFormat)
	}

	s.source = source
	s.loaded = true
	s.playing = false
	s.position = 0
	duration := s.duration
	s.mu.Unlock()

	s.logger.Debug("source loaded", slog.String("source", source))
	s.notify(domain.DurationKnown{Seconds: duration})
	return nil
}

// Play starts or resumes playback.
func (s *Sink) Play(ctx context.Context) error {
	s.mu.Lock()
	s.record("play")
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return domain.ErrSinkClosed
	case s.failPlay:
		return domain.NewSinkError("play", s.source, domain.ErrPlaybackRejected)
	case !s.loaded:
		return domain.ErrNoSourceLoaded
	}

	s.playing = true
	return nil
}

// Pause pauses playback.
func (s *Sink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("pause")

	if s.closed {
		return domain.ErrSinkClosed
	}
	s.playing = false
	return nil
}

// SetCurrentTime moves the playback position, clamped to the source length.
func (s *Sink) SetCurrentTime(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("seek")

	if s.closed {
		return domain.ErrSinkClosed
	}
	if !s.loaded {
		return domain.ErrNoSourceLoaded
	}
	if math.IsNaN(seconds) {
		return domain.NewValidationError("position", seconds, "not a number")
	}
	s.position = math.Min(math.Max(seconds, 0), s.duration)
	return nil
}

// SetVolume sets the output level.
func (s *Sink) SetVolume(level float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("volume")

	if s.closed {
		return domain.ErrSinkClosed
	}
	if level < 0 || level > 1 || math.IsNaN(level) {
		return domain.NewValidationError("volume", level, "must be between 0 and 1")
	}
	s.volume = level
	return nil
}

// SimulateProgress advances a playing source by delta seconds, reporting the
// new position and, once the end is reached, TrackEnded.
func (s *Sink) SimulateProgress(delta float64) {
	s.mu.Lock()
	if s.closed || !s.playing {
		s.mu.Unlock()
		return
	}

	s.position += delta
	ended := s.position >= s.duration
	if ended {
		s.position = s.duration
		s.playing = false
	}
	position := s.position
	s.mu.Unlock()

	if ended {
		s.notify(domain.PositionUpdated{Seconds: position}, domain.TrackEnded{})
		return
	}
	s.notify(domain.PositionUpdated{Seconds: position})
}

// StartClock advances playback in real time, one step per interval, until Close.
// Calling it again while a clock runs is a no-op.
func (s *Sink) StartClock(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.clockStop != nil {
		return
	}
	stop := make(chan struct{})
	s.clockStop = stop

	s.clockWG.Add(1)
	go func() {
		defer s.clockWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.SimulateProgress(interval.Seconds())
			}
		}
	}()
}

// Close releases the sink and stops the clock.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.record("close")
	s.closed = true
	s.playing = false
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
	if s.clockStop != nil {
		close(s.clockStop)
	}
	s.mu.Unlock()

	s.clockWG.Wait()
	return nil
}

func (s *Sink) unload() {
	s.source = ""
	s.loaded = false
	s.playing = false
	s.position = 0
}

func (s *Sink) record(call string) {
	s.calls = append(s.calls, call)
}

// Calls returns the recorded method calls, oldest first.
func (s *Sink) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Source returns the loaded source.
func (s *Sink) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// IsPlaying reports whether the simulated source is playing.
func (s *Sink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Position returns the simulated position in seconds.
func (s *Sink) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Volume returns the current output level.
func (s *Sink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Verify interface implementation
var _ ports.MediaSink = (*Sink)(nil)
