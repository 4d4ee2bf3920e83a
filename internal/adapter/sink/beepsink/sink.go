//go:build (linux && cgo) || windows || darwin

package beepsink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/tejashwikalptaru/encore/internal/catalog"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/ports"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// Sink plays one source at a time on the default audio device.
//
// Thread-safety: s.mu guards the sink state; speaker.Lock guards the streamer
// chain while the speaker goroutine reads it. The observer is only called
// with neither lock held.
type Sink struct {
	cfg        Config
	logger     *slog.Logger
	sampleRate beep.SampleRate

	mu           sync.Mutex
	observer     func(domain.Message)
	speakerReady bool
	closed       bool

	// Current source
	source   string
	streamer beep.StreamSeekCloser
	format   beep.Format
	volume   *effects.Volume
	ctrl     *beep.Ctrl
	queued   bool
	loadSeq  uint64
	level    float64

	reporterStop chan struct{}
	reporterWG   sync.WaitGroup
}

// New creates a sink. The speaker is initialized on the first Play.
func New(cfg Config, logger *slog.Logger) *Sink {
	defaults := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaults.SampleRate
	}
	if cfg.ReportInterval <= 0 {
		cfg.ReportInterval = defaults.ReportInterval
	}
	return &Sink{
		cfg:        cfg,
		logger:     logger.With("sink", "beep"),
		sampleRate: beep.SampleRate(cfg.SampleRate),
		level:      1,
	}
}

// Observe registers the notification callback.
func (s *Sink) Observe(observer func(domain.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

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

// Load decodes source and prepares it paused at position zero.
func (s *Sink) Load(source string) error {
	path, err := catalog.SourcePath(s.cfg.MediaRoot, source)
	if err != nil {
		return domain.NewSinkError("load", source, err)
	}
	streamer, format, err := openSource(path)
	if err != nil {
		return domain.NewSinkError("load", source, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = streamer.Close()
		return domain.ErrSinkClosed
	}

	s.releaseLocked()

	resampled := beep.Resample(4, format.SampleRate, s.sampleRate, streamer)
	s.volume = &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   levelToVolume(s.level),
		Silent:   s.level <= 0,
	}
	s.ctrl = &beep.Ctrl{Streamer: s.volume, Paused: true}
	s.source = source
	s.streamer = streamer
	s.format = format
	s.queued = false
	s.loadSeq++
	duration := lengthSeconds(streamer, format)
	s.mu.Unlock()

	s.logger.Debug("source loaded",
		slog.String("source", source),
		slog.String("path", path),
		slog.Float64("duration", duration))
	s.notify(domain.DurationKnown{Seconds: duration})
	return nil
}

// releaseLocked stops and closes the current source. Must be called with s.mu held.
func (s *Sink) releaseLocked() {
	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Paused = true
		s.ctrl.Streamer = nil
		speaker.Unlock()
	}
	if s.streamer != nil {
		_ = s.streamer.Close()
	}
	s.streamer = nil
	s.volume = nil
	s.ctrl = nil
	s.queued = false
}

// Play starts or resumes the loaded source.
func (s *Sink) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSinkClosed
	}
	if s.streamer == nil {
		return domain.ErrNoSourceLoaded
	}

	if !s.speakerReady {
		if err := speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10)); err != nil {
			return domain.NewSinkError("play", s.source, err)
		}
		s.speakerReady = true
	}

	if !s.queued {
		seq := s.loadSeq
		speaker.Play(beep.Seq(s.ctrl, beep.Callback(func() {
			// Runs on the speaker goroutine with the speaker lock held
			go s.ended(seq)
		})))
		s.queued = true
	}

	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()

	s.startReporterLocked()
	return nil
}

// ended reports the end of the source loaded as seq, unless it was replaced.
func (s *Sink) ended(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.loadSeq || s.streamer == nil {
		s.mu.Unlock()
		return
	}
	duration := lengthSeconds(s.streamer, s.format)
	s.queued = false
	s.mu.Unlock()

	s.notify(domain.PositionUpdated{Seconds: duration}, domain.TrackEnded{})
}

// startReporterLocked starts the position reporter once. Must be called with s.mu held.
func (s *Sink) startReporterLocked() {
	if s.reporterStop != nil {
		return
	}
	stop := make(chan struct{})
	s.reporterStop = stop

	s.reporterWG.Add(1)
	go func() {
		defer s.reporterWG.Done()
		ticker := time.NewTicker(s.cfg.ReportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if pos, ok := s.playingPosition(); ok {
					s.notify(domain.PositionUpdated{Seconds: pos})
				}
			}
		}
	}()
}

func (s *Sink) playingPosition() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil || s.ctrl == nil || !s.queued {
		return 0, false
	}
	speaker.Lock()
	defer speaker.Unlock()
	if s.ctrl.Paused {
		return 0, false
	}
	return s.format.SampleRate.D(s.streamer.Position()).Seconds(), true
}

// Pause pauses playback.
func (s *Sink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSinkClosed
	}
	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

// SetCurrentTime seeks within the loaded source, clamped to its length.
func (s *Sink) SetCurrentTime(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSinkClosed
	}
	if s.streamer == nil {
		return domain.ErrNoSourceLoaded
	}

	n := s.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	n = min(max(n, 0), s.streamer.Len())

	speaker.Lock()
	err := s.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return domain.NewSinkError("seek", s.source, err)
	}
	return nil
}

// SetVolume sets the output level in [0, 1].
func (s *Sink) SetVolume(level float64) error {
	if err := validLevel(level); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSinkClosed
	}
	s.level = level
	if s.volume != nil {
		speaker.Lock()
		s.volume.Volume = levelToVolume(level)
		s.volume.Silent = level <= 0
		speaker.Unlock()
	}
	return nil
}

// Close stops playback, releases the source and shuts the speaker down.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.releaseLocked()
	if s.reporterStop != nil {
		close(s.reporterStop)
	}
	ready := s.speakerReady
	s.mu.Unlock()

	s.reporterWG.Wait()
	if ready {
		speaker.Clear()
		speaker.Close()
	}
	return nil
}

// Verify interface implementation
var _ ports.MediaSink = (*Sink)(nil)
