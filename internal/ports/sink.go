// Package ports define the media sink interface for audio playback abstraction.
package ports

import (
	"context"

	"github.com/tejashwikalptaru/encore/internal/domain"
)

// MediaSink is the single playable handle of the process.
// Switching songs reuses the same sink by loading a new source.
//
// Sinks report what happens to the loaded source through the observer as
// domain messages (PositionUpdated, DurationKnown, TrackEnded). The observer
// must never be called while the sink holds its own locks, because it feeds
// straight back into the session manager.
//
// Thread-safety: Implementations must be thread-safe.
type MediaSink interface {
	// Load replaces the current source. Playback is stopped and the position
	// is reset to zero.
	//
	// Returns an error if the source cannot be opened or decoded.
	Load(source string) error

	// Play starts playback of the loaded source and blocks until the sink has
	// accepted or rejected the request, or ctx is done.
	//
	// Returns domain.ErrNoSourceLoaded if nothing is loaded, or the reason the
	// request was rejected.
	Play(ctx context.Context) error

	// Pause pauses playback. Pausing a paused sink is a no-op.
	Pause() error

	// SetCurrentTime moves the playback position in seconds.
	SetCurrentTime(seconds float64) error

	// SetVolume sets the output level in [0, 1].
	SetVolume(level float64) error

	// Observe registers the callback that receives sink notifications.
	// Only one observer is kept; a nil observer disables notifications.
	Observe(observer func(domain.Message))

	// Close releases all audio resources. After Close, every other method
	// returns domain.ErrSinkClosed.
	Close() error
}
