// Package domain defines events for the event-driven architecture.
// Events are published after a state transition so presenters never poll the session.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventSongChanged      EventType = "song.changed"
	EventPlaybackChanged  EventType = "playback.changed"
	EventPlaybackRejected EventType = "playback.rejected"
	EventProgress         EventType = "playback.progress"
	EventTrackEnded       EventType = "track.ended"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"

	// Library events
	EventFavoritesChanged EventType = "favorites.changed"
	EventPlaylistsChanged EventType = "playlists.changed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// SongChangedEvent is published when the current song changes.
type SongChangedEvent struct {
	baseEvent
	Song Song
}

// Type returns the event type.
func (e SongChangedEvent) Type() EventType {
	return EventSongChanged
}

// NewSongChangedEvent creates a new SongChangedEvent.
func NewSongChangedEvent(song Song) SongChangedEvent {
	return SongChangedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
	}
}

// PlaybackChangedEvent is published when the playback status changes.
type PlaybackChangedEvent struct {
	baseEvent
	Song   Song
	Status PlaybackStatus
}

// Type returns the event type.
func (e PlaybackChangedEvent) Type() EventType {
	return EventPlaybackChanged
}

// IsPlaying reports the user-visible play intent carried by the event.
func (e PlaybackChangedEvent) IsPlaying() bool {
	return e.Status == StatusLoading || e.Status == StatusPlaying
}

// NewPlaybackChangedEvent creates a new PlaybackChangedEvent.
func NewPlaybackChangedEvent(song Song, status PlaybackStatus) PlaybackChangedEvent {
	return PlaybackChangedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Status:    status,
	}
}

// PlaybackRejectedEvent is published when the sink refuses to start the current song.
type PlaybackRejectedEvent struct {
	baseEvent
	Song  Song
	Error error
}

// Type returns the event type.
func (e PlaybackRejectedEvent) Type() EventType {
	return EventPlaybackRejected
}

// NewPlaybackRejectedEvent creates a new PlaybackRejectedEvent.
func NewPlaybackRejectedEvent(song Song, err error) PlaybackRejectedEvent {
	return PlaybackRejectedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Error:     err,
	}
}

// ProgressEvent is published when the position or duration changes.
// Duration is zero while it is unknown.
type ProgressEvent struct {
	baseEvent
	Position      float64
	Duration      float64
	DurationKnown bool
}

// Type returns the event type.
func (e ProgressEvent) Type() EventType {
	return EventProgress
}

// NewProgressEvent creates a new ProgressEvent.
func NewProgressEvent(position, duration float64, known bool) ProgressEvent {
	return ProgressEvent{
		baseEvent:     newBaseEvent(),
		Position:      position,
		Duration:      duration,
		DurationKnown: known,
	}
}

// TrackEndedEvent is published when a track finishes playing naturally.
type TrackEndedEvent struct {
	baseEvent
	Song Song
}

// Type returns the event type.
func (e TrackEndedEvent) Type() EventType {
	return EventTrackEnded
}

// NewTrackEndedEvent creates a new TrackEndedEvent.
func NewTrackEndedEvent(song Song) TrackEndedEvent {
	return TrackEndedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// FavoritesChangedEvent is published when a song is added to or removed from favorites.
type FavoritesChangedEvent struct {
	baseEvent
	SongID    SongID
	Favorite  bool
	Favorites []SongID
}

// Type returns the event type.
func (e FavoritesChangedEvent) Type() EventType {
	return EventFavoritesChanged
}

// NewFavoritesChangedEvent creates a new FavoritesChangedEvent.
func NewFavoritesChangedEvent(id SongID, favorite bool, favorites []SongID) FavoritesChangedEvent {
	return FavoritesChangedEvent{
		baseEvent: newBaseEvent(),
		SongID:    id,
		Favorite:  favorite,
		Favorites: favorites,
	}
}

// PlaylistsChangedEvent is published when the playlist collection changes.
type PlaylistsChangedEvent struct {
	baseEvent
	Playlists []Playlist
}

// Type returns the event type.
func (e PlaylistsChangedEvent) Type() EventType {
	return EventPlaylistsChanged
}

// NewPlaylistsChangedEvent creates a new PlaylistsChangedEvent.
func NewPlaylistsChangedEvent(playlists []Playlist) PlaylistsChangedEvent {
	return PlaylistsChangedEvent{
		baseEvent: newBaseEvent(),
		Playlists: playlists,
	}
}
