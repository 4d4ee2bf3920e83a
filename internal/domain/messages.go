package domain

import "time"

// Message is an input to the session state machine. User intents and sink
// notifications are both messages, so every state change goes through Apply.
type Message interface {
	message()
}

// Initialize hands the restored current song and volume to the sink.
type Initialize struct{}

// PlaySong selects a song and requests playback.
type PlaySong struct {
	SongID SongID
}

// TogglePlay flips between playing and paused.
type TogglePlay struct{}

// PlayNext advances circularly through the catalog.
type PlayNext struct{}

// PlayPrevious retreats circularly through the catalog.
type PlayPrevious struct{}

// PlayPlaylist plays the first available song of a playlist.
type PlayPlaylist struct {
	PlaylistID string
}

// Seek moves the playback position.
type Seek struct {
	Seconds float64
}

// SetVolume changes the output level.
type SetVolume struct {
	Level float64
}

// ToggleFavorite adds or removes a song from the favorites set.
type ToggleFavorite struct {
	SongID SongID
}

// CreatePlaylist appends a new playlist. ID and CreatedAt are supplied by the
// caller so that the machine stays deterministic.
type CreatePlaylist struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// DeletePlaylist removes a playlist.
type DeletePlaylist struct {
	PlaylistID string
}

// AddSongToPlaylist appends a song to a playlist.
type AddSongToPlaylist struct {
	PlaylistID string
	SongID     SongID
}

// RemoveSongFromPlaylist removes a song from a playlist.
type RemoveSongFromPlaylist struct {
	PlaylistID string
	SongID     SongID
}

// StartPlayback fires once the post-load delay of a ScheduleStart has elapsed.
type StartPlayback struct {
	Generation uint64
}

// PlayResolved reports the outcome of a RequestPlay effect.
type PlayResolved struct {
	Generation uint64
	Err        error
}

// PositionUpdated is the sink's periodic position report.
type PositionUpdated struct {
	Seconds float64
}

// DurationKnown is reported once the sink knows the track length.
type DurationKnown struct {
	Seconds float64
}

// TrackEnded is reported when the sink reaches the end of the source.
type TrackEnded struct{}

func (Initialize) message()             {}
func (PlaySong) message()               {}
func (TogglePlay) message()             {}
func (PlayNext) message()               {}
func (PlayPrevious) message()           {}
func (PlayPlaylist) message()           {}
func (Seek) message()                   {}
func (SetVolume) message()              {}
func (ToggleFavorite) message()         {}
func (CreatePlaylist) message()         {}
func (DeletePlaylist) message()         {}
func (AddSongToPlaylist) message()      {}
func (RemoveSongFromPlaylist) message() {}
func (StartPlayback) message()          {}
func (PlayResolved) message()           {}
func (PositionUpdated) message()        {}
func (DurationKnown) message()          {}
func (TrackEnded) message()             {}
