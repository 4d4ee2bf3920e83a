// Package domain contains the core business models and the session state machine.
// Nothing in this package performs I/O: sink calls and persistence writes are
// returned as Effect values and executed by the service layer.
package domain

import (
	"time"

	"github.com/samber/lo"
)

// DefaultVolume is the volume used when none has been persisted yet.
const DefaultVolume = 0.7

// SongID identifies a song inside the catalog. IDs are assigned by the catalog
// and are stable across restarts.
type SongID int

// Song is a single playable entry of the catalog.
type Song struct {
	// ID is the catalog-assigned identifier
	ID SongID `json:"id" toml:"id"`

	// Title is the song title
	Title string `json:"title" toml:"title"`

	// Artist is the performing artist name
	Artist string `json:"artist" toml:"artist"`

	// AudioSource is the URI or path the sink loads
	AudioSource string `json:"audioSource" toml:"audio_source"`

	// CoverImage is the URI of the cover artwork
	CoverImage string `json:"coverImage" toml:"cover_image"`
}

// Playlist is a user-defined, named, ordered set of songs.
type Playlist struct {
	// ID is an opaque unique identifier generated at creation
	ID string `json:"id"`

	// Name is the non-empty display name
	Name string `json:"name"`

	// Description is optional free text
	Description string `json:"description,omitempty"`

	// SongIDs is the ordered membership, without duplicates
	SongIDs []SongID `json:"songIds"`

	// CreatedAt is when the playlist was created
	CreatedAt time.Time `json:"createdAt"`
}

// Contains reports whether the playlist holds the given song.
func (p Playlist) Contains(id SongID) bool {
	return lo.Contains(p.SongIDs, id)
}

// clone returns a copy that shares no backing arrays with p.
func (p Playlist) clone() Playlist {
	p.SongIDs = append([]SongID(nil), p.SongIDs...)
	if p.SongIDs == nil {
		p.SongIDs = []SongID{}
	}
	return p
}

// PlaybackStatus represents the state of the playback state machine.
type PlaybackStatus int

const (
	// StatusStopped means nothing is playing and no play request is pending
	StatusStopped PlaybackStatus = iota

	// StatusLoading means a new source was handed to the sink and playback was requested
	StatusLoading

	// StatusPlaying means the sink accepted the play request
	StatusPlaying

	// StatusPaused means the user paused playback
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Session is the single process-wide "now playing" aggregate.
// Only CurrentSongID, Volume, Favorites and Playlists survive restarts.
type Session struct {
	// CurrentSongID always resolves to a catalog entry
	CurrentSongID SongID

	// Status is the playback state machine position
	Status PlaybackStatus

	// Position is the playback position in seconds
	Position float64

	// Duration is the track length in seconds, meaningful only when DurationKnown is set
	Duration float64

	// DurationKnown is set once the sink reported the track length
	DurationKnown bool

	// Volume is the output level in [0, 1]
	Volume float64

	// Favorites is the set of favorite song ids
	Favorites []SongID

	// Playlists is the playlist collection in creation order
	Playlists []Playlist

	// Generation increases on every load, resume and pause. Asynchronous results
	// tagged with an older generation belong to a superseded intent.
	Generation uint64
}

// IsPlaying reports the user-visible play intent: true while a play request is
// pending (Loading) or committed (Playing).
func (s Session) IsPlaying() bool {
	return s.Status == StatusLoading || s.Status == StatusPlaying
}

// IsFavorite reports whether the song is in the favorites set.
func (s Session) IsFavorite(id SongID) bool {
	return lo.Contains(s.Favorites, id)
}

// Playlist returns the playlist with the given id.
func (s Session) Playlist(id string) (Playlist, bool) {
	i := s.playlistIndex(id)
	if i < 0 {
		return Playlist{}, false
	}
	return s.Playlists[i].clone(), true
}

func (s Session) playlistIndex(id string) int {
	_, i, ok := lo.FindIndexOf(s.Playlists, func(p Playlist) bool {
		return p.ID == id
	})
	if !ok {
		return -1
	}
	return i
}

// Clone returns a deep copy so callers can read it without sharing slices
// with the manager.
func (s Session) Clone() Session {
	s.Favorites = append([]SongID{}, s.Favorites...)
	s.Playlists = lo.Map(s.Playlists, func(p Playlist, _ int) Playlist {
		return p.clone()
	})
	return s
}
