// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/tejashwikalptaru/encore/internal/domain"
)

// KeyValueStore is the durable string-to-string storage behind the session.
// Implementations can use Fyne preferences, a database, or memory.
//
// Thread-safety: Implementations must be thread-safe.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool)

	// Set stores value under key. The last write wins.
	//
	// Returns an error if the write fails.
	Set(key, value string) error
}

// SessionRepository persists the durable part of the session.
// Each key is decoded independently: a corrupt value falls back to that key's
// default without affecting the others.
//
// Thread-safety: Implementations must be thread-safe.
type SessionRepository interface {
	// Load reads the persisted snapshot. It never fails; missing or corrupt
	// values are replaced by their defaults.
	Load() domain.Snapshot

	// SaveVolume persists the volume level.
	SaveVolume(volume float64) error

	// SaveFavorites persists the favorites set.
	SaveFavorites(ids []domain.SongID) error

	// SavePlaylists persists the whole playlist collection.
	SavePlaylists(playlists []domain.Playlist) error

	// SaveLastPlayed persists the id of the current song.
	SaveLastPlayed(id domain.SongID) error
}
