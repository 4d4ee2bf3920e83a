// Package keyvalue provides the session repository on top of any ports.KeyValueStore.
package keyvalue

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/ports"
)

// Persisted keys. The values are the compatibility contract with existing stores.
const (
	KeyVolume     = "volume"
	KeyFavorites  = "favorites"
	KeyPlaylists  = "playlists"
	KeyLastPlayed = "lastPlayedSong"
)

// SessionRepository implements ports.SessionRepository.
//
// Encodings: volume is a decimal string, favorites a JSON array of integers,
// playlists a JSON array of objects and lastPlayedSong a decimal integer.
//
// Thread-safe: All operations protected by sync.RWMutex.
type SessionRepository struct {
	store  ports.KeyValueStore
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewSessionRepository creates a repository over store.
func NewSessionRepository(store ports.KeyValueStore, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		store:  store,
		logger: logger.With("component", "session-repository"),
	}
}

// Load decodes every key independently. A missing key yields its default
// silently; a corrupt one yields its default and a warning.
func (r *SessionRepository) Load() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := domain.DefaultSnapshot()

	if raw, ok := r.store.Get(KeyVolume); ok {
		volume, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			r.corrupt(KeyVolume, raw, err)
		case math.IsNaN(volume) || volume < 0 || volume > 1:
			r.corrupt(KeyVolume, raw, domain.NewValidationError(KeyVolume, volume, "out of range [0, 1]"))
		default:
			snap.Volume = volume
		}
	}

	if raw, ok := r.store.Get(KeyFavorites); ok {
		var ids []domain.SongID
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			r.corrupt(KeyFavorites, raw, err)
		} else if ids != nil {
			snap.Favorites = ids
		}
	}

	if raw, ok := r.store.Get(KeyPlaylists); ok {
		var playlists []domain.Playlist
		if err := json.Unmarshal([]byte(raw), &playlists); err != nil {
			r.corrupt(KeyPlaylists, raw, err)
		} else if playlists != nil {
			snap.Playlists = playlists
		}
	}

	if raw, ok := r.store.Get(KeyLastPlayed); ok {
		id, err := strconv.Atoi(raw)
		if err != nil {
			r.corrupt(KeyLastPlayed, raw, err)
		} else {
			snap.LastPlayed = domain.SongID(id)
			snap.HasLastPlayed = true
		}
	}

	return snap
}

func (r *SessionRepository) corrupt(key, raw string, err error) {
	r.logger.Warn("ignoring corrupt persisted value",
		slog.String("key", key),
		slog.String("value", raw),
		slog.Any("error", err))
}

// SaveVolume persists the volume level.
func (r *SessionRepository) SaveVolume(volume float64) error {
	return r.set(KeyVolume, strconv.FormatFloat(volume, 'f', -1, 64))
}

// SaveFavorites persists the favorites set.
func (r *SessionRepository) SaveFavorites(ids []domain.SongID) error {
	if ids == nil {
		ids = []domain.SongID{}
	}
	return r.setJSON(KeyFavorites, ids)
}

// SavePlaylists persists the playlist collection.
func (r *SessionRepository) SavePlaylists(playlists []domain.Playlist) error {
	if playlists == nil {
		playlists = []domain.Playlist{}
	}
	return r.setJSON(KeyPlaylists, playlists)
}

// SaveLastPlayed persists the current song id.
func (r *SessionRepository) SaveLastPlayed(id domain.SongID) error {
	return r.set(KeyLastPlayed, strconv.Itoa(int(id)))
}

func (r *SessionRepository) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.NewRepositoryError("encode", key, "failed to marshal value", err)
	}
	return r.set(key, string(data))
}

func (r *SessionRepository) set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(key, value); err != nil {
		return domain.NewRepositoryError("set", key, "store write failed", err)
	}
	return nil
}

// Verify interface implementation
var _ ports.SessionRepository = (*SessionRepository)(nil)
