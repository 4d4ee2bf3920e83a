package domain

import (
	"math"
	"strings"

	"github.com/samber/lo"
)

// Snapshot is the persisted part of a session, as decoded by a repository.
type Snapshot struct {
	Volume        float64
	Favorites     []SongID
	Playlists     []Playlist
	LastPlayed    SongID
	HasLastPlayed bool
}

// DefaultSnapshot is what a fresh install starts from.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Volume:    DefaultVolume,
		Favorites: []SongID{},
		Playlists: []Playlist{},
	}
}

// Restore builds the initial session from a snapshot, repairing values that
// would break session invariants. Favorites and playlist members that are not
// in the catalog are kept; they are filtered when materialized.
func Restore(catalog *Catalog, snap Snapshot) Session {
	volume := snap.Volume
	if math.IsNaN(volume) || volume < 0 || volume > 1 {
		volume = DefaultVolume
	}

	current := catalog.First().ID
	if snap.HasLastPlayed && catalog.Contains(snap.LastPlayed) {
		current = snap.LastPlayed
	}

	playlists := lo.Filter(snap.Playlists, func(p Playlist, _ int) bool {
		return p.ID != "" && strings.TrimSpace(p.Name) != ""
	})
	playlists = lo.UniqBy(playlists, func(p Playlist) string {
		return p.ID
	})
	playlists = lo.Map(playlists, func(p Playlist, _ int) Playlist {
		p = p.clone()
		p.SongIDs = lo.Uniq(p.SongIDs)
		return p
	})

	return Session{
		CurrentSongID: current,
		Status:        StatusStopped,
		Volume:        volume,
		Favorites:     append([]SongID{}, lo.Uniq(snap.Favorites)...),
		Playlists:     playlists,
	}
}
