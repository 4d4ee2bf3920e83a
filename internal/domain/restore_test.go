package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_Defaults(t *testing.T) {
	c := newTestCatalog(t, 3)

	s := Restore(c, DefaultSnapshot())

	assert.Equal(t, SongID(1), s.CurrentSongID)
	assert.Equal(t, DefaultVolume, s.Volume)
	assert.Equal(t, StatusStopped, s.Status)
	assert.NotNil(t, s.Favorites)
	assert.Empty(t, s.Favorites)
	assert.NotNil(t, s.Playlists)
	assert.Empty(t, s.Playlists)
}

func TestRestore_LastPlayed(t *testing.T) {
	c := newTestCatalog(t, 3)

	s := Restore(c, Snapshot{Volume: 0.5, LastPlayed: 3, HasLastPlayed: true})
	assert.Equal(t, SongID(3), s.CurrentSongID)

	s = Restore(c, Snapshot{Volume: 0.5, LastPlayed: 42, HasLastPlayed: true})
	assert.Equal(t, SongID(1), s.CurrentSongID, "unknown last played falls back to first")
}

func TestRestore_InvalidVolume(t *testing.T) {
	c := newTestCatalog(t, 1)

	for _, v := range []float64{-0.1, 1.5, math.NaN(), math.Inf(1)} {
		s := Restore(c, Snapshot{Volume: v})
		assert.Equal(t, DefaultVolume, s.Volume, "volume %v", v)
	}

	s := Restore(c, Snapshot{Volume: 0})
	assert.Zero(t, s.Volume)
}

func TestRestore_DuplicateFavoritesThenToggle(t *testing.T) {
	c := newTestCatalog(t, 3)
	m := NewMachine(c, DefaultStartDelay)

	s := Restore(c, Snapshot{Volume: 0.7, Favorites: []SongID{1, 2, 2, 3}})
	assert.Equal(t, []SongID{1, 2, 3}, s.Favorites)

	s, _ = m.Apply(s, ToggleFavorite{SongID: 2})
	assert.Equal(t, []SongID{1, 3}, s.Favorites)
}

func TestRestore_KeepsFavoritesOutsideCatalog(t *testing.T) {
	c := newTestCatalog(t, 2)

	s := Restore(c, Snapshot{Volume: 0.7, Favorites: []SongID{7, 1}})
	assert.Equal(t, []SongID{7, 1}, s.Favorites)
}

func TestRestore_RepairsPlaylists(t *testing.T) {
	c := newTestCatalog(t, 3)

	s := Restore(c, Snapshot{
		Volume: 0.7,
		Playlists: []Playlist{
			{ID: "a", Name: "A", SongIDs: []SongID{1, 1, 2}},
			{ID: "", Name: "no id"},
			{ID: "b", Name: "  "},
			{ID: "a", Name: "duplicate"},
			{ID: "c", Name: "C"},
		},
	})

	require.Len(t, s.Playlists, 2)
	assert.Equal(t, "a", s.Playlists[0].ID)
	assert.Equal(t, "A", s.Playlists[0].Name)
	assert.Equal(t, []SongID{1, 2}, s.Playlists[0].SongIDs)
	assert.Equal(t, "c", s.Playlists[1].ID)
	assert.NotNil(t, s.Playlists[1].SongIDs)
}
