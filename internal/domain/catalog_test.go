package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to build a catalog of n songs with ids 1..n
func newTestCatalog(t *testing.T, n int) *Catalog {
	t.Helper()
	songs := make([]Song, 0, n)
	for i := 1; i <= n; i++ {
		songs = append(songs, Song{
			ID:          SongID(i),
			Title:       "Song",
			Artist:      "Artist",
			AudioSource: "/audio/song.mp3",
		})
	}
	c, err := NewCatalog(songs)
	require.NoError(t, err)
	return c
}

func TestNewCatalog_Empty(t *testing.T) {
	c, err := NewCatalog(nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNewCatalog_DuplicateID(t *testing.T) {
	_, err := NewCatalog([]Song{{ID: 1}, {ID: 2}, {ID: 1}})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "id", verr.Field)
	assert.Equal(t, SongID(1), verr.Value)
}

func TestNewCatalog_CopiesInput(t *testing.T) {
	songs := []Song{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}
	c, err := NewCatalog(songs)
	require.NoError(t, err)

	songs[0].Title = "changed"
	got, ok := c.Song(1)
	require.True(t, ok)
	assert.Equal(t, "a", got.Title)

	out := c.Songs()
	out[1].Title = "changed"
	got, _ = c.Song(2)
	assert.Equal(t, "b", got.Title)
}

func TestCatalog_Lookup(t *testing.T) {
	c := newTestCatalog(t, 3)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, SongID(1), c.First().ID)
	assert.True(t, c.Contains(2))
	assert.False(t, c.Contains(99))
	assert.Equal(t, 2, c.IndexOf(3))
	assert.Equal(t, -1, c.IndexOf(99))

	_, ok := c.Song(99)
	assert.False(t, ok)
}

func TestCatalog_NextWraps(t *testing.T) {
	c := newTestCatalog(t, 3)

	assert.Equal(t, SongID(2), c.Next(1).ID)
	assert.Equal(t, SongID(3), c.Next(2).ID)
	assert.Equal(t, SongID(1), c.Next(3).ID, "next of last should wrap to first")
	assert.Equal(t, SongID(1), c.Next(99).ID, "unknown id should yield first")
}

func TestCatalog_PreviousWraps(t *testing.T) {
	c := newTestCatalog(t, 3)

	assert.Equal(t, SongID(3), c.Previous(1).ID, "previous of first should wrap to last")
	assert.Equal(t, SongID(1), c.Previous(2).ID)
	assert.Equal(t, SongID(2), c.Previous(3).ID)
	assert.Equal(t, SongID(3), c.Previous(99).ID)
}

func TestCatalog_Singleton(t *testing.T) {
	c := newTestCatalog(t, 1)

	assert.Equal(t, SongID(1), c.Next(1).ID)
	assert.Equal(t, SongID(1), c.Previous(1).ID)
}

func TestCatalog_FilterUsesCatalogOrder(t *testing.T) {
	c := newTestCatalog(t, 5)

	songs := c.Filter([]SongID{5, 1, 42, 3})
	require.Len(t, songs, 3)
	assert.Equal(t, []SongID{1, 3, 5}, []SongID{songs[0].ID, songs[1].ID, songs[2].ID})

	assert.Empty(t, c.Filter(nil))
}
