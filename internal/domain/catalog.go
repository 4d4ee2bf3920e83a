package domain

import (
	"github.com/samber/lo"
)

// Catalog is the immutable, ordered list of playable songs.
// It always holds at least one song and ids are unique.
type Catalog struct {
	songs []Song
	index map[SongID]int
}

// NewCatalog validates songs and builds a catalog from them.
// The slice is copied; later changes to it do not affect the catalog.
func NewCatalog(songs []Song) (*Catalog, error) {
	if len(songs) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		songs: append([]Song(nil), songs...),
		index: make(map[SongID]int, len(songs)),
	}
	for i, song := range c.songs {
		if _, dup := c.index[song.ID]; dup {
			return nil, NewValidationError("id", song.ID, ErrDuplicateSong.Error())
		}
		c.index[song.ID] = i
	}

	return c, nil
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	return len(c.songs)
}

// Songs returns a copy of the catalog in order.
func (c *Catalog) Songs() []Song {
	return append([]Song(nil), c.songs...)
}

// First returns the first catalog entry.
func (c *Catalog) First() Song {
	return c.songs[0]
}

// Song looks up a song by id.
func (c *Catalog) Song(id SongID) (Song, bool) {
	i, ok := c.index[id]
	if !ok {
		return Song{}, false
	}
	return c.songs[i], true
}

// Contains reports whether the id belongs to the catalog.
func (c *Catalog) Contains(id SongID) bool {
	_, ok := c.index[id]
	return ok
}

// IndexOf returns the position of id, or -1.
func (c *Catalog) IndexOf(id SongID) int {
	i, ok := c.index[id]
	if !ok {
		return -1
	}
	return i
}

// Next returns the song after id, wrapping past the end to the first entry.
// An unknown id yields the first entry.
func (c *Catalog) Next(id SongID) Song {
	return c.songs[(c.IndexOf(id)+1)%len(c.songs)]
}

// Previous returns the song before id, wrapping before the start to the last entry.
// An unknown id yields the last entry.
func (c *Catalog) Previous(id SongID) Song {
	i := c.IndexOf(id)
	if i <= 0 {
		return c.songs[len(c.songs)-1]
	}
	return c.songs[i-1]
}

// Filter returns the catalog songs, in catalog order, whose id is in ids.
func (c *Catalog) Filter(ids []SongID) []Song {
	return lo.Filter(c.songs, func(song Song, _ int) bool {
		return lo.Contains(ids, song.ID)
	})
}
