// Package catalog supplies the song list the session plays from: the built-in
// catalog, TOML catalog files, and catalogs scanned from a music folder.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tejashwikalptaru/encore/internal/domain"
)

// defaultSongs is the built-in catalog of anime openings.
var defaultSongs = []domain.Song{
	{ID: 1, Title: "Hero's Come Back!!", Artist: "nobodyknows+"},
	{ID: 2, Title: "Distance", Artist: "LONG SHOT PARTY"},
	{ID: 3, Title: "Blue Bird", Artist: "Ikimono-gakari"},
	{ID: 4, Title: "Closer", Artist: "Joe Inoue"},
	{ID: 5, Title: "Hotaru no Hikari", Artist: "Ikimono-gakari"},
	{ID: 6, Title: "Sign", Artist: "FLOW"},
	{ID: 7, Title: "Toumei Datta Sekai", Artist: "Motohiro Hata"},
	{ID: 8, Title: "Diver", Artist: "NICO Touches the Walls"},
	{ID: 9, Title: "Lovers", Artist: "7!! (Seven Oops)"},
	{ID: 10, Title: "newsong", Artist: "tacica"},
	{ID: 11, Title: "Totsugeki Rock", Artist: "THE CRO-MAGNONS"},
	{ID: 12, Title: "Moshimo", Artist: "Daisuke"},
}

// Default returns a copy of the built-in catalog. Sources follow the
// /audio/OpN.mp3 and /images/OpN.jpg layout.
func Default() []domain.Song {
	songs := make([]domain.Song, len(defaultSongs))
	for i, song := range defaultSongs {
		song.AudioSource = fmt.Sprintf("/audio/Op%d.mp3", song.ID)
		song.CoverImage = fmt.Sprintf("/images/Op%d.jpg", song.ID)
		songs[i] = song
	}
	return songs
}

// Build validates songs and returns the catalog.
func Build(songs []domain.Song) (*domain.Catalog, error) {
	for _, song := range songs {
		if err := validate(song); err != nil {
			return nil, err
		}
	}
	return domain.NewCatalog(songs)
}

func validate(song domain.Song) error {
	switch {
	case song.ID <= 0:
		return domain.NewValidationError("id", song.ID, "must be positive")
	case strings.TrimSpace(song.Title) == "":
		return domain.NewValidationError("title", song.Title, fmt.Sprintf("song %d has no title", song.ID))
	case strings.TrimSpace(song.AudioSource) == "":
		return domain.NewValidationError("audio_source", song.AudioSource, fmt.Sprintf("song %d has no audio source", song.ID))
	}
	return nil
}

// SourcePath maps a catalog source such as "/audio/Op1.mp3" to a file under
// root. The result never leaves root. An empty root leaves the source as a
// plain file path.
func SourcePath(root, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", domain.ErrInvalidSource
	}
	if root == "" {
		return filepath.FromSlash(source), nil
	}
	return filepath.Join(root, filepath.Clean("/"+filepath.FromSlash(source))), nil
}
