package catalog

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/tejashwikalptaru/encore/internal/domain"
)

// catalogFile is the TOML layout:
//
//	[[songs]]
//	id = 1
//	title = "Blue Bird"
//	artist = "Ikimono-gakari"
//	audio_source = "/audio/Op3.mp3"
//	cover_image = "/images/Op3.jpg"
type catalogFile struct {
	Songs []domain.Song `toml:"songs"`
}

// LoadFile reads songs from a TOML catalog file. Songs are returned in file
// order and are not validated; pass them to Build.
func LoadFile(path string) ([]domain.Song, error) {
	var f catalogFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("catalog file %s: unknown key %q", path, undecoded[0].String())
	}
	return f.Songs, nil
}
