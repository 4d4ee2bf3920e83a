package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"
	"github.com/samber/lo"
	"github.com/tejashwikalptaru/encore/internal/domain"
)

// UnknownArtist is used when neither the catalog nor the file tags name an artist.
const UnknownArtist = "Unknown Artist"

// AudioExtensions lists the file extensions picked up by Scan.
var AudioExtensions = []string{".mp3", ".flac", ".wav"}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	return lo.Contains(AudioExtensions, strings.ToLower(filepath.Ext(path)))
}

// Scan builds songs from the audio files under root. Files are ordered by
// path and numbered from 1; sources are root-relative ("/album/01.mp3") so the
// result pairs with root as the media root. Titles and artists come from the
// file tags, falling back to the file name.
func Scan(ctx context.Context, root string, logger *slog.Logger) ([]domain.Song, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Skip unreadable entries but continue scanning
			logger.Debug("skipping unreadable path", slog.String("path", path), slog.Any("error", err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsAudioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)

	songs := make([]domain.Song, 0, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		song := domain.Song{
			ID:          domain.SongID(i + 1),
			Title:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Artist:      UnknownArtist,
			AudioSource: "/" + filepath.ToSlash(rel),
		}
		songs = append(songs, applyTags(song, path, true))
	}

	logger.Info("catalog scanned", slog.String("root", root), slog.Int("songs", len(songs)))
	return songs, nil
}

// Enrich fills in missing titles and artists from the tags of local files
// under mediaRoot. Songs whose file cannot be read are returned unchanged.
func Enrich(songs []domain.Song, mediaRoot string, logger *slog.Logger) []domain.Song {
	return lo.Map(songs, func(song domain.Song, _ int) domain.Song {
		if strings.TrimSpace(song.Title) != "" && strings.TrimSpace(song.Artist) != "" {
			return song
		}
		path, err := SourcePath(mediaRoot, song.AudioSource)
		if err != nil {
			return song
		}
		enriched := applyTags(song, path, false)
		if enriched != song {
			logger.Debug("song enriched from tags", slog.Int("id", int(song.ID)), slog.String("path", path))
		}
		return enriched
	})
}

// applyTags copies the title and artist tags of the file at path into song.
// With overwrite unset, only blank fields are filled.
func applyTags(song domain.Song, path string, overwrite bool) domain.Song {
	file, err := os.Open(path)
	if err != nil {
		return song
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata == nil {
		return song
	}

	if title := strings.TrimSpace(metadata.Title()); title != "" && (overwrite || strings.TrimSpace(song.Title) == "") {
		song.Title = title
	}

	artist := strings.TrimSpace(metadata.Artist())
	if artist == "" {
		artist = strings.TrimSpace(metadata.AlbumArtist())
	}
	if artist != "" && (overwrite || strings.TrimSpace(song.Artist) == "") {
		song.Artist = artist
	}
	return song
}
