package catalog

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/logger"
)

// writeID3 writes a file holding only an ID3v2.3 tag with title and artist frames.
func writeID3(t *testing.T, path, title, artist string) {
	t.Helper()

	var frames bytes.Buffer
	for _, f := range []struct{ id, text string }{{"TIT2", title}, {"TPE1", artist}} {
		frames.WriteString(f.id)
		require.NoError(t, binary.Write(&frames, binary.BigEndian, uint32(len(f.text)+1)))
		frames.Write([]byte{0, 0, 0}) // flags, then ISO-8859-1 encoding
		frames.WriteString(f.text)
	}

	size := frames.Len()
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, append(header, frames.Bytes()...), 0o644))
}

func TestDefault(t *testing.T) {
	songs := Default()

	require.Len(t, songs, 12)
	for i, song := range songs {
		assert.Equal(t, domain.SongID(i+1), song.ID)
		assert.NotEmpty(t, song.Title)
		assert.NotEmpty(t, song.Artist)
	}
	assert.Equal(t, "Blue Bird", songs[2].Title)
	assert.Equal(t, "/audio/Op3.mp3", songs[2].AudioSource)
	assert.Equal(t, "/images/Op3.jpg", songs[2].CoverImage)

	// Callers get a copy
	songs[0].Title = "changed"
	assert.Equal(t, "Hero's Come Back!!", Default()[0].Title)

	c, err := Build(Default())
	require.NoError(t, err)
	assert.Equal(t, 12, c.Len())
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name  string
		song  domain.Song
		field string
	}{
		{"zero id", domain.Song{ID: 0, Title: "a", AudioSource: "/a.mp3"}, "id"},
		{"blank title", domain.Song{ID: 1, Title: " ", AudioSource: "/a.mp3"}, "title"},
		{"no source", domain.Song{ID: 1, Title: "a"}, "audio_source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]domain.Song{tt.song})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := Build(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestSourcePath(t *testing.T) {
	path, err := SourcePath("/srv/media", "/audio/Op1.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/media", "audio", "Op1.mp3"), path)

	path, err = SourcePath("/srv/media", "../../etc/passwd.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/media", "etc", "passwd.mp3"), path, "sources cannot escape the media root")

	path, err = SourcePath("", "songs/a.flac")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("songs/a.flac"), path)

	_, err = SourcePath("/srv/media", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidSource)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[songs]]
id = 2
title = "Distance"
artist = "LONG SHOT PARTY"
audio_source = "/audio/Op2.mp3"
cover_image = "/images/Op2.jpg"

[[songs]]
id = 6
title = "Sign"
audio_source = "/audio/Op6.mp3"
`), 0o644))

	songs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, domain.Song{
		ID:          2,
		Title:       "Distance",
		Artist:      "LONG SHOT PARTY",
		AudioSource: "/audio/Op2.mp3",
		CoverImage:  "/images/Op2.jpg",
	}, songs[0])
	assert.Empty(t, songs[1].Artist)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[songs]\nid = "), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[[songs]]\nid = 1\nlyrics = \"la\"\n"), 0o644))
	_, err = LoadFile(unknown)
	assert.ErrorContains(t, err, "lyrics")
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeID3(t, filepath.Join(root, "b", "02.mp3"), "Sign", "FLOW")
	writeID3(t, filepath.Join(root, "a", "01.mp3"), "Closer", "Joe Inoue")
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "untagged.flac"), []byte("not audio"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "cover.jpg"), []byte{0xff}, 0o644))

	songs, err := Scan(context.Background(), root, logger.NewTestLogger())
	require.NoError(t, err)
	require.Len(t, songs, 3)

	assert.Equal(t, domain.Song{ID: 1, Title: "Closer", Artist: "Joe Inoue", AudioSource: "/a/01.mp3"}, songs[0])
	assert.Equal(t, domain.Song{ID: 2, Title: "untagged", Artist: UnknownArtist, AudioSource: "/a/untagged.flac"}, songs[1])
	assert.Equal(t, domain.Song{ID: 3, Title: "Sign", Artist: "FLOW", AudioSource: "/b/02.mp3"}, songs[2])

	// The scan result pairs with root as media root
	path, err := SourcePath(root, songs[2].AudioSource)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestScan_Canceled(t *testing.T) {
	root := t.TempDir()
	writeID3(t, filepath.Join(root, "01.mp3"), "Diver", "NICO Touches the Walls")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, root, logger.NewTestLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnrich(t *testing.T) {
	root := t.TempDir()
	writeID3(t, filepath.Join(root, "audio", "Op8.mp3"), "Diver", "NICO Touches the Walls")

	songs := Enrich([]domain.Song{
		{ID: 8, Title: "", Artist: "", AudioSource: "/audio/Op8.mp3"},
		{ID: 9, Title: "Lovers", Artist: "", AudioSource: "/audio/missing.mp3"},
		{ID: 10, Title: "Keep", Artist: "Me", AudioSource: "/audio/Op8.mp3"},
	}, root, logger.NewTestLogger())

	assert.Equal(t, "Diver", songs[0].Title)
	assert.Equal(t, "NICO Touches the Walls", songs[0].Artist)
	assert.Equal(t, "Lovers", songs[1].Title)
	assert.Empty(t, songs[1].Artist)
	assert.Equal(t, "Keep", songs[2].Title, "complete songs are left alone")
	assert.Equal(t, "Me", songs[2].Artist)
}
