package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/encore/internal/domain"
)

// testConfig returns a config that touches neither audio hardware nor the
// user's data directory.
func testConfig(out *bytes.Buffer) Config {
	config := DefaultConfig()
	config.Store = StoreMemory
	config.Sink = SinkMock
	config.StartDelay = time.Millisecond
	config.Output = out
	config.LogOutput = &bytes.Buffer{}
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.encore.app", config.AppID)
	assert.Equal(t, "Encore", config.AppName)
	assert.Equal(t, StoreSQLite, config.Store)
	assert.Equal(t, SinkBeep, config.Sink)
	assert.Equal(t, 44100, config.SampleRate)
	assert.Equal(t, domain.DefaultStartDelay, config.StartDelay)
	assert.Equal(t, "text", config.LogFormat)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	config := DefaultConfig()
	config.Store = "redis"
	config.Sink = "alsa"
	config.LogLevel = "loud"
	config.LogFormat = "xml"
	config.SampleRate = 0
	config.StartDelay = -time.Second

	err := config.Validate()
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	for _, field := range []string{"store", "sink", "log_level", "log_format", "sample_rate", "start_delay"} {
		assert.ErrorContains(t, err, field)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "encore.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
store = "memory"
sink = "mock"
start_delay = "20ms"
log_level = "debug"
media_root = "/srv/media"
`), 0o600))

	config, err := LoadConfigFile(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, config.Store)
	assert.Equal(t, SinkMock, config.Sink)
	assert.Equal(t, 20*time.Millisecond, config.StartDelay)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "/srv/media", config.MediaRoot)
	assert.Equal(t, "Encore", config.AppName, "unset keys keep the base value")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("volume = 3\n"), 0o600))
	_, err = LoadConfigFile(bad, DefaultConfig())
	assert.ErrorContains(t, err, `unknown key "volume"`)

	_, err = LoadConfigFile(filepath.Join(dir, "missing.toml"), DefaultConfig())
	assert.Error(t, err)
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(context.Background(), testConfig(&bytes.Buffer{}))
	require.NoError(t, err)
	require.NotNil(t, app)

	// Verify the session was restored against the built-in catalog
	session := app.Session()
	require.NotNil(t, session)
	assert.Len(t, session.Songs(), 12)
	assert.Equal(t, domain.SongID(1), session.CurrentSong().ID)
	assert.Equal(t, domain.StatusStopped, session.Status())

	assert.True(t, app.EventBus().HasSubscribers(domain.EventSongChanged))

	require.NoError(t, app.Shutdown())
}

func TestNewApplication_DebugTracesEvents(t *testing.T) {
	logs := &bytes.Buffer{}
	config := testConfig(&bytes.Buffer{})
	config.LogLevel = "debug"
	config.LogOutput = logs

	app, err := NewApplication(context.Background(), config)
	require.NoError(t, err)
	app.Session().SetVolume(0.5)
	require.NoError(t, app.Shutdown())

	assert.Contains(t, logs.String(), "type=volume.changed")
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	config := testConfig(&bytes.Buffer{})
	config.Store = "redis"

	_, err := NewApplication(context.Background(), config)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestNewApplication_PreferencesStore(t *testing.T) {
	config := testConfig(&bytes.Buffer{})
	config.Store = StorePreferences
	config.TestFyneApp = test.NewApp()

	app, err := NewApplication(context.Background(), config)
	require.NoError(t, err)
	app.Session().ToggleFavorite(3)
	require.NoError(t, app.Shutdown())

	// A second application over the same preferences sees the favorite
	again, err := NewApplication(context.Background(), config)
	require.NoError(t, err)
	defer again.Shutdown()
	assert.True(t, again.Session().IsFavorite(3))
}

func TestNewApplication_SQLiteStore(t *testing.T) {
	config := testConfig(&bytes.Buffer{})
	config.Store = StoreSQLite
	config.StorePath = filepath.Join(t.TempDir(), "session.db")

	app, err := NewApplication(context.Background(), config)
	require.NoError(t, err)
	app.Session().SetVolume(0.4)
	require.NoError(t, app.Shutdown())

	again, err := NewApplication(context.Background(), config)
	require.NoError(t, err)
	defer again.Shutdown()
	assert.Equal(t, 0.4, again.Session().Volume())
}

func TestNewApplication_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[songs]]
id = 7
title = "Silhouette"
artist = "KANA-BOON"
audio_source = "/audio/Op16.mp3"
`), 0o600))

	config := testConfig(&bytes.Buffer{})
	config.CatalogPath = path

	app, err := NewApplication(context.Background(), config)
	require.NoError(t, err)
	defer app.Shutdown()

	songs := app.Session().Songs()
	require.Len(t, songs, 1)
	assert.Equal(t, "Silhouette", songs[0].Title)
	assert.Equal(t, domain.SongID(7), app.Session().CurrentSong().ID)
}

func TestNewApplication_ScanDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "album"), 0o755))
	for _, name := range []string{"album/02 Second.mp3", "album/01 First.wav", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("not audio"), 0o600))
	}

	config := testConfig(&bytes.Buffer{})
	config.ScanDir = dir
	config.CatalogPath = filepath.Join(dir, "ignored.toml")

	app, err := NewApplication(context.Background(), config)
	require.NoError(t, err)
	defer app.Shutdown()

	songs := app.Session().Songs()
	require.Len(t, songs, 2)
	assert.Equal(t, "/album/01 First.wav", songs[0].AudioSource)
}

func TestNewApplication_EmptyScanDir(t *testing.T) {
	config := testConfig(&bytes.Buffer{})
	config.ScanDir = t.TempDir()

	_, err := NewApplication(context.Background(), config)
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestApplicationRun(t *testing.T) {
	out := &bytes.Buffer{}
	app, err := NewApplication(context.Background(), testConfig(out))
	require.NoError(t, err)

	err = app.Run(context.Background(), strings.NewReader("vol 20\nfav 5\nquit\n"))
	require.NoError(t, err)
	require.NoError(t, app.Shutdown())

	assert.Contains(t, out.String(), "12 songs, type help for commands")
	assert.Contains(t, out.String(), "volume 20%")
	assert.Contains(t, out.String(), "added 5 to favorites")
}

func TestApplicationRun_Canceled(t *testing.T) {
	app, err := NewApplication(context.Background(), testConfig(&bytes.Buffer{}))
	require.NoError(t, err)
	defer app.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A blocked reader would hang here if cancellation were not honoured
	r, w := io.Pipe()
	defer w.Close()
	assert.NoError(t, app.Run(ctx, r))
}

func TestApplicationLifecycle(t *testing.T) {
	app, err := NewApplication(context.Background(), testConfig(&bytes.Buffer{}))
	require.NoError(t, err)

	// Shutdown
	assert.NoError(t, app.Shutdown())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())
}

func TestVersionInfo(t *testing.T) {
	info := VersionInfo{Version: "dev", GitCommit: "abc123", BuildTime: "today", GoVersion: "go1.25.0"}
	assert.Equal(t, "dev", info.String())
	assert.Equal(t, "Encore dev (commit: abc123, built: today, go1.25.0)", info.FullString())

	info.GitTag = "v1.2.0"
	assert.Equal(t, "v1.2.0", info.String())
	assert.Contains(t, info.FullString(), "Encore v1.2.0")

	assert.NotEmpty(t, GetVersionInfo().GoVersion)
}
