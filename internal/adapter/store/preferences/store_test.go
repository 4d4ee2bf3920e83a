package preferences

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a store over an in-memory Fyne app
func newTestStore(t *testing.T) *Store {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	return New(app.Preferences())
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	value, ok := store.Get("volume")
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("volume", "0.35"))
	value, ok := store.Get("volume")
	require.True(t, ok)
	assert.Equal(t, "0.35", value)

	// Last write wins
	require.NoError(t, store.Set("volume", "1"))
	value, _ = store.Get("volume")
	assert.Equal(t, "1", value)
}

func TestStore_EmptyValueIsPresent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("favorites", ""))
	value, ok := store.Get("favorites")
	assert.True(t, ok)
	assert.Empty(t, value)
}

func TestStore_KeysAreNamespaced(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	store := New(app.Preferences())

	require.NoError(t, store.Set("lastPlayedSong", "4"))
	assert.Equal(t, "4", app.Preferences().String(KeyPrefix+"lastPlayedSong"))
	assert.Empty(t, app.Preferences().String("lastPlayedSong"))
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("playlists", "[]"))
	store.Remove("playlists")
	_, ok := store.Get("playlists")
	assert.False(t, ok)

	// Removing again is harmless
	store.Remove("playlists")
}
