// Package preferences implements ports.KeyValueStore on top of Fyne preferences.
package preferences

import (
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/encore/internal/ports"
)

// KeyPrefix namespaces every key written by the store.
const KeyPrefix = "session."

// missing is handed to Fyne as the fallback so an absent key can be told apart
// from a stored empty string.
const missing = "\x00encore:missing"

// Store is a thin wrapper around fyne.Preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type Store struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// New creates a store. The preferences parameter should be obtained from
// fyne.App.Preferences().
func New(prefs fyne.Preferences) *Store {
	return &Store{prefs: prefs}
}

// Get returns the stored value and whether the key exists.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value := s.prefs.StringWithFallback(KeyPrefix+key, missing)
	if value == missing {
		return "", false
	}
	return value, true
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.SetString(KeyPrefix+key, value)
	return nil
}

// Remove deletes a key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.RemoveValue(KeyPrefix + key)
}

// Verify interface implementation
var _ ports.KeyValueStore = (*Store)(nil)
