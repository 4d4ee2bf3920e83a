// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that adapters and services can return.
var (
	// ErrEmptyCatalog is returned when a catalog is built from no songs.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrDuplicateSong is returned when two catalog entries share an id.
	ErrDuplicateSong = errors.New("duplicate song id")

	// ErrSongNotFound is returned when a song id is not in the catalog.
	ErrSongNotFound = errors.New("song not found")

	// ErrPlaylistNotFound is returned when a playlist id is unknown.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrNoSourceLoaded is returned when the sink is asked to play before any load.
	ErrNoSourceLoaded = errors.New("no source loaded")

	// ErrPlaybackRejected is returned when the sink refuses to start playback.
	ErrPlaybackRejected = errors.New("playback rejected")

	// ErrInvalidSource is returned when a source is empty or cannot be resolved.
	ErrInvalidSource = errors.New("invalid audio source")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrAudioUnavailable is returned by builds without an audio backend.
	ErrAudioUnavailable = errors.New("audio output unavailable in this build")

	// ErrSinkClosed is returned when a closed sink is used.
	ErrSinkClosed = errors.New("sink closed")
)

// SinkError represents an error from a media sink.
// This wraps low-level audio library errors with additional context.
type SinkError struct {
	Op     string // Operation that failed (e.g., "load", "play", "seek")
	Source string // Audio source (if applicable)
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("sink %s failed for '%s': %v", e.Op, e.Source, e.Err)
	}
	return fmt.Sprintf("sink %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SinkError) Unwrap() error {
	return e.Err
}

// NewSinkError creates a new SinkError.
func NewSinkError(op, source string, err error) *SinkError {
	return &SinkError{
		Op:     op,
		Source: source,
		Err:    err,
	}
}

// RepositoryError represents an error from a repository or store.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "get", "set", "decode")
	Key     string // Persisted key involved
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s %q failed: %s", e.Op, e.Key, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, key, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Key:     key,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
