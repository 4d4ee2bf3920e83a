package domain

import "time"

// Effect is a side effect requested by the state machine. The service layer
// executes effects in the order they are returned.
type Effect interface {
	effect()
}

// LoadSource hands a new source to the sink.
type LoadSource struct {
	Song Song
}

// ScheduleStart asks the driver to dispatch StartPlayback after Delay.
type ScheduleStart struct {
	Generation uint64
	Delay      time.Duration
}

// RequestPlay asks the sink to start playing and report the outcome as PlayResolved.
type RequestPlay struct {
	Generation uint64
}

// PauseSink pauses the sink.
type PauseSink struct{}

// SeekSink moves the sink's playback position.
type SeekSink struct {
	Seconds float64
}

// ApplyVolume sets the sink's output level.
type ApplyVolume struct {
	Level float64
}

// SaveVolume persists the volume.
type SaveVolume struct {
	Level float64
}

// SaveFavorites persists the favorites set.
type SaveFavorites struct {
	SongIDs []SongID
}

// SavePlaylists persists the playlist collection.
type SavePlaylists struct {
	Playlists []Playlist
}

// SaveLastPlayed persists the current song id.
type SaveLastPlayed struct {
	SongID SongID
}

func (LoadSource) effect()     {}
func (ScheduleStart) effect()  {}
func (RequestPlay) effect()    {}
func (PauseSink) effect()      {}
func (SeekSink) effect()       {}
func (ApplyVolume) effect()    {}
func (SaveVolume) effect()     {}
func (SaveFavorites) effect()  {}
func (SavePlaylists) effect()  {}
func (SaveLastPlayed) effect() {}
