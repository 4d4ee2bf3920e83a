// Package service provides the session driver for the Encore application.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/ports"
)

// SessionConfig tunes the session driver. Zero values select the defaults.
type SessionConfig struct {
	// StartDelay is the pause between loading a source and requesting playback
	StartDelay time.Duration

	// Now stamps new playlists
	Now func() time.Time

	// NewID generates playlist ids
	NewID func() string
}

// DefaultSessionConfig returns the production session settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		StartDelay: domain.DefaultStartDelay,
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
}

// SessionService owns the process-wide playback session.
//
// Every user intent and every sink report is a domain.Message. Dispatch
// applies a message through domain.Machine under the lock, so the new state is
// visible to the caller as soon as Dispatch returns, whoever else is busy.
// The resulting effects and events are queued in message order and run
// outside the lock by a single runner, so sink callbacks and event handlers
// may call back into the service. Operations never return errors: sink and
// repository failures are logged and the session stays valid.
type SessionService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	machine *domain.Machine
	sink    ports.MediaSink
	repo    ports.SessionRepository
	bus     ports.EventBus
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	state   domain.Session
	pending []transition
	running bool
	closed  bool
	timer   *time.Timer

	// In-flight play requests
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	inflight int
}

// transition is one applied message whose effects and events are not yet out.
type transition struct {
	prev    domain.Session
	next    domain.Session
	msg     domain.Message
	effects []domain.Effect
}

// NewSessionService restores the persisted session, attaches to the sink and
// hands it the current song and volume. Playback does not start on its own.
func NewSessionService(
	logger *slog.Logger,
	catalog *domain.Catalog,
	sink ports.MediaSink,
	repo ports.SessionRepository,
	bus ports.EventBus,
	cfg SessionConfig,
) *SessionService {
	defaults := DefaultSessionConfig()
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = defaults.StartDelay
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = defaults.NewID
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SessionService{
		logger:  logger.With(slog.String("service", "session")),
		machine: domain.NewMachine(catalog, cfg.StartDelay),
		sink:    sink,
		repo:    repo,
		bus:     bus,
		now:     cfg.Now,
		newID:   cfg.NewID,
		state:   domain.Restore(catalog, repo.Load()),
		ctx:     ctx,
		cancel:  cancel,
	}

	s.logger.Debug("session restored",
		slog.Int("song", int(s.state.CurrentSongID)),
		slog.Float64("volume", s.state.Volume),
		slog.Int("favorites", len(s.state.Favorites)),
		slog.Int("playlists", len(s.state.Playlists)))

	sink.Observe(s.Dispatch)
	s.Dispatch(domain.Initialize{})
	return s
}

// Dispatch applies a message and queues its effects and events. If no other
// caller is running effects, the queue is worked off before Dispatch returns;
// otherwise the current runner picks them up. Messages dispatched after
// Shutdown are dropped.
func (s *SessionService) Dispatch(msg domain.Message) {
	s.apply(msg)
}

// apply is Dispatch returning the state right after msg was applied.
func (s *SessionService) apply(msg domain.Message) (domain.Session, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Session{}, false
	}

	prev := s.state
	next, effects := s.machine.Apply(prev, msg)
	s.state = next
	s.pending = append(s.pending, transition{prev: prev, next: next, msg: msg, effects: effects})

	if s.running {
		s.mu.Unlock()
		return next, true
	}
	s.running = true
	s.mu.Unlock()

	s.drain()
	return next, true
}

// drain runs queued transitions in order until the queue is empty.
func (s *SessionService) drain() {
	for {
		s.mu.Lock()
		if s.closed || len(s.pending) == 0 {
			s.pending = nil
			s.running = false
			s.mu.Unlock()
			return
		}
		t := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.run(t.effects)
		s.publish(t.prev, t.next, t.msg, t.effects)
	}
}

// idle reports whether every queued effect and event has been handled.
func (s *SessionService) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running && len(s.pending) == 0
}

// settled reports whether the service is idle and no play request is in flight.
func (s *SessionService) settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running && len(s.pending) == 0 && s.inflight == 0
}

// run executes effects in order.
func (s *SessionService) run(effects []domain.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case domain.LoadSource:
			if err := s.sink.Load(e.Song.AudioSource); err != nil {
				s.logger.Warn("failed to load source",
					slog.Int("song", int(e.Song.ID)),
					slog.String("source", e.Song.AudioSource),
					slog.Any("error", err))
			}
		case domain.ScheduleStart:
			s.scheduleStart(e)
		case domain.RequestPlay:
			s.requestPlay(e.Generation)
		case domain.PauseSink:
			s.sinkCall("pause", s.sink.Pause())
		case domain.SeekSink:
			s.sinkCall("seek", s.sink.SetCurrentTime(e.Seconds))
		case domain.ApplyVolume:
			s.sinkCall("set volume", s.sink.SetVolume(e.Level))
		case domain.SaveVolume:
			s.saved("volume", s.repo.SaveVolume(e.Level))
		case domain.SaveFavorites:
			s.saved("favorites", s.repo.SaveFavorites(e.SongIDs))
		case domain.SavePlaylists:
			s.saved("playlists", s.repo.SavePlaylists(e.Playlists))
		case domain.SaveLastPlayed:
			s.saved("last played", s.repo.SaveLastPlayed(e.SongID))
		default:
			s.logger.Error("unknown effect", slog.String("type", fmt.Sprintf("%T", effect)))
		}
	}
}

// scheduleStart arms the start timer, replacing any earlier one.
func (s *SessionService) scheduleStart(e domain.ScheduleStart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(e.Delay, func() {
		s.Dispatch(domain.StartPlayback{Generation: e.Generation})
	})
}

// requestPlay asks the sink to play on a tracked goroutine and reports the
// outcome as PlayResolved.
func (s *SessionService) requestPlay(generation uint64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.inflight++
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		err := s.sink.Play(s.ctx)
		s.Dispatch(domain.PlayResolved{Generation: generation, Err: err})

		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()
}

func (s *SessionService) sinkCall(op string, err error) {
	if err != nil {
		s.logger.Warn("sink call failed", slog.String("op", op), slog.Any("error", err))
	}
}

func (s *SessionService) saved(what string, err error) {
	if err != nil {
		s.logger.Warn("failed to persist session", slog.String("value", what), slog.Any("error", err))
	}
}

// publish announces what changed between prev and next.
func (s *SessionService) publish(prev, next domain.Session, msg domain.Message, effects []domain.Effect) {
	song, _ := s.machine.Catalog().Song(next.CurrentSongID)

	if prev.CurrentSongID != next.CurrentSongID {
		s.logger.Info("song changed", slog.Int("song", int(song.ID)), slog.String("title", song.Title))
		s.bus.Publish(domain.NewSongChangedEvent(song))
	}

	if prev.Status != next.Status {
		s.logger.Debug("playback status changed",
			slog.String("from", prev.Status.String()),
			slog.String("to", next.Status.String()))
		s.bus.Publish(domain.NewPlaybackChangedEvent(song, next.Status))
	}

	switch m := msg.(type) {
	case domain.PlayResolved:
		if m.Err != nil && m.Generation == prev.Generation {
			s.logger.Warn("playback rejected", slog.Int("song", int(song.ID)), slog.Any("error", m.Err))
			s.bus.Publish(domain.NewPlaybackRejectedEvent(song, m.Err))
		}
	case domain.TrackEnded:
		if prev.Status == domain.StatusPlaying {
			ended, _ := s.machine.Catalog().Song(prev.CurrentSongID)
			s.bus.Publish(domain.NewTrackEndedEvent(ended))
		}
	case domain.ToggleFavorite:
		s.bus.Publish(domain.NewFavoritesChangedEvent(m.SongID, next.IsFavorite(m.SongID), append([]domain.SongID{}, next.Favorites...)))
	}

	if prev.Volume != next.Volume {
		s.bus.Publish(domain.NewVolumeChangedEvent(next.Volume))
	}

	for _, effect := range effects {
		if e, ok := effect.(domain.SavePlaylists); ok {
			s.bus.Publish(domain.NewPlaylistsChangedEvent(e.Playlists))
		}
	}

	progressed := prev.Position != next.Position ||
		prev.Duration != next.Duration ||
		prev.DurationKnown != next.DurationKnown
	if progressed && s.bus.HasSubscribers(domain.EventProgress) {
		s.bus.Publish(domain.NewProgressEvent(next.Position, next.Duration, next.DurationKnown))
	}
}

// PlaySong plays the song with the given id, or resumes it if it is current.
func (s *SessionService) PlaySong(id domain.SongID) {
	s.Dispatch(domain.PlaySong{SongID: id})
}

// TogglePlay pauses a playing session and resumes a paused or stopped one.
func (s *SessionService) TogglePlay() {
	s.Dispatch(domain.TogglePlay{})
}

// PlayNext plays the next catalog song, wrapping around at the end.
func (s *SessionService) PlayNext() {
	s.Dispatch(domain.PlayNext{})
}

// PlayPrevious plays the previous catalog song, wrapping around at the start.
func (s *SessionService) PlayPrevious() {
	s.Dispatch(domain.PlayPrevious{})
}

// PlayPlaylist plays the first catalog song of a playlist.
func (s *SessionService) PlayPlaylist(id string) {
	s.Dispatch(domain.PlayPlaylist{PlaylistID: id})
}

// Seek moves the playback position to seconds.
func (s *SessionService) Seek(seconds float64) {
	s.Dispatch(domain.Seek{Seconds: seconds})
}

// SeekFraction seeks to a fraction in [0, 1] of the track. It does nothing
// until the duration is known.
func (s *SessionService) SeekFraction(fraction float64) {
	duration, known := s.Duration()
	if !known || math.IsNaN(fraction) {
		return
	}
	s.Seek(fraction * duration)
}

// SetVolume sets the output level, clamped to [0, 1].
func (s *SessionService) SetVolume(level float64) {
	s.Dispatch(domain.SetVolume{Level: level})
}

// ToggleFavorite adds or removes a song from the favorites.
func (s *SessionService) ToggleFavorite(id domain.SongID) {
	s.Dispatch(domain.ToggleFavorite{SongID: id})
}

// CreatePlaylist creates an empty playlist and returns its id. A blank name
// creates nothing and returns "".
func (s *SessionService) CreatePlaylist(name, description string) string {
	msg := domain.CreatePlaylist{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}
	next, ok := s.apply(msg)
	if !ok {
		return ""
	}
	if _, created := next.Playlist(msg.ID); !created {
		return ""
	}
	return msg.ID
}

// DeletePlaylist removes a playlist.
func (s *SessionService) DeletePlaylist(id string) {
	s.Dispatch(domain.DeletePlaylist{PlaylistID: id})
}

// AddSongToPlaylist appends a catalog song to a playlist.
func (s *SessionService) AddSongToPlaylist(playlistID string, songID domain.SongID) {
	s.Dispatch(domain.AddSongToPlaylist{PlaylistID: playlistID, SongID: songID})
}

// RemoveSongFromPlaylist removes a song from a playlist.
func (s *SessionService) RemoveSongFromPlaylist(playlistID string, songID domain.SongID) {
	s.Dispatch(domain.RemoveSongFromPlaylist{PlaylistID: playlistID, SongID: songID})
}

// Snapshot returns a copy of the session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Songs returns the catalog in order.
func (s *SessionService) Songs() []domain.Song {
	return s.machine.Catalog().Songs()
}

// CurrentSong returns the current song.
func (s *SessionService) CurrentSong() domain.Song {
	s.mu.Lock()
	id := s.state.CurrentSongID
	s.mu.Unlock()

	song, _ := s.machine.Catalog().Song(id)
	return song
}

// Status returns the playback status.
func (s *SessionService) Status() domain.PlaybackStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status
}

// IsPlaying reports whether playback is requested or running.
func (s *SessionService) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsPlaying()
}

// CurrentTime returns the playback position in seconds.
func (s *SessionService) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Position
}

// Duration returns the track length and whether the sink has reported it.
func (s *SessionService) Duration() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Duration, s.state.DurationKnown
}

// Volume returns the output level.
func (s *SessionService) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Volume
}

// IsFavorite reports whether a song is a favorite.
func (s *SessionService) IsFavorite(id domain.SongID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsFavorite(id)
}

// Favorites returns the favorite ids, including ids missing from the catalog.
func (s *SessionService) Favorites() []domain.SongID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SongID{}, s.state.Favorites...)
}

// FavoriteSongs returns the favorite songs in catalog order.
func (s *SessionService) FavoriteSongs() []domain.Song {
	return s.machine.Catalog().Filter(s.Favorites())
}

// Playlists returns the playlists in creation order.
func (s *SessionService) Playlists() []domain.Playlist {
	return s.Snapshot().Playlists
}

// Playlist returns the playlist with the given id.
func (s *SessionService) Playlist(id string) (domain.Playlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Playlist(id)
}

// PlaylistSongs returns the songs of a playlist in catalog order, skipping
// ids that are not in the catalog. An unknown playlist yields no songs.
func (s *SessionService) PlaylistSongs(id string) []domain.Song {
	p, ok := s.Playlist(id)
	if !ok {
		return []domain.Song{}
	}
	return s.machine.Catalog().Filter(p.SongIDs)
}

// Shutdown stops pending starts, cancels in-flight play requests, waits for
// them and closes the sink. Further calls are no-ops.
func (s *SessionService) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.sink.Observe(nil)
	if err := s.sink.Close(); err != nil {
		return fmt.Errorf("failed to close sink: %w", err)
	}

	s.logger.Debug("session shut down")
	return nil
}

// FormatTime renders seconds as m:ss. Negative and non-finite values render
// as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
