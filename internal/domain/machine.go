package domain

import (
	"math"
	"strings"
	"time"

	"github.com/samber/lo"
)

// DefaultStartDelay is the pause between loading a new source and asking the
// sink to play it, giving the sink time to register the source.
const DefaultStartDelay = 50 * time.Millisecond

// Machine is the session state machine. Apply is a pure function of the
// catalog, the current session and the message.
type Machine struct {
	catalog    *Catalog
	startDelay time.Duration
}

// NewMachine creates a state machine over the given catalog.
// A negative startDelay is treated as zero.
func NewMachine(catalog *Catalog, startDelay time.Duration) *Machine {
	return &Machine{
		catalog:    catalog,
		startDelay: max(startDelay, 0),
	}
}

// Catalog returns the catalog the machine operates on.
func (m *Machine) Catalog() *Catalog {
	return m.catalog
}

// Apply computes the next session and the effects needed to bring the sink
// and the store in line with it. s is not modified. Invalid input yields the
// unchanged session and no effects.
func (m *Machine) Apply(s Session, msg Message) (Session, []Effect) {
	switch msg := msg.(type) {
	case Initialize:
		return m.initialize(s)
	case PlaySong:
		return m.playSong(s, msg.SongID)
	case TogglePlay:
		return m.togglePlay(s)
	case PlayNext:
		return m.load(s, m.catalog.Next(s.CurrentSongID))
	case PlayPrevious:
		return m.load(s, m.catalog.Previous(s.CurrentSongID))
	case PlayPlaylist:
		return m.playPlaylist(s, msg.PlaylistID)
	case Seek:
		return m.seek(s, msg.Seconds)
	case SetVolume:
		return m.setVolume(s, msg.Level)
	case ToggleFavorite:
		return m.toggleFavorite(s, msg.SongID)
	case CreatePlaylist:
		return m.createPlaylist(s, msg)
	case DeletePlaylist:
		return m.deletePlaylist(s, msg.PlaylistID)
	case AddSongToPlaylist:
		if !m.catalog.Contains(msg.SongID) {
			return s, nil
		}
		return m.editPlaylist(s, msg.PlaylistID, func(p *Playlist) bool {
			if p.Contains(msg.SongID) {
				return false
			}
			p.SongIDs = append(p.SongIDs, msg.SongID)
			return true
		})
	case RemoveSongFromPlaylist:
		return m.editPlaylist(s, msg.PlaylistID, func(p *Playlist) bool {
			if !p.Contains(msg.SongID) {
				return false
			}
			p.SongIDs = lo.Without(p.SongIDs, msg.SongID)
			return true
		})
	case StartPlayback:
		if msg.Generation != s.Generation || s.Status != StatusLoading {
			return s, nil
		}
		return s, []Effect{RequestPlay{Generation: s.Generation}}
	case PlayResolved:
		return m.playResolved(s, msg)
	case PositionUpdated:
		return m.positionUpdated(s, msg.Seconds)
	case DurationKnown:
		return m.durationKnown(s, msg.Seconds)
	case TrackEnded:
		if s.Status != StatusPlaying {
			return s, nil
		}
		return m.load(s, m.catalog.Next(s.CurrentSongID))
	}
	return s, nil
}

func (m *Machine) initialize(s Session) (Session, []Effect) {
	song, ok := m.catalog.Song(s.CurrentSongID)
	if !ok {
		song = m.catalog.First()
	}

	s.CurrentSongID = song.ID
	s.Generation++
	s.Status = StatusStopped
	s.Position = 0
	s.Duration = 0
	s.DurationKnown = false

	return s, []Effect{
		LoadSource{Song: song},
		ApplyVolume{Level: s.Volume},
	}
}

func (m *Machine) playSong(s Session, id SongID) (Session, []Effect) {
	song, ok := m.catalog.Song(id)
	if !ok {
		return s, nil
	}
	if song.ID == s.CurrentSongID {
		if s.IsPlaying() {
			return s, nil
		}
		return m.resume(s)
	}
	return m.load(s, song)
}

func (m *Machine) playPlaylist(s Session, id string) (Session, []Effect) {
	p, ok := s.Playlist(id)
	if !ok {
		return s, nil
	}
	songs := m.catalog.Filter(p.SongIDs)
	if len(songs) == 0 {
		return s, nil
	}
	return m.playSong(s, songs[0].ID)
}

// load switches the session to song and starts the Loading transition.
// It always reloads, which makes next/previous on a one-song catalog replay it.
func (m *Machine) load(s Session, song Song) (Session, []Effect) {
	effects := []Effect{LoadSource{Song: song}}
	if song.ID != s.CurrentSongID {
		effects = append(effects, SaveLastPlayed{SongID: song.ID})
	}

	s.Generation++
	s.CurrentSongID = song.ID
	s.Status = StatusLoading
	s.Position = 0
	s.Duration = 0
	s.DurationKnown = false

	effects = append(effects, ScheduleStart{Generation: s.Generation, Delay: m.startDelay})
	return s, effects
}

func (m *Machine) resume(s Session) (Session, []Effect) {
	s.Generation++
	s.Status = StatusPlaying
	return s, []Effect{RequestPlay{Generation: s.Generation}}
}

func (m *Machine) togglePlay(s Session) (Session, []Effect) {
	if !s.IsPlaying() {
		return m.resume(s)
	}
	s.Generation++
	s.Status = StatusPaused
	return s, []Effect{PauseSink{}}
}

func (m *Machine) playResolved(s Session, msg PlayResolved) (Session, []Effect) {
	if msg.Generation != s.Generation {
		// A superseded start that succeeded must not leave the sink audible
		// while the session says it is not playing.
		if msg.Err == nil && !s.IsPlaying() {
			return s, []Effect{PauseSink{}}
		}
		return s, nil
	}

	if msg.Err != nil {
		if s.IsPlaying() {
			s.Status = StatusStopped
		}
		return s, nil
	}

	if s.Status == StatusLoading {
		s.Status = StatusPlaying
	}
	return s, nil
}

func (m *Machine) seek(s Session, seconds float64) (Session, []Effect) {
	if math.IsNaN(seconds) {
		return s, nil
	}
	t := math.Max(seconds, 0)
	if s.DurationKnown {
		t = math.Min(t, s.Duration)
	} else if math.IsInf(t, 1) {
		return s, nil
	}

	s.Position = t
	return s, []Effect{SeekSink{Seconds: t}}
}

func (m *Machine) setVolume(s Session, level float64) (Session, []Effect) {
	if math.IsNaN(level) {
		return s, nil
	}
	level = lo.Clamp(level, 0, 1)

	s.Volume = level
	return s, []Effect{
		ApplyVolume{Level: level},
		SaveVolume{Level: level},
	}
}

func (m *Machine) toggleFavorite(s Session, id SongID) (Session, []Effect) {
	if s.IsFavorite(id) {
		s.Favorites = lo.Without(s.Favorites, id)
	} else {
		s.Favorites = append(append([]SongID{}, s.Favorites...), id)
	}
	return s, []Effect{SaveFavorites{SongIDs: append([]SongID{}, s.Favorites...)}}
}

func (m *Machine) createPlaylist(s Session, msg CreatePlaylist) (Session, []Effect) {
	name := strings.TrimSpace(msg.Name)
	if name == "" || msg.ID == "" || s.playlistIndex(msg.ID) >= 0 {
		return s, nil
	}

	s.Playlists = append(clonePlaylists(s.Playlists), Playlist{
		ID:          msg.ID,
		Name:        name,
		Description: strings.TrimSpace(msg.Description),
		SongIDs:     []SongID{},
		CreatedAt:   msg.CreatedAt,
	})
	return s, []Effect{SavePlaylists{Playlists: clonePlaylists(s.Playlists)}}
}

func (m *Machine) deletePlaylist(s Session, id string) (Session, []Effect) {
	if s.playlistIndex(id) < 0 {
		return s, nil
	}
	s.Playlists = lo.Filter(clonePlaylists(s.Playlists), func(p Playlist, _ int) bool {
		return p.ID != id
	})
	return s, []Effect{SavePlaylists{Playlists: clonePlaylists(s.Playlists)}}
}

// editPlaylist applies edit to a copy of the playlist; edit reports whether it
// changed anything.
func (m *Machine) editPlaylist(s Session, id string, edit func(p *Playlist) bool) (Session, []Effect) {
	i := s.playlistIndex(id)
	if i < 0 {
		return s, nil
	}

	playlists := clonePlaylists(s.Playlists)
	if !edit(&playlists[i]) {
		return s, nil
	}

	s.Playlists = playlists
	return s, []Effect{SavePlaylists{Playlists: clonePlaylists(s.Playlists)}}
}

func (m *Machine) positionUpdated(s Session, seconds float64) (Session, []Effect) {
	// Reports during Loading come from the previous source.
	if s.Status == StatusLoading || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return s, nil
	}
	p := math.Max(seconds, 0)
	if s.DurationKnown {
		p = math.Min(p, s.Duration)
	}
	s.Position = p
	return s, nil
}

func (m *Machine) durationKnown(s Session, seconds float64) (Session, []Effect) {
	if math.IsNaN(seconds) || seconds < 0 {
		return s, nil
	}
	if math.IsInf(seconds, 1) {
		s.Duration = 0
		s.DurationKnown = false
		return s, nil
	}
	s.Duration = seconds
	s.DurationKnown = true
	s.Position = math.Min(s.Position, seconds)
	return s, nil
}

func clonePlaylists(playlists []Playlist) []Playlist {
	return lo.Map(playlists, func(p Playlist, _ int) Playlist {
		return p.clone()
	})
}
