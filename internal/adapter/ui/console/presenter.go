// Package console provides a line-oriented UI adapter for the session.
// Commands read from a terminal are translated into session intents, and
// session events are printed as they happen.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/ports"
	"github.com/tejashwikalptaru/encore/internal/service"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// errUsage marks malformed commands; the message is the usage line.
type errUsage string

func (e errUsage) Error() string { return "usage: " + string(e) }

// Presenter maps console commands to session operations and session events to
// console output.
//
// Thread-safety: output is serialized, so events published from sink
// goroutines never interleave with command output.
type Presenter struct {
	// Dependencies
	logger  *slog.Logger
	session *service.SessionService
	bus     ports.FilteringEventBus

	outMu sync.Mutex
	out   io.Writer

	subscriptions []domain.SubscriptionID
	shutdownOnce  sync.Once
}

// NewPresenter creates a presenter writing to out and subscribes it to the bus.
func NewPresenter(logger *slog.Logger, session *service.SessionService, bus ports.FilteringEventBus, out io.Writer) *Presenter {
	p := &Presenter{
		logger:  logger.With(slog.String("component", "console")),
		session: session,
		bus:     bus,
		out:     out,
	}

	p.subscribeToEvents()
	return p
}

// subscribeToEvents subscribes to the events the console reports.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		domain.EventSongChanged:      p.onSongChanged,
		domain.EventPlaybackRejected: p.onPlaybackRejected,
		domain.EventVolumeChanged:    p.onVolumeChanged,
		domain.EventFavoritesChanged: p.onFavoritesChanged,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.bus.Subscribe(eventType, handler))
	}

	// Loading is already announced by the song line
	settled := func(event domain.Event) bool {
		e, ok := event.(domain.PlaybackChangedEvent)
		return ok && e.Status != domain.StatusLoading
	}
	p.subscriptions = append(p.subscriptions,
		p.bus.SubscribeFiltered(domain.EventPlaybackChanged, settled, p.onPlaybackChanged))
}

func (p *Presenter) printf(format string, args ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Event handlers

func (p *Presenter) onSongChanged(event domain.Event) {
	e, ok := event.(domain.SongChangedEvent)
	if !ok {
		return
	}
	p.printf("now: %s\n", songLine(e.Song))
}

func (p *Presenter) onPlaybackChanged(event domain.Event) {
	e, ok := event.(domain.PlaybackChangedEvent)
	if !ok {
		return
	}
	p.printf("[%s] %s\n", e.Status, e.Song.Title)
}

func (p *Presenter) onPlaybackRejected(event domain.Event) {
	e, ok := event.(domain.PlaybackRejectedEvent)
	if !ok {
		return
	}
	p.printf("cannot play %s: %v\n", e.Song.Title, e.Error)
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	p.printf("volume %d%%\n", int(e.Volume*100+0.5))
}

func (p *Presenter) onFavoritesChanged(event domain.Event) {
	e, ok := event.(domain.FavoritesChangedEvent)
	if !ok {
		return
	}
	if e.Favorite {
		p.printf("added %d to favorites\n", e.SongID)
		return
	}
	p.printf("removed %d from favorites\n", e.SongID)
}

// Execute runs one command line. Empty lines are ignored. It returns ErrQuit
// for quit and a usage error for malformed commands; all other outcomes are
// printed.
func (p *Presenter) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	p.logger.Debug("command", slog.String("cmd", cmd), slog.Any("args", args))

	switch cmd {
	case "help", "?":
		p.printf("%s", helpText)
	case "list", "ls":
		p.printSongs(p.session.Songs())
	case "play":
		return p.onPlay(args)
	case "toggle", "pause", "p":
		p.session.TogglePlay()
	case "next", "n":
		p.session.PlayNext()
	case "prev", "previous":
		p.session.PlayPrevious()
	case "seek":
		return p.onSeek(args)
	case "vol", "volume":
		return p.onVolume(args)
	case "fav":
		return p.onFavorite(args)
	case "favs", "favorites":
		p.printSongs(p.session.FavoriteSongs())
	case "pl", "playlist":
		return p.onPlaylist(args)
	case "status", "st":
		p.printStatus()
	case "quit", "exit", "q":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

const helpText = `commands:
  list                    show the catalog
  play [id]               play a song, or resume the current one
  toggle                  pause or resume
  next | prev             skip forward or back
  seek <s|m:ss|n%>        move the playback position
  vol [0-100]             show or set the volume
  fav [id]                toggle a favorite (default: current song)
  favs                    list favorite songs
  pl ls                   list playlists
  pl new <name>[|desc]    create a playlist
  pl rm <pl>              delete a playlist
  pl show <pl>            list the songs of a playlist
  pl add <pl> <id>        add a song to a playlist
  pl del <pl> <id>        remove a song from a playlist
  pl play <pl>            play a playlist
  status                  show what is playing
  quit
playlists are referenced by number (see pl ls) or id prefix
`

func (p *Presenter) onPlay(args []string) error {
	if len(args) == 0 {
		p.session.PlaySong(p.session.CurrentSong().ID)
		return nil
	}
	id, err := parseSongID(args[0])
	if err != nil {
		return errUsage("play [id]")
	}
	p.session.PlaySong(id)
	return nil
}

func (p *Presenter) onSeek(args []string) error {
	if len(args) != 1 {
		return errUsage("seek <seconds|m:ss|percent%>")
	}
	arg := args[0]

	if pct, ok := strings.CutSuffix(arg, "%"); ok {
		f, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return errUsage("seek <seconds|m:ss|percent%>")
		}
		p.session.SeekFraction(f / 100)
		return nil
	}

	seconds, err := parseTime(arg)
	if err != nil {
		return errUsage("seek <seconds|m:ss|percent%>")
	}
	p.session.Seek(seconds)
	return nil
}

func (p *Presenter) onVolume(args []string) error {
	if len(args) == 0 {
		p.printf("volume %d%%\n", int(p.session.Volume()*100+0.5))
		return nil
	}
	level, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
	if err != nil {
		return errUsage("vol [0-100]")
	}
	p.session.SetVolume(level / 100)
	return nil
}

func (p *Presenter) onFavorite(args []string) error {
	id := p.session.CurrentSong().ID
	if len(args) > 0 {
		parsed, err := parseSongID(args[0])
		if err != nil {
			return errUsage("fav [id]")
		}
		id = parsed
	}
	p.session.ToggleFavorite(id)
	return nil
}

func (p *Presenter) onPlaylist(args []string) error {
	if len(args) == 0 {
		args = []string{"ls"}
	}
	sub, rest := strings.ToLower(args[0]), args[1:]

	switch sub {
	case "ls", "list":
		p.printPlaylists()
		return nil
	case "new", "create":
		if len(rest) == 0 {
			return errUsage("pl new <name>[|description]")
		}
		name, desc, _ := strings.Cut(strings.Join(rest, " "), "|")
		id := p.session.CreatePlaylist(name, desc)
		if id == "" {
			return errUsage("pl new <name>[|description]")
		}
		p.printf("created playlist %q (%s)\n", strings.TrimSpace(name), shortID(id))
		return nil
	}

	if len(rest) == 0 {
		return errUsage("pl " + sub + " <playlist>")
	}
	pl, err := p.findPlaylist(rest[0])
	if err != nil {
		return err
	}

	switch sub {
	case "rm", "delete":
		p.session.DeletePlaylist(pl.ID)
		p.printf("deleted playlist %q\n", pl.Name)
	case "show":
		p.printf("%s", playlistHeader(pl))
		p.printSongs(p.session.PlaylistSongs(pl.ID))
	case "play":
		if len(p.session.PlaylistSongs(pl.ID)) == 0 {
			p.printf("playlist %q has no playable songs\n", pl.Name)
			return nil
		}
		p.session.PlayPlaylist(pl.ID)
	case "add", "del":
		if len(rest) != 2 {
			return errUsage("pl " + sub + " <playlist> <song id>")
		}
		id, err := parseSongID(rest[1])
		if err != nil {
			return errUsage("pl " + sub + " <playlist> <song id>")
		}
		if sub == "add" {
			p.session.AddSongToPlaylist(pl.ID, id)
		} else {
			p.session.RemoveSongFromPlaylist(pl.ID, id)
		}
		updated, _ := p.session.Playlist(pl.ID)
		p.printf("%q has %d songs\n", updated.Name, len(updated.SongIDs))
	default:
		return fmt.Errorf("unknown playlist command %q", sub)
	}
	return nil
}

// findPlaylist resolves a 1-based position from "pl ls", an exact id, or a
// unique id prefix.
func (p *Presenter) findPlaylist(ref string) (domain.Playlist, error) {
	playlists := p.session.Playlists()

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(playlists) {
		return playlists[n-1], nil
	}
	if pl, ok := lo.Find(playlists, func(pl domain.Playlist) bool { return pl.ID == ref }); ok {
		return pl, nil
	}

	matches := lo.Filter(playlists, func(pl domain.Playlist, _ int) bool {
		return strings.HasPrefix(pl.ID, ref)
	})
	if len(matches) == 1 {
		return matches[0], nil
	}
	return domain.Playlist{}, fmt.Errorf("%w: %s", domain.ErrPlaylistNotFound, ref)
}

func (p *Presenter) printSongs(songs []domain.Song) {
	if len(songs) == 0 {
		p.printf("  (no songs)\n")
		return
	}

	current := p.session.CurrentSong().ID
	var b strings.Builder
	for _, song := range songs {
		marker := " "
		if song.ID == current {
			marker = ">"
		}
		fav := " "
		if p.session.IsFavorite(song.ID) {
			fav = "*"
		}
		fmt.Fprintf(&b, "%s%s %3d  %s\n", marker, fav, song.ID, songLine(song))
	}
	p.printf("%s", b.String())
}

func (p *Presenter) printPlaylists() {
	playlists := p.session.Playlists()
	if len(playlists) == 0 {
		p.printf("  (no playlists)\n")
		return
	}

	var b strings.Builder
	for i, pl := range playlists {
		fmt.Fprintf(&b, "%3d  %s  %s (%d songs)\n", i+1, shortID(pl.ID), pl.Name, len(p.session.PlaylistSongs(pl.ID)))
	}
	p.printf("%s", b.String())
}

func (p *Presenter) printStatus() {
	song := p.session.CurrentSong()
	duration, known := p.session.Duration()

	total := "--:--"
	if known {
		total = service.FormatTime(duration)
	}

	p.printf("%s  [%s]  %s / %s  vol %d%%\n",
		songLine(song),
		p.session.Status(),
		service.FormatTime(p.session.CurrentTime()),
		total,
		int(p.session.Volume()*100+0.5))
}

func playlistHeader(pl domain.Playlist) string {
	if pl.Description == "" {
		return fmt.Sprintf("%s\n", pl.Name)
	}
	return fmt.Sprintf("%s: %s\n", pl.Name, pl.Description)
}

func songLine(song domain.Song) string {
	if song.Artist == "" {
		return song.Title
	}
	return song.Title + " - " + song.Artist
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parseSongID(s string) (domain.SongID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return domain.SongID(n), nil
}

// parseTime accepts plain seconds ("75", "12.5") or m:ss ("1:15").
func parseTime(s string) (float64, error) {
	minutes, seconds, found := strings.Cut(s, ":")
	if !found {
		return strconv.ParseFloat(s, 64)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid minutes %q", minutes)
	}
	sec, err := strconv.ParseFloat(seconds, 64)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("invalid seconds %q", seconds)
	}
	return float64(m*60) + sec, nil
}

// Shutdown unsubscribes from the bus. It is safe to call multiple times.
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subscriptions {
			p.bus.Unsubscribe(id)
		}
	})
}
