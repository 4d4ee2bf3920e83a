package beepsink

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/logger"
)

// writeSilence writes a mono WAV file of the given length under root/audio.
func writeSilence(t *testing.T, root, name string, seconds int) {
	t.Helper()
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}

	dir := filepath.Join(root, "audio")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, wav.Encode(f, beep.Silence(format.SampleRate.N(time.Duration(seconds)*time.Second)), format))
}

func TestOpenSource_UnsupportedFormat(t *testing.T) {
	_, _, err := openSource("/tmp/cover.jpg")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestOpenSource_MissingFile(t *testing.T) {
	_, _, err := openSource(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenSource_WAV(t *testing.T) {
	root := t.TempDir()
	writeSilence(t, root, "tone.wav", 2)

	streamer, format, err := openSource(filepath.Join(root, "audio", "tone.wav"))
	require.NoError(t, err)
	defer streamer.Close()

	assert.Equal(t, beep.SampleRate(8000), format.SampleRate)
	assert.InDelta(t, 2.0, lengthSeconds(streamer, format), 0.01)
}

func TestLevelToVolume(t *testing.T) {
	assert.Equal(t, 0.0, levelToVolume(1))
	assert.Equal(t, -1.0, levelToVolume(0.5))
	assert.Equal(t, -2.0, levelToVolume(0.25))
	assert.Equal(t, -10.0, levelToVolume(0))

	assert.NoError(t, validLevel(0.7))
	assert.Error(t, validLevel(1.1))
}

func TestSink_LoadReportsDuration(t *testing.T) {
	root := t.TempDir()
	writeSilence(t, root, "Op1.wav", 3)

	sink := New(Config{MediaRoot: root}, logger.NewTestLogger())
	defer sink.Close()

	var mu sync.Mutex
	var got []domain.Message
	sink.Observe(func(msg domain.Message) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
	})

	require.NoError(t, sink.Load("/audio/Op1.wav"))
	require.NoError(t, sink.SetVolume(0.4))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	duration, ok := got[0].(domain.DurationKnown)
	require.True(t, ok)
	assert.InDelta(t, 3.0, duration.Seconds, 0.01)
}

func TestSink_LoadErrors(t *testing.T) {
	sink := New(Config{MediaRoot: t.TempDir()}, logger.NewTestLogger())
	defer sink.Close()

	var sinkErr *domain.SinkError
	err := sink.Load("/audio/missing.mp3")
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, "load", sinkErr.Op)
	assert.Equal(t, "/audio/missing.mp3", sinkErr.Source)

	assert.ErrorIs(t, sink.Load("/audio/readme.txt"), domain.ErrUnsupportedFormat)
	assert.Error(t, sink.SetVolume(-1))
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeSilence(t, root, "Op2.wav", 1)

	sink := New(Config{MediaRoot: root}, logger.NewTestLogger())
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	assert.ErrorIs(t, sink.Load("/audio/Op2.wav"), domain.ErrSinkClosed)
}
