// Package beepsink plays catalog sources on the local audio device through
// github.com/gopxl/beep. Builds without an audio backend get a sink that loads
// and measures sources but rejects every play request.
package beepsink

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"github.com/tejashwikalptaru/encore/internal/domain"
)

// Config configures the sink.
type Config struct {
	// MediaRoot is prepended to catalog sources such as "/audio/Op1.mp3".
	// Empty means sources are used as file paths unchanged.
	MediaRoot string

	// SampleRate is the speaker rate; sources are resampled to it.
	SampleRate int

	// ReportInterval is how often the position is reported while playing.
	ReportInterval time.Duration
}

// DefaultConfig returns CD-quality output with position reports every 250ms.
func DefaultConfig() Config {
	return Config{
		SampleRate:     44100,
		ReportInterval: 250 * time.Millisecond,
	}
}

// openSource opens and decodes an audio file chosen by extension, matching
// catalog.AudioExtensions.
// The returned streamer owns the file.
func openSource(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var decode func(*os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch ext {
	case ".mp3":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".flac":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }
	case ".wav":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, err
	}
	return &fileStreamer{StreamSeekCloser: streamer, file: f}, format, nil
}

// fileStreamer closes the underlying file together with the decoder, whether
// or not the decoder closes its reader itself.
type fileStreamer struct {
	beep.StreamSeekCloser
	file *os.File
}

func (s *fileStreamer) Close() error {
	err := s.StreamSeekCloser.Close()
	_ = s.file.Close()
	return err
}

// lengthSeconds returns the decoded length of a streamer.
func lengthSeconds(streamer beep.StreamSeekCloser, format beep.Format) float64 {
	return format.SampleRate.D(streamer.Len()).Seconds()
}

// levelToVolume maps a linear [0, 1] level to the base-2 exponent used by
// effects.Volume. Zero is handled by silencing the effect instead.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	return math.Log2(math.Min(level, 1))
}

func validLevel(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return domain.NewValidationError("volume", level, "must be between 0 and 1")
	}
	return nil
}
