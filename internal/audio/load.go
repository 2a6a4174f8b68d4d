// Package audio turns an audio file into the log-mel features the
// transcription model consumes.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"github.com/snarg/moodscribe/internal/apperr"
)

// Model-defined constants for the feature extractor.
const (
	SampleRate   = 16000
	ChunkSeconds = 30
	NSamples     = SampleRate * ChunkSeconds // 480000
	NFFT         = 400
	HopLength    = 160
	NFrames      = NSamples / HopLength // 3000
	NMels        = 80
)

// resampleQuality is beep's interpolation window; 4 is its recommended default.
const resampleQuality = 4

var errUnsupportedFormat = errors.New("unsupported audio container")

// Sample is a mono waveform at SampleRate.
type Sample struct {
	Data       []float32
	SampleRate int
}

// Duration returns the length of the waveform.
func (s Sample) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(s.Data)) * time.Second / time.Duration(s.SampleRate)
}

// nativeFormat reports whether the container can be decoded in-process.
func nativeFormat(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave", ".mp3", ".flac", ".ogg", ".oga":
		return true
	}
	return false
}

// IsAudioFile reports whether path has an extension the preprocessor can
// decode natively or hand to sox.
func IsAudioFile(path string) bool {
	if nativeFormat(path) {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".aif", ".aiff", ".au", ".m4a", ".aac", ".opus", ".wma", ".amr":
		return true
	}
	return false
}

// openFile opens path for reading. Missing, unreadable, and directory paths
// are IO errors.
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.IO("audio.open", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, apperr.IO("audio.open", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, apperr.IO("audio.open", fmt.Errorf("%s is a directory", path))
	}
	return f, nil
}

// decodeFile decodes a natively supported container into a mono 16 kHz sample.
// ext selects the decoder, so transcoded temp files can pass ".wav".
func decodeFile(f *os.File, ext string) (Sample, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch strings.ToLower(ext) {
	case ".wav", ".wave":
		stream, format, err = wav.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		stream, format, err = vorbis.Decode(f)
	default:
		return Sample{}, apperr.Decode("audio.decode", fmt.Errorf("%w: %q", errUnsupportedFormat, ext))
	}
	if err != nil {
		return Sample{}, apperr.Decode("audio.decode", err)
	}
	defer stream.Close()

	if format.SampleRate <= 0 {
		return Sample{}, apperr.Decode("audio.decode", fmt.Errorf("invalid sample rate %d", format.SampleRate))
	}

	data, err := readMono(stream, format.SampleRate)
	if err != nil {
		return Sample{}, apperr.Decode("audio.resample", err)
	}
	return Sample{Data: data, SampleRate: SampleRate}, nil
}

// readMono drains s, resampling to SampleRate and averaging the two channels
// beep always delivers.
func readMono(s beep.Streamer, rate beep.SampleRate) ([]float32, error) {
	if rate != SampleRate {
		s = beep.Resample(resampleQuality, rate, SampleRate, s)
	}

	buf := make([][2]float64, 4096)
	var out []float32
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, float32((buf[i][0]+buf[i][1])/2))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return out, nil
}

// PadOrTrim returns a copy of data zero-padded or cut to exactly n samples.
func PadOrTrim(data []float32, n int) []float32 {
	out := make([]float32, n)
	copy(out, data)
	return out
}
