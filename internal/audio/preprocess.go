package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/snarg/moodscribe/internal/apperr"
)

// PreprocessorOptions configures a Preprocessor.
type PreprocessorOptions struct {
	// UseSox enables transcoding of containers beep cannot decode.
	UseSox bool
	Log    zerolog.Logger
}

// Preprocessor loads audio files and extracts transcription features.
// It holds no per-request state and is safe for concurrent use.
type Preprocessor struct {
	useSox bool
	log    zerolog.Logger
}

// NewPreprocessor creates a preprocessor. Sox availability is checked here so
// a missing binary is reported once at startup.
func NewPreprocessor(opts PreprocessorOptions) *Preprocessor {
	p := &Preprocessor{useSox: opts.UseSox, log: opts.Log}
	if opts.UseSox {
		if CheckSox() {
			p.log.Info().Msg("sox transcoding enabled")
		} else {
			p.log.Warn().Msg("PREPROCESS_SOX=true but sox not found in PATH; only wav, mp3, flac and ogg are accepted")
			p.useSox = false
		}
	}
	return p
}

// Load reads path into a mono 16 kHz waveform.
func (p *Preprocessor) Load(ctx context.Context, path string) (Sample, error) {
	f, err := openFile(path)
	if err != nil {
		return Sample{}, err
	}
	defer f.Close()

	if nativeFormat(path) {
		return decodeFile(f, filepath.Ext(path))
	}

	if !p.useSox {
		return Sample{}, apperr.Decode("audio.decode", fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path)))
	}

	wavPath, cleanup, err := transcode(ctx, path)
	if err != nil {
		return Sample{}, apperr.Decode("audio.transcode", err)
	}
	defer cleanup()

	wf, err := os.Open(wavPath)
	if err != nil {
		return Sample{}, apperr.Decode("audio.transcode", err)
	}
	defer wf.Close()
	return decodeFile(wf, ".wav")
}

// Features loads path, pads or trims it to ChunkSeconds, and computes its
// log-mel spectrogram (NMels x NFrames).
func (p *Preprocessor) Features(ctx context.Context, path string) (*Features, error) {
	sample, err := p.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("path", path).
		Dur("duration", sample.Duration()).
		Int("samples", len(sample.Data)).
		Msg("audio loaded")

	return LogMel(PadOrTrim(sample.Data, NSamples)), nil
}
