// Package transcribe identifies the spoken language and decodes the
// transcript from log-mel features.
package transcribe

import (
	"context"

	"github.com/snarg/moodscribe/internal/audio"
)

// Model is the interface for acoustic model backends.
type Model interface {
	// DetectLanguage returns a probability per supported language, in the
	// model's own language ordering.
	DetectLanguage(ctx context.Context, feats *audio.Features) ([]LanguageProb, error)
	// Decode returns the transcript text, "" when no speech is found.
	Decode(ctx context.Context, feats *audio.Features, opts DecodeOptions) (string, error)
	Name() string  // "whisper"
	Model() string // model identifier for logs and health
}

// LanguageProb is one entry of the language-identification distribution.
type LanguageProb struct {
	Language    string  `json:"language"`
	Probability float64 `json:"probability"`
}

// DecodeOptions are per-request decoding options.
type DecodeOptions struct {
	// FP16 selects reduced-precision inference. The engine always sends false.
	FP16        bool
	Temperature float64
	Language    string // "" = let the model decide
}

// LanguageGuess is the detected language and the full distribution behind it.
type LanguageGuess struct {
	Code          string
	Probabilities []LanguageProb
}

// Result is the output of one transcription.
type Result struct {
	Language   LanguageGuess
	Transcript string
}
