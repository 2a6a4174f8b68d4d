package transcribe

import (
	"context"
	"errors"
	"math"

	"github.com/snarg/moodscribe/internal/apperr"
	"github.com/snarg/moodscribe/internal/audio"
)

// Engine runs language identification and decoding against a Model.
type Engine struct {
	model Model
}

// NewEngine creates an engine backed by model.
func NewEngine(model Model) *Engine {
	return &Engine{model: model}
}

// Model returns the underlying backend.
func (e *Engine) Model() Model { return e.model }

// Transcribe detects the language, then decodes at full precision.
// Any model failure is a model inference error and stops the request.
func (e *Engine) Transcribe(ctx context.Context, feats *audio.Features) (*Result, error) {
	probs, err := e.model.DetectLanguage(ctx, feats)
	if err != nil {
		return nil, apperr.Inference("transcribe.detect_language", err)
	}
	guess, err := pickLanguage(probs)
	if err != nil {
		return nil, err
	}

	text, err := e.model.Decode(ctx, feats, DecodeOptions{FP16: false})
	if err != nil {
		return nil, apperr.Inference("transcribe.decode", err)
	}

	return &Result{Language: guess, Transcript: text}, nil
}

// pickLanguage returns the most probable language. On a tie the entry the
// model listed first wins.
func pickLanguage(probs []LanguageProb) (LanguageGuess, error) {
	if len(probs) == 0 {
		return LanguageGuess{}, apperr.Inference("transcribe.detect_language", errors.New("model returned no languages"))
	}

	best := -1
	for i, p := range probs {
		if p.Language == "" {
			return LanguageGuess{}, apperr.Inferencef("transcribe.detect_language", "entry %d has no language code", i)
		}
		if math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1 {
			return LanguageGuess{}, apperr.Inferencef("transcribe.detect_language", "probability %v for %q out of range [0,1]", p.Probability, p.Language)
		}
		if best < 0 || p.Probability > probs[best].Probability {
			best = i
		}
	}
	return LanguageGuess{Code: probs[best].Language, Probabilities: probs}, nil
}
