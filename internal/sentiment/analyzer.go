// Package sentiment derives an emotion profile from transcript text.
package sentiment

import (
	"context"
	"math"

	"github.com/snarg/moodscribe/internal/apperr"
)

// Classifier is the interface for emotion classification backends.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Score, error)
	Name() string  // "huggingface"
	Model() string // model identifier for logs and health
}

// Analyzer validates classifier output into a ScoreSet.
type Analyzer struct {
	clf Classifier
}

// NewAnalyzer creates an analyzer backed by clf.
func NewAnalyzer(clf Classifier) *Analyzer {
	return &Analyzer{clf: clf}
}

// Classifier returns the underlying backend.
func (a *Analyzer) Classifier() Classifier { return a.clf }

// Analyze classifies text, which may be empty; empty input goes to the
// classifier unchanged. Any classifier failure, a label outside Vocabulary,
// or a score outside [0,1] is a model inference error.
func (a *Analyzer) Analyze(ctx context.Context, text string) (ScoreSet, error) {
	raw, err := a.clf.Classify(ctx, text)
	if err != nil {
		return nil, apperr.Inference("sentiment.classify", err)
	}
	return normalize(raw)
}

// normalize merges duplicate labels (first position, last score) and checks
// every entry against the vocabulary and the [0,1] range.
func normalize(raw []Score) (ScoreSet, error) {
	out := make(ScoreSet, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, s := range raw {
		if !IsEmotion(s.Label) {
			return nil, apperr.Inferencef("sentiment.classify", "label %q is not in the emotion vocabulary", s.Label)
		}
		if math.IsNaN(s.Score) || s.Score < 0 || s.Score > 1 {
			return nil, apperr.Inferencef("sentiment.classify", "score %v for %q out of range [0,1]", s.Score, s.Label)
		}
		if i, ok := index[s.Label]; ok {
			out[i].Score = s.Score
			continue
		}
		index[s.Label] = len(out)
		out = append(out, s)
	}
	return out, nil
}
