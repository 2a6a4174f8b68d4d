package sentiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/snarg/moodscribe/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassifier returns canned scores and records its inputs.
type stubClassifier struct {
	scores []Score
	err    error
	inputs []string
}

func (s *stubClassifier) Classify(ctx context.Context, text string) ([]Score, error) {
	s.inputs = append(s.inputs, text)
	return s.scores, s.err
}

func (s *stubClassifier) Name() string  { return "stub" }
func (s *stubClassifier) Model() string { return "stub-model" }

func TestAnalyze_MultiLabel(t *testing.T) {
	clf := &stubClassifier{scores: []Score{
		{Label: "joy", Score: 0.87},
		{Label: "neutral", Score: 0.10},
	}}
	set, err := NewAnalyzer(clf).Analyze(context.Background(), "what a day")
	require.NoError(t, err)

	assert.Equal(t, []string{"joy", "neutral"}, set.Labels())
	score, ok := set.Get("joy")
	assert.True(t, ok)
	assert.Equal(t, 0.87, score)
}

func TestAnalyze_EmptyTextPassedThrough(t *testing.T) {
	clf := &stubClassifier{scores: []Score{{Label: "neutral", Score: 0.99}}}
	set, err := NewAnalyzer(clf).Analyze(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{""}, clf.inputs)
	assert.Len(t, set, 1)
}

func TestAnalyze_DuplicateLabelsMerge(t *testing.T) {
	clf := &stubClassifier{scores: []Score{
		{Label: "joy", Score: 0.5},
		{Label: "fear", Score: 0.2},
		{Label: "joy", Score: 0.7},
	}}
	set, err := NewAnalyzer(clf).Analyze(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, ScoreSet{{Label: "joy", Score: 0.7}, {Label: "fear", Score: 0.2}}, set)
}

func TestAnalyze_RejectsInvalidOutput(t *testing.T) {
	tests := []struct {
		name   string
		scores []Score
	}{
		{"unknown_label", []Score{{Label: "boredom", Score: 0.4}}},
		{"negative_score", []Score{{Label: "joy", Score: -0.1}}},
		{"score_above_one", []Score{{Label: "joy", Score: 1.2}}},
		{"nan_score", []Score{{Label: "joy", Score: math.NaN()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnalyzer(&stubClassifier{scores: tt.scores}).Analyze(context.Background(), "x")
			assert.ErrorIs(t, err, apperr.ErrModelInference)
		})
	}
}

func TestAnalyze_ClassifierError(t *testing.T) {
	cause := errors.New("input too long")
	_, err := NewAnalyzer(&stubClassifier{err: cause}).Analyze(context.Background(), "x")

	assert.ErrorIs(t, err, apperr.ErrModelInference)
	assert.ErrorIs(t, err, cause)
}

func TestScoreSet_Top(t *testing.T) {
	_, ok := ScoreSet{}.Top()
	assert.False(t, ok)

	top, ok := ScoreSet{
		{Label: "fear", Score: 0.3},
		{Label: "joy", Score: 0.6},
		{Label: "love", Score: 0.6},
	}.Top()
	assert.True(t, ok)
	assert.Equal(t, "joy", top.Label)
}

func TestVocabulary(t *testing.T) {
	assert.Len(t, Vocabulary, 28)
	assert.True(t, IsEmotion("pride"))
	assert.False(t, IsEmotion("Pride"))
	assert.False(t, IsEmotion(""))
}
