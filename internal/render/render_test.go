package render

import (
	"regexp"
	"strings"
	"testing"

	"github.com/snarg/moodscribe/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var digits = regexp.MustCompile(`[0-9]`)

func lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestEmoji_EveryEmotionHasGlyph(t *testing.T) {
	for _, label := range sentiment.Vocabulary {
		assert.NotEmpty(t, Emoji(label), "label %q", label)
	}
	assert.Len(t, glyphs, len(sentiment.Vocabulary))
}

func TestEmoji_Table(t *testing.T) {
	tests := map[string]string{
		"joy":         "😄",
		"neutral":     "😐",
		"love":        "❤️",
		"admiration":  "😌",
		"relief":      "😌",
		"pride":       "🦁",
		"disapproval": "👎",
	}
	for label, want := range tests {
		assert.Equal(t, want, Emoji(label), "label %q", label)
	}
}

func TestEmoji_UnknownIsEmpty(t *testing.T) {
	for _, label := range []string{"", "boredom", "JOY", " joy", "😄", "\x00"} {
		assert.Equal(t, "", Emoji(label), "label %q", label)
	}
}

func TestGlyphs_Sorted(t *testing.T) {
	g := Glyphs()
	require.Len(t, g, len(sentiment.Vocabulary))
	for i := 1; i < len(g); i++ {
		assert.Less(t, g[i-1].Label, g[i].Label)
	}
}

func TestFormat_SentimentOnly(t *testing.T) {
	set := sentiment.ScoreSet{{Label: "joy", Score: 0.87}, {Label: "neutral", Score: 0.10}}
	out := Format(set, SentimentOnly)

	assert.ElementsMatch(t, []string{"joy 😄", "neutral 😐"}, lines(out))
	assert.False(t, digits.MatchString(out), "output %q contains digits", out)
}

func TestFormat_SentimentWithScore(t *testing.T) {
	out := Format(sentiment.ScoreSet{{Label: "joy", Score: 0.87}}, SentimentWithScore)
	assert.Equal(t, "joy 😄: 0.87\n", out)
}

func TestFormat_FullPrecisionScore(t *testing.T) {
	out := Format(sentiment.ScoreSet{{Label: "fear", Score: 0.8712345461845398}}, SentimentWithScore)
	assert.Equal(t, "fear 😨: 0.8712345461845398\n", out)
}

func TestFormat_LineCount(t *testing.T) {
	sets := []sentiment.ScoreSet{
		{},
		{{Label: "joy", Score: 1}},
		{{Label: "joy", Score: 0.5}, {Label: "grief", Score: 0.25}, {Label: "pride", Score: 0}},
	}
	for _, set := range sets {
		for _, mode := range Modes() {
			out := Format(set, mode)
			assert.Len(t, lines(out), len(set), "mode %q", mode)
			if mode == SentimentWithScore {
				for _, l := range lines(out) {
					assert.True(t, digits.MatchString(l), "line %q has no score", l)
				}
			}
		}
	}
}

func TestFormat_UnknownMode(t *testing.T) {
	set := sentiment.ScoreSet{{Label: "joy", Score: 0.87}, {Label: "anger", Score: 0.1}}
	for _, mode := range []Mode{"", "sentiment only", "Sentiment+Score", "Score"} {
		assert.Equal(t, "", Format(set, mode), "mode %q", mode)
	}
}

func TestFormat_StableOrder(t *testing.T) {
	set := sentiment.ScoreSet{
		{Label: "surprise", Score: 0.4},
		{Label: "curiosity", Score: 0.3},
		{Label: "amusement", Score: 0.2},
	}
	first := Format(set, SentimentWithScore)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Format(set, SentimentWithScore))
	}
	assert.Equal(t, []string{"surprise 😲: 0.4", "curiosity 🤔: 0.3", "amusement 😄: 0.2"}, lines(first))
}

func TestFormat_UnknownLabelHasNoGlyph(t *testing.T) {
	out := Format(sentiment.ScoreSet{{Label: "boredom", Score: 0.5}}, SentimentOnly)
	assert.Equal(t, "boredom \n", out)
}

func TestModeValid(t *testing.T) {
	assert.True(t, SentimentOnly.Valid())
	assert.True(t, SentimentWithScore.Valid())
	assert.False(t, Mode("Sentiment").Valid())
	assert.Equal(t, SentimentOnly, DefaultMode)
}
