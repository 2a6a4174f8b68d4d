// Package render turns sentiment scores into the text shown to the user.
package render

import (
	"strconv"
	"strings"

	"github.com/snarg/moodscribe/internal/sentiment"
)

// Mode selects how much detail Format prints per emotion.
type Mode string

const (
	SentimentOnly      Mode = "Sentiment Only"
	SentimentWithScore Mode = "Sentiment + Score"
)

// DefaultMode is used when a caller does not choose one.
const DefaultMode = SentimentOnly

// Modes lists the recognized display modes.
func Modes() []Mode {
	return []Mode{SentimentOnly, SentimentWithScore}
}

// Valid reports whether m is a recognized display mode.
func (m Mode) Valid() bool {
	return m == SentimentOnly || m == SentimentWithScore
}

// Format renders one line per score, in the order of the set.
// An unrecognized mode renders nothing.
func Format(scores sentiment.ScoreSet, mode Mode) string {
	if !mode.Valid() {
		return ""
	}

	var b strings.Builder
	for _, s := range scores {
		b.WriteString(s.Label)
		b.WriteByte(' ')
		b.WriteString(Emoji(s.Label))
		if mode == SentimentWithScore {
			b.WriteString(": ")
			b.WriteString(FormatScore(s.Score))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatScore prints a score as the shortest decimal that round-trips it,
// so 0.87 prints as "0.87" and full-precision model output is kept as is.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
