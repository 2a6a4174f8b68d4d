package render

import "sort"

// glyphs maps every emotion label the classifier can emit to its display glyph.
var glyphs = map[string]string{
	"disappointment": "😞",
	"sadness":        "😢",
	"annoyance":      "😠",
	"neutral":        "😐",
	"disapproval":    "👎",
	"realization":    "😮",
	"nervousness":    "😬",
	"approval":       "👍",
	"joy":            "😄",
	"anger":          "😡",
	"embarrassment":  "😳",
	"caring":         "🤗",
	"remorse":        "😔",
	"disgust":        "🤢",
	"grief":          "😥",
	"confusion":      "😕",
	"relief":         "😌",
	"desire":         "😍",
	"admiration":     "😌",
	"optimism":       "😊",
	"fear":           "😨",
	"love":           "❤️",
	"excitement":     "🎉",
	"curiosity":      "🤔",
	"amusement":      "😄",
	"surprise":       "😲",
	"gratitude":      "🙏",
	"pride":          "🦁",
}

// Emoji returns the glyph for label, or "" when the label is unknown.
func Emoji(label string) string {
	return glyphs[label]
}

// Glyph pairs an emotion label with its glyph.
type Glyph struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Glyphs returns a copy of the label→glyph table sorted by label.
func Glyphs() []Glyph {
	out := make([]Glyph, 0, len(glyphs))
	for label, g := range glyphs {
		out = append(out, Glyph{Label: label, Emoji: g})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
