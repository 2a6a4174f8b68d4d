package sentiment

// Vocabulary is the closed set of emotion labels the classifier is trained on.
var Vocabulary = []string{
	"admiration", "amusement", "anger", "annoyance", "approval", "caring",
	"confusion", "curiosity", "desire", "disappointment", "disapproval",
	"disgust", "embarrassment", "excitement", "fear", "gratitude", "grief",
	"joy", "love", "nervousness", "neutral", "optimism", "pride",
	"realization", "relief", "remorse", "sadness", "surprise",
}

var vocabulary = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Vocabulary))
	for _, l := range Vocabulary {
		m[l] = struct{}{}
	}
	return m
}()

// IsEmotion reports whether label belongs to the vocabulary.
func IsEmotion(label string) bool {
	_, ok := vocabulary[label]
	return ok
}

// Score is one emotion label and the classifier's confidence in it.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ScoreSet is an emotion profile. Labels are unique and come from
// Vocabulary; entries keep the order the classifier produced them in.
type ScoreSet []Score

// Get returns the score for label.
func (s ScoreSet) Get(label string) (float64, bool) {
	for _, e := range s {
		if e.Label == label {
			return e.Score, true
		}
	}
	return 0, false
}

// Labels returns the labels in set order.
func (s ScoreSet) Labels() []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = e.Label
	}
	return out
}

// Top returns the highest-scoring entry. The first one wins a tie.
func (s ScoreSet) Top() (Score, bool) {
	if len(s) == 0 {
		return Score{}, false
	}
	best := s[0]
	for _, e := range s[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best, true
}
