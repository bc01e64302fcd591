// Package sentiment classifies text as Positive, Negative, or Neutral by
// delegating to a local Ollama model and normalizing its free-text reply.
package sentiment

import "strings"

// Sentiment is one of the three canonical labels the service ever returns.
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Neutral  Sentiment = "Neutral"
)

var labels = []Sentiment{Positive, Negative, Neutral}

// Normalize maps arbitrary model output to a canonical label. It scans
// case-insensitively for the earliest whole-token occurrence of any label
// word; if none is found it falls back to Neutral. The model is expected to
// answer with a single word, but scanning tolerates surrounding prose.
func Normalize(raw string) Sentiment {
	lower := strings.ToLower(raw)

	best := -1
	result := Neutral
	for _, label := range labels {
		pos := indexToken(lower, strings.ToLower(string(label)))
		if pos >= 0 && (best < 0 || pos < best) {
			best = pos
			result = label
		}
	}
	return result
}

// indexToken returns the byte offset of the first occurrence of word in s
// that stands alone as a token (not embedded in a longer alphanumeric run),
// or -1 when absent.
func indexToken(s, word string) int {
	for start := 0; start <= len(s)-len(word); {
		i := strings.Index(s[start:], word)
		if i < 0 {
			return -1
		}
		i += start
		if isTokenAt(s, i, len(word)) {
			return i
		}
		start = i + 1
	}
	return -1
}

func isTokenAt(s string, i, n int) bool {
	beforeOK := i == 0 || !isWordByte(s[i-1])
	afterOK := i+n >= len(s) || !isWordByte(s[i+n])
	return beforeOK && afterOK
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
