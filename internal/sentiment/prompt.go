package sentiment

import "fmt"

const promptTemplate = `Analyze the sentiment of the following text and respond with exactly one word: Positive, Negative, or Neutral.

Text: "%s"

Sentiment:`

// BuildPrompt creates the single-turn classification prompt for text. The
// instruction biases the model toward a one-word answer.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
