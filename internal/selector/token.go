package selector

import "unicode/utf8"

// EstimateTokens gives a rough token count by dividing the character count by
// charsPerToken. It is a budget heuristic, not a tokenizer.
func EstimateTokens(text string, charsPerToken int) int {
	if text == "" {
		return 0
	}
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	return utf8.RuneCountInString(text) / charsPerToken
}
