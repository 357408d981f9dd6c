package utils

// CharsPerToken is the character-to-token ratio used across budget math.
const CharsPerToken = 4

// EstimateTokens approximates the token count of a text as len/4. Close
// enough for budget decisions over English prose; a tokenizer-exact count
// would tie us to one model family.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / CharsPerToken
	if n == 0 {
		return 1
	}
	return n
}
