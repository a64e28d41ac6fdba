package chat

import "math"

// Context-budget and pagination constants. The estimator is used only for
// relative budgeting; the backend enforces its own hard limits.
const (
	// maxContextTokens caps the estimated token cost of a request payload.
	maxContextTokens = 4000
	// tokensPerChar is a rough average tokens-per-character ratio.
	tokensPerChar = 0.33
	// minWindowMessages is the non-system message count below which no
	// windowing is applied.
	minWindowMessages = 4
	// maxMessagesPerPage caps the size of a UI pagination page.
	maxMessagesPerPage = 20
	// pageOverlapTurns is the number of conversation turns shared by
	// adjacent pages.
	pageOverlapTurns = 2
	// recentHistoryLimit is the trailing message count sent on the
	// streaming path, independent of the token budget.
	recentHistoryLimit = 6
)

// EstimateTokens approximates the token cost of text from its character
// length. Monotonically non-decreasing in len(text), never negative.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len(text)) * tokensPerChar))
}
