package chat

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "single char rounds up", text: "a", want: 1},
		{name: "three chars", text: "abc", want: 1},
		{name: "four chars", text: "abcd", want: 2},
		{name: "hundred chars", text: strings.Repeat("x", 100), want: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateTokensMonotonic(t *testing.T) {
	prev := 0
	for n := 0; n <= 500; n += 7 {
		got := EstimateTokens(strings.Repeat("a", n))
		if got < prev {
			t.Fatalf("EstimateTokens decreased at length %d: %d < %d", n, got, prev)
		}
		prev = got
	}
}
