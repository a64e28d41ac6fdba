package chat

import (
	"testing"
)

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "keyword match",
			text: "how does mcp handle the context window?",
			want: []string{"mcp", "context window"},
		},
		{
			name: "proper noun past sentence start",
			text: "does Grafana support MCP?",
			want: []string{"Grafana", "mcp"},
		},
		{
			name: "kebab and camel identifiers",
			text: "my chat-service uses a TokenEstimator type",
			want: []string{"chat-service", "TokenEstimator"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTopics(tt.text)
			for _, w := range tt.want {
				if !contains(got, w) {
					t.Errorf("ExtractTopics(%q) = %v, missing %q", tt.text, got, w)
				}
			}
		})
	}
}

func TestExtractTopicsDeduplicates(t *testing.T) {
	got := ExtractTopics("MCP mcp Mcp, tell me about mcp")
	count := 0
	for _, topic := range got {
		if topic == "mcp" || topic == "MCP" || topic == "Mcp" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("ExtractTopics() kept %d mcp variants, want 1: %v", count, got)
	}
}

func TestIsNavigationRequest(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"show me the MCP docs", true},
		{"Where can I find the server guide?", true},
		{"take me to the architecture page", true},
		{"search for context management", true},
		{"what is MCP?", false},
		{"explain tokens", false},
	}

	for _, tt := range tests {
		if got := IsNavigationRequest(tt.text); got != tt.want {
			t.Errorf("IsNavigationRequest(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFollowUpQuestions(t *testing.T) {
	got := FollowUpQuestions("MCP standardizes context exchange between tools.")
	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("FollowUpQuestions() returned %d questions, want 1-3", len(got))
	}
	seen := make(map[string]bool)
	for _, q := range got {
		if seen[q] {
			t.Errorf("duplicate follow-up %q", q)
		}
		seen[q] = true
	}
}

func TestFollowUpQuestionsGenericPadding(t *testing.T) {
	got := FollowUpQuestions("Sure, glad that helped.")
	if len(got) != 3 {
		t.Fatalf("FollowUpQuestions() = %d questions, want 3 generic ones", len(got))
	}
	if !contains(got, "Can you provide code examples?") {
		t.Errorf("generic padding missing: %v", got)
	}
}

func TestFollowUpQuestionsEmpty(t *testing.T) {
	if got := FollowUpQuestions(""); got != nil {
		t.Errorf("FollowUpQuestions(\"\") = %v, want nil", got)
	}
}
