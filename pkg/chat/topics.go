package chat

import (
	"regexp"
	"strings"
)

// topicKeywords is the fixed vocabulary matched against message content.
var topicKeywords = []string{
	"mcp", "model context protocol", "context management",
	"context window", "token limit", "server", "architecture",
	"security", "api", "development", "workflow", "agent",
	"integration", "tools", "cursor", "ide", "llm",
	"large language model", "prompt engineering",
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true,
	"this": true, "that": true, "they": true, "them": true,
}

var identifierPattern = regexp.MustCompile(`[A-Z][a-z]+[A-Z]`)

// ExtractTopics derives a deduplicated topic set from text: fixed keyword
// matches plus heuristics for capitalized tokens not at sentence start and
// camel/kebab/snake-case identifiers. Best effort only; never on the
// critical path of a send.
func ExtractTopics(content string) []string {
	if content == "" {
		return nil
	}

	seen := make(map[string]bool)
	var topics []string
	add := func(t string) {
		key := strings.ToLower(t)
		if !seen[key] {
			seen[key] = true
			topics = append(topics, t)
		}
	}

	lower := strings.ToLower(content)
	for _, kw := range topicKeywords {
		if strings.Contains(lower, kw) {
			add(kw)
		}
	}

	words := strings.Fields(content)
	for i, word := range words {
		trimmed := strings.Trim(word, ".,!?;:\"'()")
		if len(trimmed) <= 3 || stopWords[strings.ToLower(trimmed)] || seen[strings.ToLower(trimmed)] {
			continue
		}

		// Capitalized tokens past sentence start are likely proper nouns.
		if i > 0 && trimmed[0] >= 'A' && trimmed[0] <= 'Z' {
			switch trimmed {
			case "I", "A", "An", "The":
			default:
				add(trimmed)
				continue
			}
		}

		if identifierPattern.MatchString(trimmed) ||
			strings.Contains(trimmed, "-") ||
			strings.Contains(trimmed, "_") {
			add(trimmed)
		}
	}

	return topics
}

var navigationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)show me`),
	regexp.MustCompile(`(?i)where can I find`),
	regexp.MustCompile(`(?i)take me to`),
	regexp.MustCompile(`(?i)navigate to`),
	regexp.MustCompile(`(?i)go to`),
	regexp.MustCompile(`(?i)how do I get to`),
	regexp.MustCompile(`(?i)find the`),
	regexp.MustCompile(`(?i)look for`),
	regexp.MustCompile(`(?i)search for`),
}

// IsNavigationRequest reports whether a message looks like a request to be
// taken somewhere in the documentation.
func IsNavigationRequest(message string) bool {
	for _, p := range navigationPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

// FollowUpQuestions synthesizes up to three follow-up prompts from an
// assistant message, templated per recognized topic with generic padding
// when topic-specific suggestions run short.
func FollowUpQuestions(assistantContent string) []string {
	if assistantContent == "" {
		return nil
	}

	var followUps []string
	for _, topic := range ExtractTopics(assistantContent) {
		lower := strings.ToLower(topic)
		switch {
		case strings.Contains(lower, "mcp"), strings.Contains(lower, "model context protocol"):
			followUps = append(followUps,
				"How can I implement "+topic+" in my project?",
				"What are the key components of "+topic+"?")
		case strings.Contains(lower, "server"), strings.Contains(lower, "architecture"):
			followUps = append(followUps,
				"What are the security considerations for "+topic+"?",
				"How does "+topic+" scale with increasing users?")
		case strings.Contains(lower, "development"):
			followUps = append(followUps,
				"What tools are recommended for "+topic+"?",
				"What are best practices for "+topic+"?")
		}
	}

	if len(followUps) < 2 {
		followUps = append(followUps,
			"Can you provide code examples?",
			"Where can I learn more about this?",
			"What related topics should I explore next?")
	}

	seen := make(map[string]bool)
	var unique []string
	for _, q := range followUps {
		if !seen[q] {
			seen[q] = true
			unique = append(unique, q)
		}
		if len(unique) == 3 {
			break
		}
	}
	return unique
}
