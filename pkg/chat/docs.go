package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// docSnippet pairs a topic with trigger keywords and the reference text
// injected into the system message when the user asks about it.
type docSnippet struct {
	Topic    string
	Keywords []string
	Content  string
}

var docSnippets = []docSnippet{
	{
		Topic:    "MCP Overview",
		Keywords: []string{"mcp", "model context protocol", "context protocol"},
		Content:  "The Model Context Protocol (MCP) is a standardized approach for managing context in AI-assisted development workflows. It defines how context is stored, shared, and synchronized across different tools and environments.",
	},
	{
		Topic:    "MCP Servers",
		Keywords: []string{"mcp server", "server", "context server", "architecture"},
		Content:  "MCP servers act as a central repository for context data. They provide APIs for storing and retrieving context, authentication, and synchronization between different development environments.",
	},
	{
		Topic:    "Context Management",
		Keywords: []string{"context", "context window", "token limit", "context management"},
		Content:  "Context management in MCP involves strategies for collecting, prioritizing, and windowing information to stay within token limits while providing the most relevant information to LLMs.",
	},
}

// relevantDocumentation returns the snippets whose keywords appear in the
// user text.
func relevantDocumentation(userText string) []string {
	lower := strings.ToLower(userText)
	var matched []string
	for _, s := range docSnippets {
		for _, kw := range s.Keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, s.Topic+": "+s.Content)
				break
			}
		}
	}
	return matched
}

// injectDocumentation appends matched reference snippets to the system
// message of a transient copy of messages. Stored session state is never
// touched, so repeated calls for the same request are idempotent. When no
// system message exists one is synthesized and prepended.
func injectDocumentation(messages []Message, userText string) []Message {
	docs := relevantDocumentation(userText)
	if len(docs) == 0 {
		return messages
	}

	out := cloneMessages(messages)
	for i := range out {
		if out[i].Role == RoleSystem {
			out[i].Content += "\n\nRelevant documentation: " + strings.Join(docs, " ")
			return out
		}
	}

	synth := Message{
		ID:        uuid.New().String(),
		Role:      RoleSystem,
		Content:   defaultSystemPrompt + "\n\nRelevant documentation: " + strings.Join(docs, " "),
		Timestamp: time.Now().UTC(),
	}
	return append([]Message{synth}, out...)
}
