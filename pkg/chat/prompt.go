package chat

import "strings"

// defaultSystemPrompt seeds every new session and synthesized system
// message.
const defaultSystemPrompt = `You are AITutor, an educational assistant for the AI Dev Education platform. Your purpose is to help users understand AI development concepts and navigate the platform resources.

When responding:
- Be concise and informative, focusing on providing accurate information
- When referencing platform resources, mention them specifically
- Adapt your responses based on the current page context provided
- Provide context-aware help based on the user's current location in the documentation
- Suggest relevant pages when appropriate based on the user's questions

The platform covers topics including:
- Model Context Protocol (MCP)
- AI Agent development
- Prompt engineering
- LLM systems
- Multimodal AI
- AI safety and alignment`

// greetingMessage opens every new session.
const greetingMessage = "👋 Hello! I'm your AI assistant for AI-Dev Education. How can I help you learn about AI-assisted development and MCP today?"

// interruptedMessage replaces an abandoned empty streaming response.
const interruptedMessage = "A previous response was interrupted. Please try again."

// deriveTitle builds a session title from the first user message.
func deriveTitle(content string) string {
	content = strings.TrimSpace(content)
	if len(content) > 30 {
		return content[:30] + "..."
	}
	return content
}

// categorizeContent assigns a topic and category from message content.
// Purely heuristic, used only for grouping in the session list.
func categorizeContent(content string) (topic, category string) {
	lower := strings.ToLower(content)

	switch {
	case strings.Contains(lower, "mcp"),
		strings.Contains(lower, "model context protocol"),
		strings.Contains(lower, "context protocol"):
		return "MCP", "Model Context Protocol"
	case strings.Contains(lower, "ai-assisted"),
		strings.Contains(lower, "ai assisted"),
		strings.Contains(lower, "ai development"),
		strings.Contains(lower, "prompt engineering"):
		return "AI-Dev", "AI Development"
	case strings.Contains(lower, "cursor"),
		strings.Contains(lower, "ide"),
		strings.Contains(lower, "editor"):
		return "Cursor", "Tools"
	case strings.Contains(lower, "server"),
		strings.Contains(lower, "api"),
		strings.Contains(lower, "backend"):
		return "Servers", "MCP Servers"
	}
	return "", ""
}
