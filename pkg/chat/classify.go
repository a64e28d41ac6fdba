package chat

import (
	"errors"
	"strings"

	"github.com/aidevedu/chatcore/internal/provider"
)

// Category buckets a send failure into one of a fixed set of user-facing
// error classes.
type Category string

const (
	CategoryCredentials      Category = "credentials-missing"
	CategoryNetwork          Category = "network-or-timeout"
	CategoryModelUnavailable Category = "model-unavailable"
	CategoryRateLimit        Category = "rate-limited"
	CategoryInputTooLong     Category = "input-too-long"
	CategoryUnknown          Category = "unknown-runtime-error"
)

// ClassifyError assigns a category to a failure. Structured provider
// errors map directly by code; everything else falls back to substring
// matching over the lowercased message text. Classification is
// deterministic: the same error text always yields the same category.
func ClassifyError(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var perr *provider.Error
	if errors.As(err, &perr) {
		switch perr.Code {
		case provider.ErrorCodeAuthentication:
			return CategoryCredentials
		case provider.ErrorCodeTimeout:
			return CategoryNetwork
		case provider.ErrorCodeModelNotFound:
			return CategoryModelUnavailable
		case provider.ErrorCodeRateLimit:
			return CategoryRateLimit
		case provider.ErrorCodeInvalidRequest:
			return CategoryInputTooLong
		}
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "api key"),
		strings.Contains(text, "authentication"),
		strings.Contains(text, "unauthorized"),
		strings.Contains(text, "credential"):
		return CategoryCredentials
	case strings.Contains(text, "network"),
		strings.Contains(text, "connection"),
		strings.Contains(text, "timeout"):
		return CategoryNetwork
	case strings.Contains(text, "model"),
		strings.Contains(text, "not found"):
		return CategoryModelUnavailable
	case strings.Contains(text, "rate"),
		strings.Contains(text, "limit"),
		strings.Contains(text, "429"):
		return CategoryRateLimit
	case strings.Contains(text, "token"),
		strings.Contains(text, "content length"),
		strings.Contains(text, "too long"):
		return CategoryInputTooLong
	}
	return CategoryUnknown
}

// UserMessage maps a category to its fixed user-facing sentence. The model
// id is interpolated into the model-unavailable sentence.
func (c Category) UserMessage(model string) string {
	switch c {
	case CategoryCredentials:
		return "The AI service couldn't be accessed due to an API key issue. Please check the API key configuration."
	case CategoryNetwork:
		return "I couldn't connect to the AI service due to a network error. Please check your internet connection."
	case CategoryModelUnavailable:
		return "The selected AI model \"" + model + "\" is currently unavailable. Please try a different model."
	case CategoryRateLimit:
		return "The AI service is currently rate limited. Please wait a moment and try again."
	case CategoryInputTooLong:
		return "Your message is too long for the AI to process. Please try a shorter message."
	default:
		return "I'm sorry, I encountered an error while generating a response. Please try again."
	}
}

// missingCredentialsMessage is shown when a send short-circuits before any
// network call because no API key is configured.
const missingCredentialsMessage = "I'm sorry, I can't process your request because the API connection is not configured. Please contact the administrator to set up the API key."

// Canned fallback answers substituted for hard errors when fallback mode
// is enabled, matched by keyword against the user's query.
var fallbackResponses = []struct {
	keywords []string
	answer   string
}{
	{
		keywords: []string{"mcp", "model context protocol"},
		answer:   "Model Context Protocol (MCP) is a framework that standardizes how context is shared between AI models and development tools. It helps create more consistent and effective interactions by ensuring all tools speak the same language when exchanging contextual information.",
	},
	{
		keywords: []string{"assisted", "productivity"},
		answer:   "AI-assisted development enhances productivity by automating routine tasks, suggesting code completions, detecting bugs, and providing intelligent insights during the coding process. Tools like GitHub Copilot and Cursor use AI to help developers write better code faster.",
	},
	{
		keywords: []string{"ai", "development"},
		answer:   "AI development involves creating and refining algorithms that enable machines to simulate human intelligence. This includes machine learning, natural language processing, computer vision, and other technologies that allow computers to learn, reason, and make decisions.",
	},
}

const defaultFallbackResponse = "I'm using a fallback response as the AI service is currently unavailable. Once the connection is restored, I'll provide more personalized and detailed answers to your questions."

// fallbackResponse picks a canned topic-matched answer for a query.
func fallbackResponse(query string) string {
	lower := strings.ToLower(query)
	for _, fb := range fallbackResponses {
		for _, kw := range fb.keywords {
			if strings.Contains(lower, kw) {
				return fb.answer
			}
		}
	}
	return defaultFallbackResponse
}
