// Package provider implements the client for the OpenAI-compatible
// chat-completion backend, in both full-response and streaming modes.
package provider

import "context"

// Message is a chat message in wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat-completion request.
type Request struct {
	// Model is the backend model id.
	Model string `json:"model"`
	// Messages is the ordered conversation payload.
	Messages []Message `json:"messages"`
	// Temperature controls randomness.
	Temperature float32 `json:"temperature,omitempty"`
	// MaxTokens caps the generated response length.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Response is a complete (non-streamed) chat-completion response.
type Response struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	// FinishReason explains why generation stopped.
	FinishReason string `json:"finish_reason,omitempty"`
}

// Chunk is one incremental fragment of a streamed response.
type Chunk struct {
	// Delta is the incremental content.
	Delta string `json:"delta"`
	// FinishReason is set on the final chunk.
	FinishReason string `json:"finish_reason,omitempty"`
}

// Stream delivers response fragments in production order. Recv returns
// io.EOF when the stream is exhausted.
type Stream interface {
	Recv() (*Chunk, error)
	Close() error
}

// Client is the interface to the model backend.
type Client interface {
	// Complete issues a request in full-response mode.
	Complete(ctx context.Context, req Request) (*Response, error)

	// CompleteStream issues a request in streaming mode. The caller owns
	// the returned stream and must close it.
	CompleteStream(ctx context.Context, req Request) (Stream, error)

	// Configured reports whether backend credentials are present. When
	// false, callers short-circuit without a network call.
	Configured() bool
}

// Error is a structured backend failure.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Retryable  bool   `json:"is_retryable"`
	original   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "provider error: " + e.Message
}

// Unwrap returns the original error.
func (e *Error) Unwrap() error {
	return e.original
}

// Error codes.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeAuthentication = "authentication_error"
	ErrorCodeRateLimit      = "rate_limit_exceeded"
	ErrorCodeServerError    = "server_error"
	ErrorCodeTimeout        = "timeout"
	ErrorCodeModelNotFound  = "model_not_found"
	ErrorCodeUnknown        = "unknown_error"
)

// NewError creates a structured provider error.
func NewError(code, message string, original error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		original:  original,
		Retryable: retryable(code),
	}
}

func retryable(code string) bool {
	switch code {
	case ErrorCodeRateLimit, ErrorCodeServerError, ErrorCodeTimeout:
		return true
	default:
		return false
	}
}
