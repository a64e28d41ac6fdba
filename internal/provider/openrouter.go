package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient talks to an OpenAI-compatible endpoint (OpenRouter by
// default). Requests are paced by a client-side limiter so bursts from the
// UI never trip the upstream rate limit immediately.
type OpenRouterClient struct {
	api     *openai.Client
	apiKey  string
	limiter *rate.Limiter
}

// NewOpenRouterClient creates a client for baseURL using apiKey. An empty
// baseURL selects OpenRouter. The client is usable with an empty apiKey;
// Configured() reports false and callers are expected to short-circuit.
func NewOpenRouterClient(apiKey, baseURL string) *OpenRouterClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	return &OpenRouterClient{
		api:     openai.NewClientWithConfig(cfg),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// Configured reports whether an API key is present.
func (c *OpenRouterClient) Configured() bool {
	return c.apiKey != ""
}

// Complete issues a request in full-response mode.
func (c *OpenRouterClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, NewError(ErrorCodeTimeout, err.Error(), err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(req, false))
	if err != nil {
		return nil, wrapAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, NewError(ErrorCodeUnknown, "no choices in response", nil)
	}

	return &Response{
		ID:           resp.ID,
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

// CompleteStream issues a request in streaming mode.
func (c *OpenRouterClient) CompleteStream(ctx context.Context, req Request) (Stream, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, NewError(ErrorCodeTimeout, err.Error(), err)
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, c.buildRequest(req, true))
	if err != nil {
		return nil, wrapAPIError(err)
	}

	return &openrouterStream{inner: stream}, nil
}

func (c *OpenRouterClient) buildRequest(req Request, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

// wrapAPIError converts go-openai failures into structured Errors.
func wrapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ErrorCodeUnknown
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			code = ErrorCodeAuthentication
		case http.StatusTooManyRequests:
			code = ErrorCodeRateLimit
		case http.StatusBadRequest:
			code = ErrorCodeInvalidRequest
		case http.StatusNotFound:
			code = ErrorCodeModelNotFound
		default:
			if apiErr.HTTPStatusCode >= 500 {
				code = ErrorCodeServerError
			}
		}
		perr := NewError(code, apiErr.Message, err)
		perr.StatusCode = apiErr.HTTPStatusCode
		return perr
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewError(ErrorCodeServerError, fmt.Sprintf("request failed with status %d", reqErr.HTTPStatusCode), err)
	}

	return NewError(ErrorCodeTimeout, err.Error(), err)
}

// openrouterStream adapts the go-openai stream to the Stream interface.
// The library consumes the SSE framing (data: {json} frames terminated by
// a data: [DONE] sentinel) and surfaces decoded deltas.
type openrouterStream struct {
	inner *openai.ChatCompletionStream
}

func (s *openrouterStream) Recv() (*Chunk, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, wrapAPIError(err)
		}

		if len(resp.Choices) == 0 {
			continue
		}

		choice := resp.Choices[0]
		return &Chunk{
			Delta:        choice.Delta.Content,
			FinishReason: string(choice.FinishReason),
		}, nil
	}
}

func (s *openrouterStream) Close() error {
	return s.inner.Close()
}
