package provider

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestSimulatedStream(t *testing.T) {
	s := NewSimulatedStream("hello world!", "stop", 5)

	var got string
	var finish string
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		got += chunk.Delta
		if chunk.FinishReason != "" {
			finish = chunk.FinishReason
		}
	}

	if got != "hello world!" {
		t.Errorf("reassembled content = %q", got)
	}
	if finish != "stop" {
		t.Errorf("finish reason = %q, want stop", finish)
	}
}

func TestSimulatedStreamClose(t *testing.T) {
	s := NewSimulatedStream("content", "stop", 3)
	if _, err := s.Recv(); err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("Recv() after Close() error = %v, want io.EOF", err)
	}
}

func TestSimulatedStreamEmptyContent(t *testing.T) {
	s := NewSimulatedStream("", "stop", 10)
	if _, err := s.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("Recv() on empty content error = %v, want io.EOF", err)
	}
}

func TestWrapAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrorCodeAuthentication},
		{name: "forbidden", status: http.StatusForbidden, want: ErrorCodeAuthentication},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrorCodeRateLimit},
		{name: "bad request", status: http.StatusBadRequest, want: ErrorCodeInvalidRequest},
		{name: "model missing", status: http.StatusNotFound, want: ErrorCodeModelNotFound},
		{name: "server error", status: http.StatusBadGateway, want: ErrorCodeServerError},
		{name: "teapot", status: http.StatusTeapot, want: ErrorCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := &openai.APIError{HTTPStatusCode: tt.status, Message: "backend failure"}
			wrapped := wrapAPIError(apiErr)

			var perr *Error
			if !errors.As(wrapped, &perr) {
				t.Fatalf("wrapAPIError() = %T, want *Error", wrapped)
			}
			if perr.Code != tt.want {
				t.Errorf("code = %q, want %q", perr.Code, tt.want)
			}
			if perr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", perr.StatusCode, tt.status)
			}
		})
	}
}

func TestWrapAPIErrorPlainError(t *testing.T) {
	wrapped := wrapAPIError(errors.New("dial tcp: connection refused"))
	var perr *Error
	if !errors.As(wrapped, &perr) {
		t.Fatalf("wrapAPIError() = %T, want *Error", wrapped)
	}
	if perr.Code != ErrorCodeTimeout {
		t.Errorf("code = %q, want %q", perr.Code, ErrorCodeTimeout)
	}
	if perr.Unwrap() == nil {
		t.Error("original error lost")
	}
}

func TestErrorRetryable(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{ErrorCodeRateLimit, true},
		{ErrorCodeServerError, true},
		{ErrorCodeTimeout, true},
		{ErrorCodeAuthentication, false},
		{ErrorCodeInvalidRequest, false},
		{ErrorCodeModelNotFound, false},
	}

	for _, tt := range tests {
		err := NewError(tt.code, "x", nil)
		if got := err.Retryable; got != tt.want {
			t.Errorf("NewError(%s).Retryable = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestNewOpenRouterClientConfigured(t *testing.T) {
	if NewOpenRouterClient("", "").Configured() {
		t.Error("client without key reports configured")
	}
	if !NewOpenRouterClient("sk-test", "").Configured() {
		t.Error("client with key reports unconfigured")
	}
}
