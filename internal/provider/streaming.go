package provider

import (
	"io"
	"sync"
)

// SimulatedStream replays a complete response as a stream of fixed-size
// fragments. Used when the backend unexpectedly returns a full response in
// streaming mode, and by tests.
type SimulatedStream struct {
	content      string
	position     int
	chunkSize    int
	finishReason string
	closed       bool
	mu           sync.Mutex
}

// NewSimulatedStream creates a stream over content emitting chunkSize
// characters per Recv.
func NewSimulatedStream(content, finishReason string, chunkSize int) *SimulatedStream {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &SimulatedStream{
		content:      content,
		chunkSize:    chunkSize,
		finishReason: finishReason,
	}
}

// Recv returns the next fragment, with the finish reason attached to the
// last one.
func (s *SimulatedStream) Recv() (*Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.position >= len(s.content) {
		return nil, io.EOF
	}

	end := s.position + s.chunkSize
	if end > len(s.content) {
		end = len(s.content)
	}

	chunk := &Chunk{Delta: s.content[s.position:end]}
	s.position = end
	if s.position >= len(s.content) {
		chunk.FinishReason = s.finishReason
	}
	return chunk, nil
}

// Close terminates the stream; subsequent Recv calls return io.EOF.
func (s *SimulatedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
