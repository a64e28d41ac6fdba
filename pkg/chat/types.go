// Package chat implements the conversational session core: session
// lifecycle and persistence, token-budget context windowing, message
// pagination, and streamed response assembly against an OpenAI-compatible
// backend.
package chat

import (
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message written by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the model.
	RoleAssistant Role = "assistant"
	// RoleSystem marks an instruction message never shown as conversation.
	RoleSystem Role = "system"
)

// MetadataKind tags a message's transient or terminal state.
// The zero value means "normal".
type MetadataKind string

const (
	// MetaError marks a message settled by a hard failure.
	MetaError MetadataKind = "error"
	// MetaLoading marks a placeholder awaiting its first fragment.
	MetaLoading MetadataKind = "loading"
	// MetaFallback marks a canned best-effort answer substituted for an error.
	MetaFallback MetadataKind = "fallback"
	// MetaTruncated marks the oldest message retained after context windowing.
	MetaTruncated MetadataKind = "truncated"
	// MetaThinking marks an in-progress reasoning indicator.
	MetaThinking MetadataKind = "thinking"
	// MetaSuggestion marks a synthesized suggestion message.
	MetaSuggestion MetadataKind = "suggestion"
)

// Attachment is a reference to a file attached to a user message.
// Only the reference is stored; content summaries for the model are
// rebuilt per request.
type Attachment struct {
	// ID is the unique attachment identifier.
	ID string `json:"id"`
	// Name is the original file name.
	Name string `json:"name"`
	// URL is the retrieval location (may embed auth tokens; sanitized
	// before ever being placed in a prompt).
	URL string `json:"url,omitempty"`
	// Path is the storage path handle.
	Path string `json:"path,omitempty"`
	// Type is the MIME type.
	Type string `json:"type"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Message is one conversational turn. Messages are value snapshots: the
// store hands out copies, and every streamed fragment produces a new
// snapshot rather than mutating shared state.
type Message struct {
	// ID is stable for the lifetime of the message.
	ID string `json:"id"`
	// Role is the author role.
	Role Role `json:"role"`
	// Content is the text body; grows while streaming.
	Content string `json:"content"`
	// Timestamp is bumped on every content change while streaming so
	// downstream change detection always sees a fresh snapshot.
	Timestamp time.Time `json:"timestamp"`
	// Streaming is true while content is being incrementally filled.
	Streaming bool `json:"isStreaming,omitempty"`
	// Metadata describes terminal or transient state; empty means normal.
	Metadata MetadataKind `json:"metadata,omitempty"`
	// Attachments are file references carried by user messages.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Settled reports whether the message has reached a terminal state.
func (m Message) Settled() bool {
	return !m.Streaming
}

// Session is one persisted conversation thread.
type Session struct {
	// ID is the unique session identifier.
	ID string `json:"id"`
	// Title is the display name, derived from the first user message
	// unless renamed.
	Title string `json:"title"`
	// Messages is the ordered log; messages[0] is conventionally the
	// system message. Append-only except for explicit reset.
	Messages []Message `json:"messages"`
	// CreatedAt is when the session was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is bumped on every mutation, monotonically non-decreasing.
	UpdatedAt time.Time `json:"updatedAt"`
	// Model is the backend model id selected for this session.
	Model string `json:"model,omitempty"`
	// Topic is an optional main topic label.
	Topic string `json:"topic,omitempty"`
	// Category groups similar sessions in a session list.
	Category string `json:"category,omitempty"`
}

// Clone returns a deep copy so callers can never alias store state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = cloneMessages(s.Messages)
	return &out
}

func cloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		if len(out[i].Attachments) > 0 {
			atts := make([]Attachment, len(out[i].Attachments))
			copy(atts, out[i].Attachments)
			out[i].Attachments = atts
		}
	}
	return out
}
