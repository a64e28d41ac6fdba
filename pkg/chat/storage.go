package chat

import "context"

// Snapshot is the full persisted state: the session map, the current
// session pointer, and the selected model. A save always serializes the
// latest in-memory state at fire time, never a stale copy captured when
// the write was scheduled.
type Snapshot struct {
	Sessions         map[string]*Session `json:"chatSessions"`
	CurrentSessionID string              `json:"currentSessionId,omitempty"`
	SelectedModel    string              `json:"selectedModel,omitempty"`
}

// Storage abstracts durable key/value persistence for the session map.
// Implementations must treat absent or corrupt data as empty rather than
// failing startup, clearing anything unparsable.
type Storage interface {
	// Load retrieves the persisted snapshot. Missing or corrupt data
	// yields an empty snapshot, not an error.
	Load(ctx context.Context) (*Snapshot, error)

	// Save persists the snapshot, replacing any previous state.
	Save(ctx context.Context, snap *Snapshot) error

	// Clear removes all persisted state.
	Clear(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}
