package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aidevedu/chatcore/pkg/chat"
)

// MemoryStorage keeps the snapshot in memory. It round-trips through JSON
// on every save/load so it exercises the same serialization path as the
// durable backends, which makes it the default test double.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
	// SaveCount counts completed saves, for assertions on debouncing.
	SaveCount int
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load deserializes the last saved snapshot.
func (m *MemoryStorage) Load(ctx context.Context) (*chat.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return emptySnapshot(), nil
	}

	var snap chat.Snapshot
	if err := json.Unmarshal(m.data, &snap); err != nil {
		m.data = nil
		return emptySnapshot(), nil
	}
	if snap.Sessions == nil {
		snap.Sessions = make(map[string]*chat.Session)
	}
	return &snap, nil
}

// Save serializes and retains the snapshot.
func (m *MemoryStorage) Save(ctx context.Context, snap *chat.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.SaveCount++
	return nil
}

// Clear drops the retained snapshot.
func (m *MemoryStorage) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error { return nil }
