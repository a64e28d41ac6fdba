// Package storage provides durable persistence backends for chat session
// state: a JSON file store for single-user use and a Redis store for
// shared deployments.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/aidevedu/chatcore/pkg/chat"
)

// ErrStorageClosed is returned when operating on a closed backend.
var ErrStorageClosed = errors.New("storage backend is closed")

// FileStorage persists the session snapshot as a single JSON file.
type FileStorage struct {
	path   string
	mu     sync.Mutex
	closed bool
}

// NewFileStorage creates a file-backed store at path. If path is empty,
// ~/.chatcore/sessions.json is used. Parent directories are created.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, ".chatcore", "sessions.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &FileStorage{path: path}, nil
}

// Load reads the snapshot. A missing file yields an empty snapshot; a
// corrupt file is removed and likewise treated as empty so startup never
// fails on bad data.
func (f *FileStorage) Load(ctx context.Context) (*chat.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrStorageClosed
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptySnapshot(), nil
		}
		return nil, fmt.Errorf("read sessions file: %w", err)
	}

	var snap chat.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[storage] corrupt sessions file, starting fresh: %v", err)
		_ = f.removeLocked()
		return emptySnapshot(), nil
	}

	if snap.Sessions == nil {
		snap.Sessions = make(map[string]*chat.Session)
	}
	return &snap, nil
}

// Save writes the snapshot atomically via a temp file rename.
func (f *FileStorage) Save(ctx context.Context, snap *chat.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStorageClosed
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write sessions file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace sessions file: %w", err)
	}
	return nil
}

// Clear removes the persisted file.
func (f *FileStorage) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStorageClosed
	}
	return f.removeLocked()
}

func (f *FileStorage) removeLocked() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove sessions file: %w", err)
	}
	return nil
}

// Close marks the backend closed.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func emptySnapshot() *chat.Snapshot {
	return &chat.Snapshot{Sessions: make(map[string]*chat.Session)}
}
