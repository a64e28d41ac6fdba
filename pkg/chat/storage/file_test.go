package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aidevedu/chatcore/pkg/chat"
)

func sampleSnapshot() *chat.Snapshot {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &chat.Snapshot{
		Sessions: map[string]*chat.Session{
			"s1": {
				ID:        "s1",
				Title:     "MCP basics",
				CreatedAt: now,
				UpdatedAt: now,
				Model:     "google/gemini-2.0-flash-001",
				Messages: []chat.Message{
					{ID: "m1", Role: chat.RoleUser, Content: "what is mcp?", Timestamp: now},
					{ID: "m2", Role: chat.RoleAssistant, Content: "a protocol", Timestamp: now},
				},
			},
		},
		CurrentSessionID: "s1",
		SelectedModel:    "google/gemini-2.0-flash-001",
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	fs, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	defer func() { _ = fs.Close() }()

	ctx := context.Background()
	if err := fs.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	sess := snap.Sessions["s1"]
	if sess == nil {
		t.Fatal("session s1 missing after round trip")
	}
	if sess.Title != "MCP basics" || len(sess.Messages) != 2 {
		t.Errorf("reloaded session = %+v", sess)
	}
	if snap.CurrentSessionID != "s1" {
		t.Errorf("CurrentSessionID = %q, want s1", snap.CurrentSessionID)
	}
	if snap.SelectedModel != "google/gemini-2.0-flash-001" {
		t.Errorf("SelectedModel = %q", snap.SelectedModel)
	}
}

func TestFileStorageMissingFile(t *testing.T) {
	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "never-written.json"))
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	defer func() { _ = fs.Close() }()

	snap, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Sessions) != 0 {
		t.Errorf("missing file yielded %d sessions, want 0", len(snap.Sessions))
	}
}

func TestFileStorageCorruptFileRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	fs, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	defer func() { _ = fs.Close() }()

	snap, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v, want recovery", err)
	}
	if len(snap.Sessions) != 0 {
		t.Errorf("corrupt file yielded %d sessions, want 0", len(snap.Sessions))
	}

	// The corrupt file is removed so the next load is clean too.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt file was not removed")
	}
}

func TestFileStorageClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	fs, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	defer func() { _ = fs.Close() }()

	ctx := context.Background()
	if err := fs.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	snap, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Sessions) != 0 {
		t.Errorf("Clear() left %d sessions", len(snap.Sessions))
	}
}

func TestFileStorageClosed(t *testing.T) {
	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ctx := context.Background()
	if _, err := fs.Load(ctx); err != ErrStorageClosed {
		t.Errorf("Load() after close error = %v, want ErrStorageClosed", err)
	}
	if err := fs.Save(ctx, sampleSnapshot()); err != ErrStorageClosed {
		t.Errorf("Save() after close error = %v, want ErrStorageClosed", err)
	}
}
