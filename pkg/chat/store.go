package chat

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds every chat session in memory and mirrors mutations to a
// Storage backend through a debounced saver. All exported methods are
// safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	storage Storage

	sessions      map[string]*Session
	currentID     string
	selectedModel string

	// paginated view of the current session
	pages     [][]Message
	pageIndex int

	saver *saver
	now   func() time.Time
}

// NewStore loads the persisted snapshot from storage and returns a
// ready store. Corrupt or partial snapshots are repaired rather than
// rejected: missing models fall back to the selected model, missing
// timestamps are backfilled, and a dangling current-session pointer is
// re-targeted at the most recently updated session.
func NewStore(ctx context.Context, backend Storage) (*Store, error) {
	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	s := &Store{
		storage:  backend,
		sessions: make(map[string]*Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.saver = newSaver(saveDebounce, s.persist)

	s.selectedModel = snap.SelectedModel
	if !ValidModel(s.selectedModel) {
		s.selectedModel = DefaultModel
	}

	for id, sess := range snap.Sessions {
		if sess == nil {
			continue
		}
		if sess.ID == "" {
			sess.ID = id
		}
		s.repair(sess)
		s.sessions[sess.ID] = sess
	}

	s.currentID = snap.CurrentSessionID
	if _, ok := s.sessions[s.currentID]; !ok {
		s.currentID = s.mostRecentID()
	}
	if s.currentID == "" {
		s.createSessionLocked("")
	}
	s.rechunkLocked()
	return s, nil
}

// repair backfills fields an older or hand-edited snapshot may lack.
func (s *Store) repair(sess *Session) {
	if !ValidModel(sess.Model) {
		sess.Model = s.selectedModel
	}
	if sess.Title == "" {
		sess.Title = "New Chat"
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = sess.CreatedAt
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == "" {
			sess.Messages[i].ID = uuid.NewString()
		}
		if sess.Messages[i].Timestamp.IsZero() {
			sess.Messages[i].Timestamp = sess.UpdatedAt
		}
	}
}

func (s *Store) mostRecentID() string {
	var id string
	var latest time.Time
	for _, sess := range s.sessions {
		if id == "" || sess.UpdatedAt.After(latest) {
			id = sess.ID
			latest = sess.UpdatedAt
		}
	}
	return id
}

// touch bumps the session's UpdatedAt without ever moving it backwards.
func (s *Store) touch(sess *Session) {
	now := s.now()
	if now.After(sess.UpdatedAt) {
		sess.UpdatedAt = now
	}
}

// CreateSession starts a new session, optionally themed around a topic,
// and makes it current. The new session opens with the system prompt
// and the assistant greeting.
func (s *Store) CreateSession(topic string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.createSessionLocked(topic)
	s.rechunkLocked()
	s.saver.Schedule()
	return id
}

func (s *Store) createSessionLocked(topic string) string {
	now := s.now()
	title := "New Chat"
	greeting := greetingMessage
	if topic != "" {
		title = topic + " Chat"
		greeting = fmt.Sprintf("Let's talk about %s. What would you like to know?", topic)
	}
	sess := &Session{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Model:     s.selectedModel,
		Topic:     topic,
		Messages: []Message{
			{
				ID:        uuid.NewString(),
				Role:      RoleSystem,
				Content:   defaultSystemPrompt,
				Timestamp: now,
			},
			{
				ID:        uuid.NewString(),
				Role:      RoleAssistant,
				Content:   greeting,
				Timestamp: now,
			},
		},
	}
	s.sessions[sess.ID] = sess
	s.currentID = sess.ID
	return sess.ID
}

// GetSession returns a deep copy of the session, or nil when unknown.
func (s *Store) GetSession(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return sess.Clone()
}

// GetCurrentSession returns a deep copy of the current session.
func (s *Store) GetCurrentSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[s.currentID]
	if !ok {
		return nil
	}
	return sess.Clone()
}

// CurrentSessionID returns the id of the current session.
func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// SetCurrentSession switches the current session. Switching settles any
// streaming message the session was abandoned with.
func (s *Store) SetCurrentSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	s.currentID = id
	if s.settleStreamingLocked(sess) {
		s.saver.Schedule()
	}
	s.rechunkLocked()
	return true
}

// DeleteSession removes a session. Deleting the current session falls
// back to the most recently updated survivor, or creates a fresh
// session when none remain.
func (s *Store) DeleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	if s.currentID == id {
		s.currentID = s.mostRecentID()
		if s.currentID == "" {
			s.createSessionLocked("")
		}
		s.rechunkLocked()
	}
	s.saver.Schedule()
	return true
}

// DeleteAllSessions wipes every session and the persisted snapshot,
// leaving a single fresh session behind.
func (s *Store) DeleteAllSessions(ctx context.Context) error {
	s.mu.Lock()
	s.sessions = make(map[string]*Session)
	s.currentID = ""
	s.createSessionLocked("")
	s.rechunkLocked()
	s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	s.saver.Schedule()
	return nil
}

// RenameSession sets a session's title.
func (s *Store) RenameSession(id, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || title == "" {
		return false
	}
	sess.Title = title
	s.touch(sess)
	s.saver.Schedule()
	return true
}

// SetCategory tags a session with a category used for grouping in the
// session list.
func (s *Store) SetCategory(id, category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Category = category
	s.touch(sess)
	s.saver.Schedule()
	return true
}

// ResetChat clears the current session back to its opening messages.
func (s *Store) ResetChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[s.currentID]
	if !ok {
		return
	}
	now := s.now()
	sess.Messages = []Message{
		{
			ID:        uuid.NewString(),
			Role:      RoleSystem,
			Content:   defaultSystemPrompt,
			Timestamp: now,
		},
		{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			Content:   greetingMessage,
			Timestamp: now,
		},
	}
	s.touch(sess)
	s.rechunkLocked()
	s.saver.Schedule()
}

// Sessions returns deep copies of every session, most recently updated
// first.
func (s *Store) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SessionsByCategory groups sessions by category. Sessions without a
// category land under "General".
func (s *Store) SessionsByCategory() map[string][]*Session {
	grouped := make(map[string][]*Session)
	for _, sess := range s.Sessions() {
		cat := sess.Category
		if cat == "" {
			cat = "General"
		}
		grouped[cat] = append(grouped[cat], sess)
	}
	return grouped
}

// Models lists the available model catalog.
func (s *Store) Models() []Model {
	out := make([]Model, len(DefaultModels))
	copy(out, DefaultModels)
	return out
}

// SelectedModel returns the model new sessions and sends will use.
func (s *Store) SelectedModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedModel
}

// SetModel switches the selected model for the store and the current
// session. Unknown model ids are rejected.
func (s *Store) SetModel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ValidModel(id) {
		return false
	}
	s.selectedModel = id
	if sess, ok := s.sessions[s.currentID]; ok {
		sess.Model = id
		s.touch(sess)
	}
	s.saver.Schedule()
	return true
}

// CurrentPage returns a copy of the current page of the current
// session's messages.
func (s *Store) CurrentPage() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) == 0 {
		return nil
	}
	return cloneMessages(s.pages[s.pageIndex])
}

// PageCount reports how many pages the current session spans.
func (s *Store) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// PageIndex reports the zero-based index of the current page.
func (s *Store) PageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageIndex
}

// NextPage advances to the next page if one exists.
func (s *Store) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pageIndex+1 >= len(s.pages) {
		return false
	}
	s.pageIndex++
	return true
}

// PreviousPage steps back to the previous page if one exists.
func (s *Store) PreviousPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pageIndex == 0 {
		return false
	}
	s.pageIndex--
	return true
}

// ClearAllStreamingStates settles any message still marked streaming in
// any session, replacing abandoned placeholders with an interruption
// notice. It reports whether anything changed.
func (s *Store) ClearAllStreamingStates() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, sess := range s.sessions {
		if s.settleStreamingLocked(sess) {
			changed = true
		}
	}
	if changed {
		s.rechunkLocked()
		s.saver.Schedule()
	}
	return changed
}

// settleStreamingLocked finalizes any in-flight message in the session.
// A placeholder that never received content becomes an interruption
// notice; a partially streamed message keeps its content.
func (s *Store) settleStreamingLocked(sess *Session) bool {
	changed := false
	for i := range sess.Messages {
		msg := &sess.Messages[i]
		if !msg.Streaming && msg.Metadata != MetaLoading {
			continue
		}
		msg.Streaming = false
		if msg.Content == "" {
			msg.Content = interruptedMessage
			msg.Metadata = MetaError
		} else if msg.Metadata == MetaLoading {
			msg.Metadata = ""
		}
		changed = true
	}
	if changed {
		s.touch(sess)
	}
	return changed
}

// rechunkLocked rebuilds the page view for the current session and
// keeps the cursor on the newest page.
func (s *Store) rechunkLocked() {
	sess, ok := s.sessions[s.currentID]
	if !ok {
		s.pages = nil
		s.pageIndex = 0
		return
	}
	s.pages = chunkMessages(sess.Messages)
	if len(s.pages) == 0 {
		s.pages = [][]Message{nil}
	}
	s.pageIndex = len(s.pages) - 1
}

// appendMessageLocked adds a message to the session and refreshes the
// page view when the session is current.
func (s *Store) appendMessageLocked(sess *Session, msg Message) {
	sess.Messages = append(sess.Messages, msg)
	s.touch(sess)
	if sess.ID == s.currentID {
		s.rechunkLocked()
	}
}

// snapshotLocked serializes the live state for persistence.
func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Sessions:         make(map[string]*Session, len(s.sessions)),
		CurrentSessionID: s.currentID,
		SelectedModel:    s.selectedModel,
	}
	for id, sess := range s.sessions {
		snap.Sessions[id] = sess.Clone()
	}
	return snap
}

// persist is the saver's write function. It snapshots whatever the
// state is at fire time, so coalesced bursts always land the newest
// data.
func (s *Store) persist() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Save(ctx, &snap); err != nil {
		log.Printf("[store] save sessions: %v", err)
	}
}

// VerifyStorage reads the persisted snapshot to prove the backend is
// reachable. Used by health probes.
func (s *Store) VerifyStorage(ctx context.Context) error {
	_, err := s.storage.Load(ctx)
	return err
}

// Flush forces any pending debounced write to disk now.
func (s *Store) Flush() {
	s.saver.Flush()
}

// Close flushes pending writes and releases the storage backend.
func (s *Store) Close() error {
	s.saver.Flush()
	return s.storage.Close()
}
