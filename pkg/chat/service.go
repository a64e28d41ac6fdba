package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidevedu/chatcore/internal/observability"
	"github.com/aidevedu/chatcore/internal/provider"
	"github.com/aidevedu/chatcore/internal/search"
)

// ServiceOptions tunes the chat service.
type ServiceOptions struct {
	// Fallback serves a canned best-effort answer when the backend
	// fails mid-request instead of surfacing only the error notice.
	Fallback bool
	// Simulate answers locally through a simulated stream without
	// contacting the backend. Used for offline demos and tests.
	Simulate bool
	// Temperature is forwarded to the backend.
	Temperature float32
	// MaxTokens caps response length; zero leaves it to the backend.
	MaxTokens int
}

// Service orchestrates a conversation turn: it folds repeated sends
// back into their in-flight turn, assembles the request payload within
// the token budget, runs the stream, and settles the assistant message
// on every outcome.
type Service struct {
	store   *Store
	client  provider.Client
	search  *search.Client
	metrics *observability.Metrics
	opts    ServiceOptions
}

// NewService wires a service from its collaborators. search and
// metrics may be nil, disabling resource suggestions and
// instrumentation respectively.
func NewService(store *Store, client provider.Client, searchClient *search.Client, metrics *observability.Metrics, opts ServiceOptions) *Service {
	return &Service{
		store:   store,
		client:  client,
		search:  searchClient,
		metrics: metrics,
		opts:    opts,
	}
}

// Store exposes the underlying session store.
func (s *Service) Store() *Store { return s.store }

// Configured reports whether the backend client has credentials.
func (s *Service) Configured() bool { return s.client.Configured() }

// SendStreamingMessage runs one conversation turn in the current
// session. relevant carries documentation search hits that are folded
// into a context system message for this request. onUpdate receives a
// snapshot of the assistant message after every state change, including
// incremental content while streaming. The user message is recorded
// even when the turn fails; the settled assistant message is returned
// alongside any error.
func (s *Service) SendStreamingMessage(ctx context.Context, content string, attachments []Attachment, relevant []search.Result, onUpdate func(Message)) (Message, error) {
	if onUpdate == nil {
		onUpdate = func(Message) {}
	}

	sessionID, placeholderID, req, first, err := s.beginTurn(content, attachments, relevant)
	if err != nil {
		return Message{}, err
	}
	onUpdate(first)

	if s.opts.Simulate {
		return s.runStream(ctx, sessionID, placeholderID, content, provider.NewSimulatedStream(fallbackResponse(content), "stop", 0), onUpdate)
	}

	if !s.client.Configured() {
		msg := s.settle(sessionID, placeholderID, missingCredentialsMessage, MetaError)
		onUpdate(msg)
		return msg, nil
	}

	stream, err := s.client.CompleteStream(ctx, req)
	if err != nil {
		return s.failTurn(sessionID, placeholderID, content, req.Model, err, onUpdate)
	}
	return s.runStream(ctx, sessionID, placeholderID, content, stream, onUpdate)
}

// beginTurn validates and records the user message, settles any
// abandoned stream, and appends the streaming placeholder. A send that
// repeats the latest unanswered user message reuses that turn instead
// of duplicating it. It returns the assembled backend request and the
// placeholder snapshot.
func (s *Service) beginTurn(content string, attachments []Attachment, relevant []search.Result) (sessionID, placeholderID string, req provider.Request, first Message, err error) {
	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		return "", "", provider.Request{}, Message{}, errors.New("empty message")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	sess, ok := s.store.sessions[s.store.currentID]
	if !ok {
		s.store.createSessionLocked("")
		sess = s.store.sessions[s.store.currentID]
	}

	// The same content arriving while its reply is still pending is the
	// UI re-invoking a turn already in flight. The turn is reused: its
	// reply resets to a fresh placeholder and the request goes out
	// again, without recording a second user message.
	if userIdx, dup := pendingDuplicate(sess.Messages, content, attachments); dup {
		ph := s.reusePlaceholderLocked(sess, userIdx)
		req = s.buildRequestLocked(sess, sess.Messages[userIdx], ph.ID, relevant)
		s.store.saver.Schedule()
		return sess.ID, ph.ID, req, ph, nil
	}

	// A leftover streaming message means a previous turn was abandoned.
	// Settle it before starting a new one.
	s.store.settleStreamingLocked(sess)

	now := s.store.now()
	userMsg := Message{
		ID:          uuid.NewString(),
		Role:        RoleUser,
		Content:     content,
		Timestamp:   now,
		Attachments: append([]Attachment(nil), attachments...),
	}
	s.store.appendMessageLocked(sess, userMsg)
	s.retitleLocked(sess, content)

	placeholder := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: now,
		Streaming: true,
		Metadata:  MetaLoading,
	}
	s.store.appendMessageLocked(sess, placeholder)
	req = s.buildRequestLocked(sess, userMsg, placeholder.ID, relevant)
	s.store.saver.Schedule()
	return sess.ID, placeholder.ID, req, placeholder, nil
}

// reusePlaceholderLocked resets the assistant reply that follows the
// user message at userIdx back to a loading placeholder. When the turn
// never got a reply message at all, one is appended.
func (s *Service) reusePlaceholderLocked(sess *Session, userIdx int) Message {
	now := s.store.now()
	for i := userIdx + 1; i < len(sess.Messages); i++ {
		if sess.Messages[i].Role != RoleAssistant {
			continue
		}
		msg := &sess.Messages[i]
		msg.Content = ""
		msg.Streaming = true
		msg.Metadata = MetaLoading
		msg.Timestamp = now
		s.store.touch(sess)
		if sess.ID == s.store.currentID {
			s.store.rechunkLocked()
		}
		return *msg
	}

	ph := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: now,
		Streaming: true,
		Metadata:  MetaLoading,
	}
	s.store.appendMessageLocked(sess, ph)
	return ph
}

// SendMessage runs one turn in full-response mode and returns the
// assistant's reply content. The full response is replayed through a
// simulated stream so the session records the same settle sequence as
// a live stream.
func (s *Service) SendMessage(ctx context.Context, content string, attachments []Attachment) (string, error) {
	sessionID, placeholderID, req, _, err := s.beginTurn(content, attachments, nil)
	if err != nil {
		return "", err
	}

	if s.opts.Simulate {
		final, err := s.runStream(ctx, sessionID, placeholderID, content, provider.NewSimulatedStream(fallbackResponse(content), "stop", 0), nil)
		return final.Content, err
	}

	if !s.client.Configured() {
		final := s.settle(sessionID, placeholderID, missingCredentialsMessage, MetaError)
		return final.Content, nil
	}

	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		_, err = s.failTurn(sessionID, placeholderID, content, req.Model, err, nil)
		return "", err
	}
	final, err := s.runStream(ctx, sessionID, placeholderID, content, provider.NewSimulatedStream(resp.Content, resp.FinishReason, 0), nil)
	if err != nil {
		return "", err
	}
	return final.Content, nil
}

// runStream drains the stream into the placeholder message, publishing
// a snapshot per fragment, and returns the settled message.
func (s *Service) runStream(ctx context.Context, sessionID, messageID, userContent string, stream provider.Stream, onUpdate func(Message)) (Message, error) {
	if onUpdate == nil {
		onUpdate = func(Message) {}
	}
	defer stream.Close()
	start := time.Now()
	model := s.store.SelectedModel()

	for {
		select {
		case <-ctx.Done():
			return s.failTurn(sessionID, messageID, userContent, model, ctx.Err(), onUpdate)
		default:
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.failTurn(sessionID, messageID, userContent, model, err, onUpdate)
		}
		if chunk.Delta == "" {
			continue
		}
		msg, ok := s.appendDelta(sessionID, messageID, chunk.Delta)
		if ok {
			onUpdate(msg)
		}
	}

	final := s.settle(sessionID, messageID, "", "")
	onUpdate(final)
	if s.metrics != nil {
		s.metrics.MessagesSent.WithLabelValues(model).Inc()
		s.metrics.StreamDuration.Observe(time.Since(start).Seconds())
	}
	return final, nil
}

// failTurn settles the placeholder after a backend failure. With
// fallback enabled and a canned answer available, the turn degrades to
// a fallback response; otherwise the user sees the classified error
// notice. The underlying error is returned either way.
func (s *Service) failTurn(sessionID, messageID, userContent, model string, err error, onUpdate func(Message)) (Message, error) {
	if onUpdate == nil {
		onUpdate = func(Message) {}
	}
	category := ClassifyError(err)
	log.Printf("[chat] send failed (%s): %v", category, err)
	if s.metrics != nil {
		s.metrics.SendFailures.WithLabelValues(string(category)).Inc()
	}

	if s.opts.Fallback {
		if answer := fallbackResponse(userContent); answer != "" {
			msg := s.settle(sessionID, messageID, answer, MetaFallback)
			onUpdate(msg)
			if s.metrics != nil {
				s.metrics.FallbacksServed.Inc()
			}
			return msg, err
		}
	}

	msg := s.settle(sessionID, messageID, category.UserMessage(model), MetaError)
	onUpdate(msg)
	return msg, err
}

// appendDelta adds streamed content to the message and returns the
// updated snapshot.
func (s *Service) appendDelta(sessionID, messageID, delta string) (Message, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	sess, ok := s.store.sessions[sessionID]
	if !ok {
		return Message{}, false
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID != messageID {
			continue
		}
		msg := &sess.Messages[i]
		msg.Content += delta
		msg.Timestamp = s.store.now()
		if msg.Metadata == MetaLoading {
			msg.Metadata = ""
		}
		s.store.touch(sess)
		return *msg, true
	}
	return Message{}, false
}

// settle finalizes the placeholder: streaming off, loading cleared,
// optional content and terminal metadata applied, state persisted.
func (s *Service) settle(sessionID, messageID, content string, meta MetadataKind) Message {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	sess, ok := s.store.sessions[sessionID]
	if !ok {
		return Message{}
	}
	var settled Message
	for i := range sess.Messages {
		if sess.Messages[i].ID != messageID {
			continue
		}
		msg := &sess.Messages[i]
		msg.Streaming = false
		if content != "" {
			msg.Content = content
		}
		if meta != "" {
			msg.Metadata = meta
		} else if msg.Metadata == MetaLoading {
			msg.Metadata = ""
		}
		msg.Timestamp = s.store.now()
		settled = *msg
		break
	}
	s.store.touch(sess)
	if sess.ID == s.store.currentID {
		s.store.rechunkLocked()
	}
	s.store.saver.Schedule()
	return settled
}

// buildRequestLocked assembles the payload for one turn: system prompt
// with documentation context, a context message carrying relevant
// search hits, the recent settled history, and the user message with
// its attachment briefing prepended.
func (s *Service) buildRequestLocked(sess *Session, userMsg Message, placeholderID string, relevant []search.Result) provider.Request {
	history := recentHistory(sess.Messages, userMsg.ID, placeholderID)

	payload := []Message{{Role: RoleSystem, Content: defaultSystemPrompt}}
	if cm := contextMessage(relevant); cm != "" {
		payload = append(payload, Message{Role: RoleSystem, Content: cm})
	}
	payload = append(payload, history...)

	// The briefing goes first: its instructions tell the model how to
	// treat the files before the query that follows.
	turn := userMsg
	if briefing := summarizeAttachments(userMsg.Attachments); briefing != "" {
		turn.Content = strings.TrimSpace(briefing + "\n\n" + turn.Content)
	}
	payload = append(payload, turn)
	payload = injectDocumentation(payload, userMsg.Content)

	windowed := windowMessages(payload)
	if len(windowed) < len(payload) && s.metrics != nil {
		s.metrics.ContextTruncated.Inc()
	}

	wire := make([]provider.Message, 0, len(windowed))
	for _, m := range windowed {
		wire = append(wire, provider.Message{Role: string(m.Role), Content: m.Content})
	}
	return provider.Request{
		Model:       sess.Model,
		Messages:    wire,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	}
}

// recentHistory returns the trailing settled user and assistant
// messages, excluding the new turn and its placeholder.
func recentHistory(messages []Message, excludeIDs ...string) []Message {
	skip := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[id] = true
	}
	var history []Message
	for _, m := range messages {
		if m.Role == RoleSystem || skip[m.ID] || !m.Settled() {
			continue
		}
		if m.Metadata == MetaError || m.Metadata == MetaLoading {
			continue
		}
		history = append(history, m)
	}
	if len(history) > recentHistoryLimit {
		history = history[len(history)-recentHistoryLimit:]
	}
	return history
}

// contextMessage renders documentation search hits into the system
// context message injected alongside the main prompt.
func contextMessage(relevant []search.Result) string {
	if len(relevant) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("RELEVANT CONTENT:\n")
	for i, r := range relevant {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		path := r.Path
		if path == "" {
			path = "Unknown"
		}
		fmt.Fprintf(&b, "CONTENT %d: %s\nSOURCE: %s\n---\n%s\n---", i+1, title, path, r.Content)
	}
	return b.String()
}

// pendingDuplicate reports whether content repeats the latest user
// message with the same attachments while no completed assistant reply
// has landed since, returning that user message's index.
func pendingDuplicate(messages []Message, content string, attachments []Attachment) (int, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		switch m.Role {
		case RoleAssistant:
			if m.Settled() && m.Content != "" {
				return 0, false
			}
		case RoleUser:
			if m.Content == content && sameAttachmentSet(m.Attachments, attachments) {
				return i, true
			}
			return 0, false
		}
	}
	return 0, false
}

func sameAttachmentSet(a, b []Attachment) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]bool, len(a))
	for _, att := range a {
		ids[att.ID] = true
	}
	for _, att := range b {
		if !ids[att.ID] {
			return false
		}
	}
	return true
}

// retitleLocked names a fresh session after its first real user
// message and tags its topic and category.
func (s *Service) retitleLocked(sess *Session, content string) {
	if sess.Title != "New Chat" || content == "" {
		return
	}
	sess.Title = deriveTitle(content)
	topic, category := categorizeContent(content)
	if sess.Topic == "" {
		sess.Topic = topic
	}
	if sess.Category == "" {
		sess.Category = category
	}
}

// RelevantContent searches the documentation index for content related
// to the query, for injection into the request as context. Search
// failures degrade to no context.
func (s *Service) RelevantContent(ctx context.Context, query string) []search.Result {
	if s.search == nil {
		return nil
	}
	topics := ExtractTopics(query)
	if len(topics) == 0 {
		return nil
	}
	results, err := s.search.Search(ctx, topics)
	if err != nil {
		log.Printf("[chat] content search: %v", err)
		return nil
	}
	return results
}

// ResourceRecommendations suggests documentation pages related to the
// current conversation. Search failures degrade to no suggestions.
func (s *Service) ResourceRecommendations(ctx context.Context) []search.Suggestion {
	if s.search == nil {
		return nil
	}
	sess := s.store.GetCurrentSession()
	if sess == nil {
		return nil
	}
	var topics []string
	for i := len(sess.Messages) - 1; i >= 0 && len(topics) == 0; i-- {
		if sess.Messages[i].Role == RoleUser {
			topics = ExtractTopics(sess.Messages[i].Content)
		}
	}
	if len(topics) == 0 {
		return nil
	}
	suggestions, err := s.search.Suggest(ctx, topics)
	if err != nil {
		log.Printf("[chat] resource search: %v", err)
		return nil
	}
	return suggestions
}

// FollowUps proposes follow-up questions for the latest assistant
// reply.
func (s *Service) FollowUps() []string {
	sess := s.store.GetCurrentSession()
	if sess == nil {
		return nil
	}
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		m := sess.Messages[i]
		if m.Role == RoleAssistant && m.Settled() && m.Content != "" {
			return FollowUpQuestions(m.Content)
		}
	}
	return nil
}
