package chat

import (
	"fmt"
	"strings"
	"testing"
)

func msg(role Role, content string) Message {
	return Message{ID: fmt.Sprintf("m-%s-%d", role, len(content)), Role: role, Content: content}
}

func totalTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += EstimateTokens(m.Content)
	}
	return total
}

func TestWindowMessagesShortConversationPassesThrough(t *testing.T) {
	messages := []Message{
		msg(RoleSystem, "system prompt"),
		msg(RoleUser, "hello"),
		msg(RoleAssistant, "hi"),
		msg(RoleUser, "what is MCP?"),
	}

	got := windowMessages(messages)
	if len(got) != len(messages) {
		t.Fatalf("windowMessages() kept %d messages, want %d", len(got), len(messages))
	}
	for i := range got {
		if got[i].Metadata == MetaTruncated {
			t.Errorf("message %d tagged truncated in a pass-through window", i)
		}
	}
}

func TestWindowMessagesKeepsSystemAndNewest(t *testing.T) {
	// Each message costs ~330 tokens, so only a tail fits in 4000.
	big := strings.Repeat("w", 1000)
	messages := []Message{msg(RoleSystem, "rules")}
	for i := 0; i < 30; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		m := msg(role, big)
		m.ID = fmt.Sprintf("m%02d", i)
		messages = append(messages, m)
	}

	got := windowMessages(messages)

	if got[0].Role != RoleSystem {
		t.Fatal("system message was dropped or reordered")
	}
	if totalTokens(got) > maxContextTokens {
		t.Errorf("window cost %d exceeds budget %d", totalTokens(got), maxContextTokens)
	}
	last := got[len(got)-1]
	if last.ID != "m29" {
		t.Errorf("newest message missing: tail is %s", last.ID)
	}

	// Chronological order within the window.
	for i := 2; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("window out of order: %s before %s", got[i-1].ID, got[i].ID)
		}
	}

	// The oldest retained non-system message carries the truncation tag.
	if got[1].Metadata != MetaTruncated {
		t.Errorf("oldest retained message metadata = %q, want %q", got[1].Metadata, MetaTruncated)
	}
	for i := 2; i < len(got); i++ {
		if got[i].Metadata == MetaTruncated {
			t.Errorf("extra truncation tag on message %d", i)
		}
	}
}

func TestWindowMessagesOversizedNewestSurvives(t *testing.T) {
	huge := strings.Repeat("z", 20000) // ~6600 tokens, alone over budget
	messages := []Message{
		msg(RoleUser, "old question"),
		msg(RoleAssistant, "old answer"),
		msg(RoleUser, "older still"),
		msg(RoleAssistant, "yet another"),
		{ID: "newest", Role: RoleUser, Content: huge},
	}

	got := windowMessages(messages)
	if len(got) == 0 {
		t.Fatal("windowMessages() returned empty window")
	}
	if got[len(got)-1].ID != "newest" {
		t.Errorf("newest message dropped; tail is %s", got[len(got)-1].ID)
	}
}

func TestWindowMessagesEmpty(t *testing.T) {
	if got := windowMessages(nil); got != nil {
		t.Errorf("windowMessages(nil) = %v, want nil", got)
	}
}

func TestWindowMessagesDoesNotMutateInput(t *testing.T) {
	big := strings.Repeat("w", 2000)
	var messages []Message
	for i := 0; i < 20; i++ {
		messages = append(messages, msg(RoleUser, big))
	}

	windowMessages(messages)
	for i, m := range messages {
		if m.Metadata != "" {
			t.Fatalf("input message %d mutated: metadata %q", i, m.Metadata)
		}
	}
}
