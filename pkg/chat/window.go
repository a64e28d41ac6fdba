package chat

// windowMessages selects the subset of a conversation that fits the token
// budget. All system messages are always retained and counted against the
// budget. Short conversations pass through unchanged. Otherwise non-system
// messages are accumulated newest to oldest until the budget is reached,
// then returned in chronological order. The oldest retained non-system
// message is tagged truncated when anything older was dropped, so the UI
// can disclose the cut. The result is never empty for non-empty input: the
// newest non-system message is kept even when it alone exceeds the budget.
func windowMessages(messages []Message) []Message {
	if len(messages) == 0 {
		return nil
	}

	var system, rest []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	if len(rest) <= minWindowMessages {
		return cloneMessages(messages)
	}

	budget := 0
	for _, m := range system {
		budget += EstimateTokens(m.Content)
	}

	// Walk newest to oldest, stopping before the budget is exceeded.
	var kept []Message
	truncated := false
	for i := len(rest) - 1; i >= 0; i-- {
		cost := EstimateTokens(rest[i].Content)
		if budget+cost > maxContextTokens && len(kept) > 0 {
			truncated = true
			break
		}
		kept = append(kept, rest[i])
		budget += cost
	}

	// Restore chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}

	out := make([]Message, 0, len(system)+len(kept))
	out = append(out, cloneMessages(system)...)
	out = append(out, cloneMessages(kept)...)

	if truncated {
		for i := range out {
			if out[i].Role != RoleSystem {
				out[i].Metadata = MetaTruncated
				break
			}
		}
	}

	return out
}
