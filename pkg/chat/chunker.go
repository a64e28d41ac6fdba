package chat

// chunkMessages partitions a message log into overlapping pages for UI
// pagination. System messages are replicated into every page. Non-system
// messages are grouped into conversation turns (a maximal run ending at an
// assistant message, or the trailing run when the conversation ends on a
// user message), and turns are packed into pages with pageOverlapTurns of
// overlap so paging keeps short-range context. Degenerate inputs fall back
// to fixed-size slicing. Never returns zero pages for non-empty input.
func chunkMessages(messages []Message) [][]Message {
	if len(messages) <= maxMessagesPerPage {
		return [][]Message{cloneMessages(messages)}
	}

	var system, rest []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	// Group into turns.
	var turns [][]Message
	var current []Message
	for i, m := range rest {
		current = append(current, m)
		if m.Role == RoleAssistant || i == len(rest)-1 {
			turns = append(turns, current)
			current = nil
		}
	}

	maxTurns := (maxMessagesPerPage - len(system)) / 2
	if maxTurns < 1 {
		maxTurns = 1
	}

	var pages [][]Message
	for i := 0; i < len(turns); i += maxTurns {
		start := i
		if i > 0 {
			start = i - pageOverlapTurns
			if start < 0 {
				start = 0
			}
		}
		end := i + maxTurns + pageOverlapTurns
		if end > len(turns) {
			end = len(turns)
		}

		page := cloneMessages(system)
		for _, turn := range turns[start:end] {
			page = append(page, cloneMessages(turn)...)
		}
		pages = append(pages, page)
	}

	// Degenerate input: no turns were formed. Slice the raw list.
	if len(pages) == 0 {
		for i := 0; i < len(messages); i += maxMessagesPerPage {
			end := i + maxMessagesPerPage
			if end > len(messages) {
				end = len(messages)
			}
			pages = append(pages, cloneMessages(messages[i:end]))
		}
	}

	return pages
}
