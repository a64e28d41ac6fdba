package chat

import (
	"sync"
	"time"
)

// saveDebounce is the coalescing delay between a mutation and the write
// it schedules.
const saveDebounce = 300 * time.Millisecond

// saver coalesces a burst of mutations into a single deferred write. The
// write function is invoked at fire time and is expected to serialize the
// latest in-memory state, so a late trigger can never persist a stale
// snapshot. Flush runs any pending write synchronously for deterministic
// teardown.
type saver struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	write func()
}

func newSaver(delay time.Duration, write func()) *saver {
	if delay <= 0 {
		delay = saveDebounce
	}
	return &saver{delay: delay, write: write}
}

// Schedule arms (or re-arms) the pending write.
func (s *saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		s.write()
	})
}

// Flush cancels any pending timer and writes immediately if one was
// armed.
func (s *saver) Flush() {
	s.mu.Lock()
	pending := s.timer != nil
	if pending {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if pending {
		s.write()
	}
}
