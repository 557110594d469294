package importer

import "sync"

// Tracker hands out tickets per draft session so that a slow import can
// check, before its result is applied, that no newer import for the same
// session has started in the meantime. It does not cancel anything.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	current map[string]uint64
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]uint64)}
}

// Begin starts a new import for session and returns its ticket. Tickets are
// never reused, across sessions included.
func (t *Tracker) Begin(session string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current[session] = t.seq
	return t.seq
}

// IsCurrent reports whether ticket is still the latest for session.
func (t *Tracker) IsCurrent(session string, ticket uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[session] == ticket
}

// Finish forgets session if ticket is still the latest one.
func (t *Tracker) Finish(session string, ticket uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current[session] == ticket {
		delete(t.current, session)
	}
}
