package safety

import (
	"sync"
	"time"
)

// SessionState is the engine's view of one conversation.
type SessionState struct {
	SessionID    string
	Level        EscalationLevel
	AgeBand      AgeBand
	MessageCount int
	Categories   map[RiskCategory]int // how often each category was seen
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s SessionState) clone() SessionState {
	out := s
	out.Categories = make(map[RiskCategory]int, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	return out
}

// trackedSession guards one session's state with its own lock, so
// concurrent updates to different sessions never contend.
type trackedSession struct {
	mu    sync.Mutex
	state SessionState
}

// Tracker holds per-session escalation state in memory. Sessions are
// created on first update; the only way a session's level goes down
// is an explicit Reset.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*trackedSession
	now      func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*trackedSession),
		now:      time.Now,
	}
}

func (t *Tracker) entry(sessionID string) *trackedSession {
	t.mu.RLock()
	ts, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if ok {
		return ts
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if ts, ok = t.sessions[sessionID]; ok {
		return ts
	}
	ts = &trackedSession{state: SessionState{
		SessionID:  sessionID,
		Level:      LevelNone,
		AgeBand:    BandUnknown,
		Categories: make(map[RiskCategory]int),
		CreatedAt:  t.now(),
	}}
	t.sessions[sessionID] = ts
	return ts
}

// Update records one classified message against a session and returns
// the resulting state. The new level is the join of the prior level
// and the given floor, so it never decreases. Updates to the same
// session are serialized.
func (t *Tracker) Update(sessionID string, band AgeBand, floor EscalationLevel, signals []RiskSignal) SessionState {
	ts := t.entry(sessionID)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.state.Level = MaxLevel(ts.state.Level, floor)
	ts.state.MessageCount++
	if band != BandUnknown {
		ts.state.AgeBand = band
	}
	for _, s := range signals {
		if s.Category != CategoryNone {
			ts.state.Categories[s.Category]++
		}
	}
	ts.state.UpdatedAt = t.now()
	return ts.state.clone()
}

// Snapshot returns a copy of a session's state without modifying it.
func (t *Tracker) Snapshot(sessionID string) (SessionState, bool) {
	t.mu.RLock()
	ts, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if !ok {
		return SessionState{}, false
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.state.clone(), true
}

// Reset clears a session's escalation state back to LevelNone and
// reports whether the session existed. This is the only de-escalation
// path.
func (t *Tracker) Reset(sessionID string) bool {
	t.mu.RLock()
	ts, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if !ok {
		return false
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.state.Level = LevelNone
	ts.state.Categories = make(map[RiskCategory]int)
	ts.state.MessageCount = 0
	ts.state.UpdatedAt = t.now()
	return true
}

// Remove drops a session entirely.
func (t *Tracker) Remove(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[sessionID]; !ok {
		return false
	}
	delete(t.sessions, sessionID)
	return true
}

// Sessions returns a snapshot of all tracked sessions.
func (t *Tracker) Sessions() []SessionState {
	t.mu.RLock()
	entries := make([]*trackedSession, 0, len(t.sessions))
	for _, ts := range t.sessions {
		entries = append(entries, ts)
	}
	t.mu.RUnlock()

	out := make([]SessionState, 0, len(entries))
	for _, ts := range entries {
		ts.mu.Lock()
		out = append(out, ts.state.clone())
		ts.mu.Unlock()
	}
	return out
}
