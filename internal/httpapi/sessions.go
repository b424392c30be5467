package httpapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/profileform"
)

// sessionEntry pairs a session with the last notice it raised, so the
// transport can hand the notice to the client on the next response.
type sessionEntry struct {
	session *profileform.Session

	mu     sync.Mutex
	notice *profileform.Notice
}

func (e *sessionEntry) record(n profileform.Notice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = &n
}

// takeNotice returns the pending notice, if any, and clears it.
func (e *sessionEntry) takeNotice() *profileform.Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.notice
	e.notice = nil
	return n
}

// SessionRegistry holds the open form sessions of this process. Sessions idle
// for longer than the TTL are abandoned by Sweep.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
	logger   logger.Logger
}

func NewSessionRegistry(ttl time.Duration, log logger.Logger) *SessionRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SessionRegistry{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
		logger:   log,
	}
}

// open creates a session and registers it. opts.OnNotice is replaced.
func (r *SessionRegistry) open(opts profileform.SessionOptions) *sessionEntry {
	entry := &sessionEntry{}
	opts.OnNotice = entry.record
	entry.session = profileform.NewSession(opts)

	r.mu.Lock()
	r.sessions[entry.session.ID()] = entry
	r.mu.Unlock()
	return entry
}

func (r *SessionRegistry) get(id string) (*sessionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return entry, nil
}

// remove abandons and forgets the session.
func (r *SessionRegistry) remove(id string) error {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	entry.session.Abandon()
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle past the TTL and returns how many went.
// A session with a sink call outstanding is left alone.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*sessionEntry
	for id, entry := range r.sessions {
		if entry.session.State() == profileform.StateSubmitting {
			continue
		}
		if entry.session.LastActivity().Before(cutoff) {
			expired = append(expired, entry)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, entry := range expired {
		entry.session.Abandon()
	}
	if len(expired) > 0 {
		r.logger.Info("expired form sessions removed", map[string]interface{}{
			"count":     len(expired),
			"remaining": r.Len(),
		})
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close abandons every session.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	entries := r.sessions
	r.sessions = make(map[string]*sessionEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.session.Abandon()
	}
}
