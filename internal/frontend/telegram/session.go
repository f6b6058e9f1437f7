package telegram

import (
	"sync"

	"github.com/vadimtrunov/cinescope/internal/discover"
)

// chatSession is one user's browsing state: the view being paged and its
// paginator. The latest fetch wins; older ones complete with ErrStale.
type chatSession struct {
	mu        sync.Mutex
	view      discover.Session
	title     string
	paginator *discover.Paginator
}

func (cs *chatSession) setView(view discover.Session, title string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.view = view
	cs.title = title
}

func (cs *chatSession) snapshot() (discover.Session, string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.view, cs.title
}

// SessionFactory creates a new session for a user.
type SessionFactory func() *chatSession

// sessionManager manages per-user sessions and access control.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*chatSession
	allowed  map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		sessions: make(map[int64]*chatSession),
		allowed:  allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// getOrCreate returns an existing session or creates one using the factory.
// A nil session from the factory is not cached so the next call can retry.
func (sm *sessionManager) getOrCreate(userID int64, factory SessionFactory) *chatSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if cs, ok := sm.sessions[userID]; ok {
		return cs
	}
	cs := factory()
	if cs == nil {
		return nil
	}
	sm.sessions[userID] = cs
	return cs
}

// lookup returns the user's session without creating one.
func (sm *sessionManager) lookup(userID int64) (*chatSession, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	cs, ok := sm.sessions[userID]
	return cs, ok
}

// reset drops a user's session. Fetches still in flight on it complete stale.
func (sm *sessionManager) reset(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if cs, ok := sm.sessions[userID]; ok {
		cs.paginator.SetQuery(cs.paginator.Query())
	}
	delete(sm.sessions, userID)
}
