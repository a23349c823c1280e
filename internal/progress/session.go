package progress

import "sync"

// Session is the per-conversation key-value carrier. Its lifecycle is
// owned by the caller; the engine reads and writes a single key.
type Session interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// SessionStore hands out the session for a conversation, creating it
// on first reference.
type SessionStore interface {
	Session(conversationID string) Session
}

// MemorySession is a map-backed Session safe for concurrent use.
type MemorySession struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySession creates an empty in-memory session.
func NewMemorySession() *MemorySession {
	return &MemorySession{values: make(map[string]string)}
}

func (s *MemorySession) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemorySession) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// MemorySessionStore keeps one session per conversation in memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*MemorySession
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*MemorySession)}
}

func (s *MemorySessionStore) Session(conversationID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[conversationID]
	if !ok {
		sess = NewMemorySession()
		s.sessions[conversationID] = sess
	}
	return sess
}
