package chat

import "sync"

// Hub keeps one chat session per video.
type Hub struct {
	mu       sync.Mutex
	opts     Options
	sessions map[string]*Session
}

// NewHub creates a hub whose sessions share opts.
func NewHub(opts Options) *Hub {
	return &Hub{opts: opts, sessions: make(map[string]*Session)}
}

// Open returns the session of videoID, starting it if needed.
func (h *Hub) Open(videoID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[videoID]; ok {
		return s
	}
	s := NewSession(videoID, h.opts)
	h.sessions[videoID] = s
	return s
}

// Get returns the session of videoID if one is open.
func (h *Hub) Get(videoID string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[videoID]
	return s, ok
}

// Leave closes and forgets the session of videoID.
func (h *Hub) Leave(videoID string) bool {
	h.mu.Lock()
	s, ok := h.sessions[videoID]
	delete(h.sessions, videoID)
	h.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Close closes every open session.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
