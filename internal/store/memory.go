package store

import (
	"sync"

	"carai-site-backend/internal/assistant"
	"carai-site-backend/internal/intake"
)

// Registry holds per-visitor chat sessions and intake forms for the lifetime
// of the process. Lookups are get-or-create: the first call for a session ID
// constructs the object, every later call returns the same handle.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*assistant.Session
	forms    map[string]*intake.Form
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*assistant.Session),
		forms:    make(map[string]*intake.Form),
	}
}

// Session returns the chat session for sid, creating it on first use.
func (r *Registry) Session(sid string, create func() *assistant.Session) *assistant.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		return s
	}
	s := create()
	r.sessions[sid] = s
	return s
}

// Form returns the intake form for sid, creating it on first use.
func (r *Registry) Form(sid string, create func() *intake.Form) *intake.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.forms[sid]; ok {
		return f
	}
	f := create()
	r.forms[sid] = f
	return f
}
