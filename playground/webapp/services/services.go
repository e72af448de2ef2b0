// Package services holds the demo services wired by the generated registry.
package services

import (
	"fmt"
	"sync"

	"github.com/beynacjs/ioc"
)

// UserStore is a tiny in-memory user directory shared by every request.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewUserStore builds the shared user directory.
//
// @provide lifecycle=singleton
func NewUserStore() *UserStore {
	return &UserStore{
		users: map[string]string{
			"ada":   "Ada Lovelace",
			"grace": "Grace Hopper",
		},
	}
}

// Lookup returns the display name for a handle, or the handle itself.
func (s *UserStore) Lookup(handle string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name, ok := s.users[handle]; ok {
		return name
	}
	return handle
}

// Add registers a display name under a handle.
func (s *UserStore) Add(handle, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[handle] = name
}

// Greeter renders greetings against the user directory.
type Greeter struct {
	store *UserStore
}

// NewGreeter builds a greeter on top of the shared user directory.
//
// @provide tags="web"
func NewGreeter() *Greeter {
	return &Greeter{
		store: ioc.Inject[*UserStore](ioc.Ctor(NewUserStore)),
	}
}

// Greet formats a greeting for the given handle.
func (g *Greeter) Greet(handle string) string {
	return fmt.Sprintf("Hello, %s!", g.store.Lookup(handle))
}

// RequestTrace collects per-request notes; one instance exists per request
// scope and is flushed to the log when the request ends.
type RequestTrace struct {
	mu    sync.Mutex
	Notes []string
}

// NewRequestTrace builds an empty trace.
//
// @provide lifecycle=scoped
func NewRequestTrace() *RequestTrace {
	return &RequestTrace{}
}

// Note appends an entry to the trace.
func (t *RequestTrace) Note(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Notes = append(t.Notes, fmt.Sprintf(format, args...))
}

// Drain returns the collected notes.
func (t *RequestTrace) Drain() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	notes := t.Notes
	t.Notes = nil
	return notes
}
