package monitor

import (
	"sync"

	"pakfs/internal/hash"
)

// ChangeFunc is invoked with the changed logical path. It captures whatever
// reload context it needs as a closure.
type ChangeFunc func(path string)

// Registry maps hashed logical paths to reload callbacks. One callback per
// path; re-registering replaces. The registry has its own lock and is never
// touched under a Buffer mutex, so registration can't contend with the
// watcher's append path.
//
// Known race, kept from the original design: a callback looked up by a poll
// that is already in flight may still fire after Unregister returns.
type Registry struct {
	mu    sync.RWMutex
	items map[uint32]ChangeFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[uint32]ChangeFunc)}
}

// Register installs fn for path, replacing any previous registration.
func (r *Registry) Register(path string, fn ChangeFunc) {
	key := hash.Str(path)
	r.mu.Lock()
	r.items[key] = fn
	r.mu.Unlock()
}

// Unregister removes the registration for path, reporting whether one
// existed.
func (r *Registry) Unregister(path string) bool {
	key := hash.Str(path)
	r.mu.Lock()
	_, ok := r.items[key]
	delete(r.items, key)
	r.mu.Unlock()
	return ok
}

// Lookup returns the callback registered for path, if any.
func (r *Registry) Lookup(path string) (ChangeFunc, bool) {
	key := hash.Str(path)
	r.mu.RLock()
	fn, ok := r.items[key]
	r.mu.RUnlock()
	return fn, ok
}

// Len returns the number of live registrations. Non-zero at manager
// teardown means leaked watches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Clear drops every registration and returns how many there were.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.items)
	r.items = make(map[uint32]ChangeFunc)
	return n
}
