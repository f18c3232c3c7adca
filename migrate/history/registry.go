package history

import (
	"sort"
	"sync"
)

// Registry remembers which scripts have been executed during a session.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Contains reports whether name has been recorded
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.names[name]
	return ok
}

// Add records name and reports whether it was new.
func (r *Registry) Add(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return false
	}
	r.names[name] = struct{}{}
	return true
}

// Names returns the recorded names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of recorded names
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}
