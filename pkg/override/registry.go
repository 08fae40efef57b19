// Package override holds per-viewer display name overrides.
//
// A Registry maps an owner identity (the entity or player whose name tag
// is overridden) to the viewers that currently see an override and the
// override they see. An absent viewer entry means "no active override";
// it never means "override equals the empty string".
//
// A Registry lives as long as the hosting session. Owner sub-maps are
// never torn down.
package override

import "sync"

// Registry is the two-level override map.
// The zero value is not usable, use New.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	owners map[string]map[string]string // owner -> viewer -> override
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{owners: map[string]map[string]string{}}
}

// Ensure creates an empty sub-map for owner if it is absent.
func (r *Registry) Ensure(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(owner)
}

func (r *Registry) ensure(owner string) map[string]string {
	viewers, ok := r.owners[owner]
	if !ok {
		viewers = map[string]string{}
		r.owners[owner] = viewers
	}
	return viewers
}

// Set inserts or overwrites the override of owner seen by viewer.
func (r *Registry) Set(owner, viewer, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(owner)[viewer] = value
}

// Get returns the override of owner seen by viewer.
// ok is false if no override is active.
func (r *Registry) Get(owner, viewer string) (value string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok = r.owners[owner][viewer]
	return
}

// Has reports whether an override of owner is active for viewer.
func (r *Registry) Has(owner, viewer string) bool {
	_, ok := r.Get(owner, viewer)
	return ok
}

// Remove deletes the override of owner seen by viewer
// and reports whether there was one.
func (r *Registry) Remove(owner, viewer string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	viewers, ok := r.owners[owner]
	if !ok {
		return false
	}
	if _, ok = viewers[viewer]; !ok {
		return false
	}
	delete(viewers, viewer)
	return true
}

// Known reports whether owner has been observed.
func (r *Registry) Known(owner string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.owners[owner]
	return ok
}

// Owners returns the number of observed owners.
func (r *Registry) Owners() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

// Viewers returns a copy of the active overrides of owner.
func (r *Registry) Viewers(owner string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	viewers := r.owners[owner]
	cp := make(map[string]string, len(viewers))
	for viewer, value := range viewers {
		cp[viewer] = value
	}
	return cp
}
