package wevolor

import "sync"

// ClientRegistry maps config entry ids to the live Client of each bridge.
// Entries are added on setup and removed on unload.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewClientRegistry creates an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]Client)}
}

// Add registers client for entryID, replacing any previous one.
func (r *ClientRegistry) Add(entryID string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[entryID] = client
}

// Get returns the client of entryID.
func (r *ClientRegistry) Get(entryID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[entryID]
	return c, ok
}

// Remove drops the client of entryID and reports whether one was present.
func (r *ClientRegistry) Remove(entryID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.clients[entryID]
	delete(r.clients, entryID)
	return ok
}
