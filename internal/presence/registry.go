// Package presence is the single source of truth for which connection, if
// any, currently represents a given identity.
package presence

import (
	"sync"
)

// Conn is the transport handle the registry points at: addressable for
// outbound pushes, identified for disconnect cleanup. The relay server
// owns connection lifetime; the registry stores only the association.
type Conn interface {
	ConnID() string
	Push(event string, payload interface{}) error
}

// Registry maps identity to live connection and back. The reverse index
// makes disconnect cleanup O(1) and keeps a stale disconnect from evicting
// an identity that has since reconnected on a newer connection.
type Registry struct {
	mu         sync.RWMutex
	byIdentity map[string]Conn
	byConn     map[string]string // conn id -> identity
}

func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]Conn),
		byConn:     make(map[string]string),
	}
}

// Announce binds identity to conn, displacing any previous binding for the
// identity. Last announcement wins. Announcing the same pair repeatedly is
// idempotent.
func (r *Registry) Announce(identity string, conn Conn) {
	if identity == "" || conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Unlink the identity's previous connection so its eventual
	// disconnect cannot touch the new binding.
	if prev, ok := r.byIdentity[identity]; ok && prev.ConnID() != conn.ConnID() {
		delete(r.byConn, prev.ConnID())
	}
	// The conn may have announced a different identity earlier; drop it.
	if prevIdentity, ok := r.byConn[conn.ConnID()]; ok && prevIdentity != identity {
		delete(r.byIdentity, prevIdentity)
	}

	r.byIdentity[identity] = conn
	r.byConn[conn.ConnID()] = identity
}

// Lookup returns the live connection for identity, if present.
func (r *Registry) Lookup(identity string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byIdentity[identity]
	return conn, ok
}

// Remove drops whatever identity is bound to this exact connection. A
// connection whose identity was re-announced elsewhere finds no entry here
// and removes nothing.
func (r *Registry) Remove(conn Conn) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byConn[conn.ConnID()]
	if !ok {
		return
	}
	delete(r.byConn, conn.ConnID())

	if cur, ok := r.byIdentity[identity]; ok && cur.ConnID() == conn.ConnID() {
		delete(r.byIdentity, identity)
	}
}

// IsOnline reports whether identity has a live connection right now.
func (r *Registry) IsOnline(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byIdentity[identity]
	return ok
}

// Count returns the number of identities currently online.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byIdentity)
}
