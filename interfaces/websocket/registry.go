// Package websocket carries the realtime side of the API: the session
// registry, the connection hub and the upgrade handler.
package websocket

import (
	"errors"
	"slices"
	"sync"

	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/observability"
)

var (
	ErrRegistryClosed = errors.New("session registry closed")
	ErrSessionLimit   = errors.New("session limit reached for identity")
)

// Registry maps live connection ids to the identity that joined on them.
// A connection belongs to at most one identity; an identity may hold many
// connections.
type Registry struct {
	mu         sync.RWMutex
	byConn     map[string]valueobjects.IdentityID
	byIdentity map[valueobjects.IdentityID]map[string]struct{}
	closed     bool

	metrics *observability.Collector
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(metrics *observability.Collector) *Registry {
	return &Registry{
		byConn:     make(map[string]valueobjects.IdentityID),
		byIdentity: make(map[valueobjects.IdentityID]map[string]struct{}),
		metrics:    metrics,
	}
}

// Join binds connectionID to identity. Joining again rebinds the connection.
func (r *Registry) Join(connectionID string, identity valueobjects.IdentityID) error {
	return r.JoinLimited(connectionID, identity, 0)
}

// JoinLimited is Join with a cap on the identity's connections; max <= 0
// means no cap. A connection already bound to identity never counts
// against the cap.
func (r *Registry) JoinLimited(connectionID string, identity valueobjects.IdentityID, max int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	if current, ok := r.byConn[connectionID]; ok && current == identity {
		return nil
	}
	if max > 0 && len(r.byIdentity[identity]) >= max {
		return ErrSessionLimit
	}

	r.unbind(connectionID)
	r.byConn[connectionID] = identity
	conns := r.byIdentity[identity]
	if conns == nil {
		conns = make(map[string]struct{})
		r.byIdentity[identity] = conns
	}
	conns[connectionID] = struct{}{}

	r.observe()
	return nil
}

// Leave forgets connectionID. Unknown ids are ignored.
func (r *Registry) Leave(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unbind(connectionID) {
		r.observe()
	}
}

func (r *Registry) unbind(connectionID string) bool {
	identity, ok := r.byConn[connectionID]
	if !ok {
		return false
	}
	delete(r.byConn, connectionID)
	conns := r.byIdentity[identity]
	delete(conns, connectionID)
	if len(conns) == 0 {
		delete(r.byIdentity, identity)
	}
	return true
}

// SessionsFor returns the connection ids joined as identity, sorted
func (r *Registry) SessionsFor(identity valueobjects.IdentityID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byIdentity[identity]
	out := make([]string, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// IdentityOf returns the identity bound to connectionID
func (r *Registry) IdentityOf(connectionID string) (valueobjects.IdentityID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byConn[connectionID]
	return id, ok
}

// Count returns the number of joined connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

// Close drops every binding and rejects later joins
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.byConn = make(map[string]valueobjects.IdentityID)
	r.byIdentity = make(map[valueobjects.IdentityID]map[string]struct{})
	r.observe()
}

func (r *Registry) observe() {
	if r.metrics != nil {
		r.metrics.ActiveSessions.Set(float64(len(r.byConn)))
	}
}
