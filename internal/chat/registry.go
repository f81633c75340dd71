package chat

import (
	"slices"
	"sync"
)

// Registry - set of live peers limited by capacity.
// All access is serialized with a single mutex; writes into peers happen outside of it.
type Registry struct {
	mu    sync.Mutex
	max   int
	seq   uint64
	peers map[Identity]*Peer
}

// NewRegistry - builds registry for at most max peers.
func NewRegistry(max int) *Registry {
	return &Registry{
		max:   max,
		peers: make(map[Identity]*Peer),
	}
}

// Cap - returns capacity of the registry.
func (r *Registry) Cap() int {
	return r.max
}

// Len - returns number of admitted peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

// TryAdmit - registers the peer if there is a free slot.
// Returns false when the registry is full or the identity is registered already.
func (r *Registry) TryAdmit(p *Peer) bool {
	if p == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.peers) >= r.max {
		return false
	}
	if _, ok := r.peers[p.id]; ok {
		return false
	}
	r.seq++
	p.seq = r.seq
	r.peers[p.id] = p
	return true
}

// Remove - drops the peer by identity. Unknown identity is a no-op.
// Returns true only for the call which actually removed the peer.
func (r *Registry) Remove(id Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[id]; !ok {
		return false
	}
	delete(r.peers, id)
	return true
}

// Snapshot - copies registered peers except the excluded one, in admission order.
// Pass empty identity to get all of them.
func (r *Registry) Snapshot(exclude Identity) []*Peer {
	r.mu.Lock()
	peers := make([]*Peer, 0, len(r.peers))
	for id, p := range r.peers {
		if id == exclude {
			continue
		}
		peers = append(peers, p)
	}
	r.mu.Unlock()

	slices.SortFunc(peers, func(a, b *Peer) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})
	return peers
}
