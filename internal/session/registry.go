package session

import (
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"jeux/internal/core/errs"
	"jeux/internal/player"
)

// Registry holds the live set of Client sessions, enforcing the server's
// capacity cap and implementing the graceful-shutdown quiescence protocol.
// The "condition-variable-like rendezvous" the design calls for is realized
// directly with sync.Cond: WaitForEmpty can have an arbitrary number of
// concurrent waiters, and Broadcast releases all of them together once the
// live count reaches zero.
type Registry struct {
	mu      sync.Mutex
	cond    *sync.Cond
	clients map[*Client]struct{}
	max     int
}

// NewRegistry returns an empty client registry admitting at most max
// concurrently registered sessions.
func NewRegistry(max int) *Registry {
	r := &Registry{clients: make(map[*Client]struct{}), max: max}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Register wraps conn in a new Client and adds it to the live set. It fails
// with ErrCapacity if max sessions are already registered.
func (r *Registry) Register(conn net.Conn, log logrus.FieldLogger) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.clients) >= r.max {
		return nil, errs.ErrCapacity
	}
	c := NewClient(conn, log)
	r.clients[c] = struct{}{}
	return c, nil
}

// Unregister removes c from the live set, waking any WaitForEmpty callers if
// the set has just become empty.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	delete(r.clients, c)
	empty := len(r.clients) == 0
	r.mu.Unlock()

	if empty {
		r.cond.Broadcast()
	}
}

// IsNameInUse reports whether some live session is currently logged in as name.
func (r *Registry) IsNameInUse(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if p := c.Player(); p != nil && p.Name() == name {
			return true
		}
	}
	return false
}

// Lookup returns the live session currently logged in as name, or nil.
func (r *Registry) Lookup(name string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if p := c.Player(); p != nil && p.Name() == name {
			return c
		}
	}
	return nil
}

// AllPlayers snapshots the set of currently logged-in Players.
func (r *Registry) AllPlayers() []*player.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*player.Player, 0, len(r.clients))
	for c := range r.clients {
		if p := c.Player(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of currently registered sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// ShutdownAll half-closes the read side of every live session's socket.
// Sessions are not removed here; each session's own loop unregisters once it
// observes EOF.
func (r *Registry) ShutdownAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		c.Shutdown()
	}
}

// WaitForEmpty blocks until the live-session count reaches zero, then
// returns. Concurrent callers are all released together when the count
// transitions to zero; a call that finds the count already zero returns
// immediately.
func (r *Registry) WaitForEmpty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.clients) > 0 {
		r.cond.Wait()
	}
}
