package player

import (
	"sort"

	gocache "github.com/patrickmn/go-cache"
)

// Registry interns Players by username: at most one live Player exists per
// name for the process lifetime, and entries are never evicted. Grounded on
// the process-lifetime, never-expiring cache pattern used elsewhere in the
// example pack for interning by key.
type Registry struct {
	cache *gocache.Cache
}

// NewRegistry returns an empty player registry.
func NewRegistry() *Registry {
	return &Registry{cache: gocache.New(gocache.NoExpiration, gocache.NoExpiration)}
}

// Register returns the existing Player for name if one exists, or creates,
// inserts, and returns a new one. The insert is atomic: concurrent calls for
// the same never-before-seen name always agree on a single winning Player.
func (r *Registry) Register(name string) *Player {
	candidate := New(name)
	if err := r.cache.Add(name, candidate, gocache.NoExpiration); err == nil {
		return candidate
	}
	if v, ok := r.cache.Get(name); ok {
		return v.(*Player)
	}
	return candidate
}

// All returns a snapshot of every Player ever registered, sorted by name.
func (r *Registry) All() []*Player {
	items := r.cache.Items()
	out := make([]*Player, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*Player))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
