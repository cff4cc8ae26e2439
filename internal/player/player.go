// Package player implements named player identities with Elo-style ratings.
package player

import (
	"math"
	"sync"
)

// InitialRating is the rating assigned to every newly created Player.
const InitialRating = 1500.0

// Player is an immutable username paired with a mutable rating.
type Player struct {
	name string

	mu     sync.Mutex
	rating float64
}

// New creates a Player with the given name and the initial rating. Callers
// should generally go through a Registry rather than calling New directly,
// so that at most one Player exists per username for the process lifetime.
func New(name string) *Player {
	return &Player{name: name, rating: InitialRating}
}

// Name returns the player's username. Names are immutable after creation.
func (p *Player) Name() string {
	return p.name
}

// Rating returns a best-effort snapshot of the player's current rating.
func (p *Player) Rating() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rating
}

// Result identifies the outcome of a completed game for PostResult.
type Result uint8

const (
	Draw  Result = 0
	Win1  Result = 1
	Win2  Result = 2
)

// PostResult applies the Elo rating update for a completed game between p1
// and p2 with outcome r. Each player's rating is locked and updated
// independently, never both at once, so PostResult cannot deadlock against
// a concurrent PostResult naming the same two players in the opposite order.
func PostResult(p1, p2 *Player, r Result) {
	r1 := p1.Rating()
	r2 := p2.Rating()

	var s1, s2 float64
	switch r {
	case Win1:
		s1, s2 = 1, 0
	case Win2:
		s1, s2 = 0, 1
	default:
		s1, s2 = 0.5, 0.5
	}

	e1 := 1 / (1 + math.Pow(10, (r2-r1)/400))
	e2 := 1 / (1 + math.Pow(10, (r1-r2)/400))

	p1.mu.Lock()
	p1.rating += 32 * (s1 - e1)
	p1.mu.Unlock()

	p2.mu.Lock()
	p2.rating += 32 * (s2 - e2)
	p2.mu.Unlock()
}
