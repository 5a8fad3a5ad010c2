package main

import (
	"math/rand"

	"github.com/gitgameshow/gitgameshow/games"
)

// ProviderRotator picks the mini-game for each round. With three or more
// games in the catalog the same game never runs twice in a row; smaller
// catalogs stay fully random so selection never starves.
type ProviderRotator struct {
	factories []games.Factory
	available []int
	used      []int
	rng       *rand.Rand
}

// NewProviderRotator takes the fixed catalog and a seeded source so tests
// can be deterministic. The catalog must be non-empty.
func NewProviderRotator(factories []games.Factory, rng *rand.Rand) *ProviderRotator {
	r := &ProviderRotator{factories: factories, rng: rng}
	r.repopulate()
	return r
}

// Next returns a fresh provider instance for the coming round.
func (r *ProviderRotator) Next() games.MiniGame {
	if len(r.factories) == 1 {
		return r.factories[0]()
	}
	if len(r.available) == 0 {
		r.repopulate()
	}
	pick := r.rng.Intn(len(r.available))
	idx := r.available[pick]
	r.available = append(r.available[:pick], r.available[pick+1:]...)
	r.used = append(r.used, idx)
	return r.factories[idx]()
}

// Reset clears the rotation history for a new game.
func (r *ProviderRotator) Reset() {
	r.used = nil
	r.repopulate()
}

// repopulate refills the pool with every game except the one just played.
// Catalogs of two or fewer refill completely.
func (r *ProviderRotator) repopulate() {
	var last = -1
	if len(r.factories) > 2 && len(r.used) > 0 {
		last = r.used[len(r.used)-1]
	}
	r.available = r.available[:0]
	for i := range r.factories {
		if i == last {
			continue
		}
		r.available = append(r.available, i)
	}
}
