// internal/game/assign.go
package game

import "math/rand"

// assignRound computes one round of target/word assignments.
//
// Targets form a single cycle over a uniformly shuffled copy of names: each
// player targets the next one in shuffled order. For n ≥ 2 that structurally
// guarantees nobody targets themself and everyone is targeted exactly once,
// with no retry loop.
//
// Words are drawn by uniform sampling with duplicate rejection under a
// bounded retry budget. Whenever the pool holds at least n distinct words the
// round succeeds with pairwise-distinct words; a pool that cannot satisfy the
// roster exhausts the budget and fails with ErrWordPoolExhausted instead of
// spinning forever.
func assignRound(names []string, pool []string, rng *rand.Rand) (map[string]Assignment, error) {
	if len(names) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if len(pool) == 0 {
		return nil, ErrWordPoolExhausted
	}

	order := make([]string, len(names))
	copy(order, names)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	used := make(map[string]bool, len(order))
	assignments := make(map[string]Assignment, len(order))
	for i, name := range order {
		word, ok := drawWord(pool, used, rng)
		if !ok {
			return nil, ErrWordPoolExhausted
		}
		used[word] = true
		assignments[name] = Assignment{
			Target: order[(i+1)%len(order)],
			Word:   word,
		}
	}
	return assignments, nil
}

// drawWord samples the pool until it finds a word unused this round. The
// budget scales with the pool so a mostly-used pool still converges with
// overwhelming probability, while a fully-used one fails in bounded time.
func drawWord(pool []string, used map[string]bool, rng *rand.Rand) (string, bool) {
	budget := 20*len(pool) + 20
	for attempt := 0; attempt < budget; attempt++ {
		w := pool[rng.Intn(len(pool))]
		if !used[w] {
			return w, true
		}
	}
	return "", false
}
