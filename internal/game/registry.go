// internal/game/registry.go
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the single source of truth for live games, keyed by code.
// Everything is in memory only; a game deleted here is gone.
type Registry struct {
	mu    sync.Mutex
	games map[string]*Game
	rng   *rand.Rand
}

// NewRegistry returns an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]*Game),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create generates a fresh code, builds a lobby game with host as its sole
// player, and registers it. Collisions are vanishingly rare at 36^5 codes but
// the loop checks anyway; correctness beats probability here.
func (r *Registry) Create(host *Player, language string) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for {
		code = newCode(r.rng)
		if _, exists := r.games[code]; !exists {
			break
		}
	}

	g := newGame(code, host, language)
	r.games[code] = g
	return g
}

// Get retrieves a live game by code.
func (r *Registry) Get(code string) (*Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[code]
	return g, ok
}

// Delete removes a game from the registry. Idempotent.
func (r *Registry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, code)
}

// List returns a snapshot of all live games, for the sweeper.
func (r *Registry) List() []*Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	return games
}

// Len reports the number of live games.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

// FindByConn locates the game and player name bound to a connection ID, used
// when the transport reports a dropped connection. Scans every game; the
// registry is small (party-sized) so a linear walk is fine.
func (r *Registry) FindByConn(connID uuid.UUID) (*Game, string, bool) {
	for _, g := range r.List() {
		g.Mu.Lock()
		for _, p := range g.Players {
			if p.Conn != nil && p.Conn.ID == connID {
				name := p.Name
				g.Mu.Unlock()
				return g, name, true
			}
		}
		g.Mu.Unlock()
	}
	return nil, "", false
}
