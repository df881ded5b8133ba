// internal/game/game.go
package game

import (
	"sync"
	"time"
)

// State is a Game's lifecycle phase. Transitions only ever move forward:
// lobby → counting_down → started. Removal is not a state; an evicted game
// is simply absent from the registry.
type State string

const (
	StateLobby        State = "lobby"
	StateCountingDown State = "counting_down"
	StateStarted      State = "started"
)

// Assignment is one player's private target/word pair, computed exactly once
// at the started transition.
type Assignment struct {
	Target string `json:"target"`
	Word   string `json:"word"`
}

// Player is a roster entry. Name is unique within its game and never changes;
// Conn is rebound on reconnect.
type Player struct {
	Name           string
	Conn           *PlayerConn
	Connected      bool
	DisconnectedAt time.Time
}

// Game holds the entire state for one session in memory. All fields except
// the immutable Code/HostName/Language are guarded by Mu; every mutation
// acquires the lock for the full action so no observer sees a half-applied
// roster or assignment set.
type Game struct {
	Code     string
	HostName string
	Language string

	State       State
	Players     []*Player
	Assignments map[string]Assignment

	StartedAt      time.Time
	LastActivityAt time.Time

	Mu sync.Mutex
}

func newGame(code string, host *Player, language string) *Game {
	return &Game{
		Code:           code,
		HostName:       host.Name,
		Language:       language,
		State:          StateLobby,
		Players:        []*Player{host},
		Assignments:    make(map[string]Assignment),
		LastActivityAt: time.Now(),
	}
}

// Methods suffixed Unsafe assume g.Mu is held by the caller.

func (g *Game) findPlayerUnsafe(name string) *Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// touchUnsafe stamps the last player-affecting action, feeding idle eviction.
func (g *Game) touchUnsafe() {
	g.LastActivityAt = time.Now()
}

func (g *Game) rosterUnsafe() []RosterEntry {
	entries := make([]RosterEntry, len(g.Players))
	for i, p := range g.Players {
		entries[i] = RosterEntry{
			Name:      p.Name,
			Connected: p.Connected,
			Host:      p.Name == g.HostName,
		}
	}
	return entries
}

// Roster returns a snapshot of the current roster in join order.
func (g *Game) Roster() []RosterEntry {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.rosterUnsafe()
}

// broadcastUnsafe sends ev to every connected player's out channel.
func (g *Game) broadcastUnsafe(ev Event) {
	for _, p := range g.Players {
		if p.Connected && p.Conn != nil {
			p.Conn.Write(ev)
		}
	}
}

func (g *Game) broadcastRosterUnsafe() {
	g.broadcastUnsafe(Event{Type: EventRoster, Players: g.rosterUnsafe()})
}

func (g *Game) noticeUnsafe(msg string) {
	g.broadcastUnsafe(Event{Type: EventNotice, Message: msg})
}
