// internal/game/sweeper.go
package game

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically scans the registry and evicts what nobody will come
// back for: started games past their cap, idle lobbies, and players whose
// reconnect grace window has lapsed.
type Sweeper struct {
	Service  *Service
	Interval time.Duration
}

// Run ticks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep runs one pass over every registered game. Exported so tests (and a
// future admin surface) can trigger a pass at a chosen instant.
func (s *Sweeper) Sweep(now time.Time) {
	for _, g := range s.Service.Registry.List() {
		s.sweepGame(g, now)
	}
}

// sweepGame handles a single game. A panic while processing one game must
// not stop the sweep for the rest, hence the recover.
func (s *Sweeper) sweepGame(g *Game, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.Service.Log.WithField("game", g.Code).Errorf("sweep panicked: %v", r)
		}
	}()

	if s.expireGame(g, now) {
		// Registry lock is taken after the game lock was released; the lock
		// order elsewhere is registry → game.
		s.Service.Registry.Delete(g.Code)
		s.Service.Log.WithField("game", g.Code).Info("game evicted")
		return
	}
	s.reapDisconnected(g, now)
}

// expireGame decides whether the whole game is stale and, if so, tears down
// its live connections. Started games live until the long cap; everything
// else idles out on inactivity.
func (s *Sweeper) expireGame(g *Game, now time.Time) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	var expired bool
	if g.State == StateStarted {
		expired = now.Sub(g.StartedAt) >= s.Service.StartedExpiry
	} else {
		expired = now.Sub(g.LastActivityAt) >= s.Service.IdleLimit
	}
	if !expired {
		return false
	}

	g.noticeUnsafe("game expired")
	for _, p := range g.Players {
		if p.Conn != nil {
			p.Conn.Close()
		}
	}
	return true
}

// reapDisconnected permanently removes players whose grace window has
// lapsed. This is the only place a roster entry is ever deleted; a game left
// with zero players is not removed here, it idles out on a later pass.
func (s *Sweeper) reapDisconnected(g *Game, now time.Time) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	var dropped []string
	kept := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if !p.Connected && !p.DisconnectedAt.IsZero() && now.Sub(p.DisconnectedAt) >= s.Service.ReconnectGrace {
			dropped = append(dropped, p.Name)
			continue
		}
		kept = append(kept, p)
	}
	if len(dropped) == 0 {
		return
	}

	g.Players = kept
	g.touchUnsafe()
	for _, name := range dropped {
		g.noticeUnsafe(name + " left the game")
		s.Service.Log.WithFields(logrus.Fields{"game": g.Code, "player": name}).Info("player reaped")
	}
	g.broadcastRosterUnsafe()
}
