// internal/game/service.go
package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/benvh/wordhunt/internal/words"
)

// Default timings. All overridable per Service instance (the tests shrink
// them aggressively).
const (
	DefaultCountdown      = 5 * time.Second
	DefaultReconnectGrace = 30 * time.Second
	DefaultIdleLimit      = 10 * time.Minute
	DefaultStartedExpiry  = 2 * time.Hour
	DefaultSweepInterval  = 30 * time.Second
)

const maxNameLength = 32

// Service drives games through their lifecycle. All client actions and the
// sweeper funnel through here; per-game mutation always happens under the
// game's own lock.
type Service struct {
	Registry *Registry
	Pools    *words.Pools
	Log      *logrus.Logger

	Countdown      time.Duration
	ReconnectGrace time.Duration
	IdleLimit      time.Duration
	StartedExpiry  time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService builds a Service with default timings.
func NewService(registry *Registry, pools *words.Pools, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		Registry:       registry,
		Pools:          pools,
		Log:            log,
		Countdown:      DefaultCountdown,
		ReconnectGrace: DefaultReconnectGrace,
		IdleLimit:      DefaultIdleLimit,
		StartedExpiry:  DefaultStartedExpiry,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" || len(name) > maxNameLength {
		return ErrInvalidInput
	}
	return nil
}

// CreateGame registers a new lobby game with the caller as host and sole
// player. Returns the generated code and the initial roster.
func (s *Service) CreateGame(name, language string, conn *PlayerConn) (string, []RosterEntry, error) {
	if err := validateName(name); err != nil {
		return "", nil, err
	}
	lang := s.Pools.Normalize(language)

	host := &Player{Name: name, Conn: conn, Connected: true}
	g := s.Registry.Create(host, lang)

	s.Log.WithFields(logrus.Fields{
		"game":     g.Code,
		"host":     name,
		"language": lang,
	}).Info("game created")

	return g.Code, g.Roster(), nil
}

// JoinGame adds a named player to an existing game. When the name is already
// on the roster and currently disconnected, the join is treated as a
// reconnection: the entry is rebound to the new connection and missed state
// is replayed.
func (s *Service) JoinGame(name, code string, conn *PlayerConn) ([]RosterEntry, error) {
	g, ok := s.Registry.Get(code)
	if !ok {
		return nil, ErrGameNotFound
	}

	g.Mu.Lock()
	defer g.Mu.Unlock()

	if p := g.findPlayerUnsafe(name); p != nil {
		if p.Connected {
			return nil, ErrNameTaken
		}
		s.reconnectUnsafe(g, p, conn)
		return g.rosterUnsafe(), nil
	}

	if err := validateName(name); err != nil {
		return nil, err
	}
	// The roster locks once a countdown is committed; a late joiner would
	// never receive an assignment.
	if g.State != StateLobby {
		return nil, ErrGameStarted
	}

	g.Players = append(g.Players, &Player{Name: name, Conn: conn, Connected: true})
	g.touchUnsafe()
	g.noticeUnsafe(name + " joined the game")
	g.broadcastRosterUnsafe()

	s.Log.WithFields(logrus.Fields{"game": g.Code, "player": name}).Info("player joined")
	return g.rosterUnsafe(), nil
}

// reconnectUnsafe reconciles a returning identity with its roster entry:
// rebind the connection, clear the grace-window bookkeeping, and re-deliver
// the stored assignment verbatim if the game already started. Assumes g.Mu
// is held.
func (s *Service) reconnectUnsafe(g *Game, p *Player, conn *PlayerConn) {
	p.Conn = conn
	p.Connected = true
	p.DisconnectedAt = time.Time{}
	g.touchUnsafe()
	g.noticeUnsafe(p.Name + " reconnected")
	g.broadcastRosterUnsafe()

	if g.State == StateStarted {
		if a, ok := g.Assignments[p.Name]; ok {
			conn.Write(Event{Type: EventStarted, Target: a.Target, Word: a.Word})
		}
	}

	s.Log.WithFields(logrus.Fields{"game": g.Code, "player": p.Name}).Info("player reconnected")
}

// StartGame commits a game to starting: broadcast the countdown and schedule
// the deferred completion. The completion re-resolves the game by code at
// fire time, so a game evicted mid-countdown is a clean no-op.
func (s *Service) StartGame(code string) error {
	g, ok := s.Registry.Get(code)
	if !ok {
		return ErrGameNotFound
	}

	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.State != StateLobby {
		return ErrGameStarted
	}
	if len(g.Players) < 2 {
		return ErrNotEnoughPlayers
	}

	g.State = StateCountingDown
	g.touchUnsafe()
	g.broadcastUnsafe(Event{
		Type:    EventCountdown,
		Seconds: int(s.Countdown / time.Second),
	})
	// No timer handle is kept: if the game is evicted before the countdown
	// elapses, completeStart simply finds nothing to do.
	time.AfterFunc(s.Countdown, func() {
		s.completeStart(code)
	})

	s.Log.WithFields(logrus.Fields{"game": code, "players": len(g.Players)}).Info("countdown committed")
	return nil
}

// completeStart fires when the countdown elapses. It computes and stores the
// full assignment mapping under the game lock before any delivery, so a
// reconnect racing with delivery replays a consistent assignment.
func (s *Service) completeStart(code string) {
	g, ok := s.Registry.Get(code)
	if !ok {
		s.Log.WithField("game", code).Info("countdown fired for evicted game, ignoring")
		return
	}

	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.State != StateCountingDown {
		return
	}

	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}

	s.rngMu.Lock()
	assignments, err := assignRound(names, s.Pools.Get(g.Language), s.rng)
	s.rngMu.Unlock()
	if err != nil {
		// Abort the round: back to the lobby, roster told why.
		g.State = StateLobby
		g.touchUnsafe()
		g.broadcastUnsafe(ErrorEvent(err))
		s.Log.WithFields(logrus.Fields{"game": code, "error": err}).Warn("game start aborted")
		return
	}

	g.Assignments = assignments
	g.State = StateStarted
	g.StartedAt = time.Now()
	g.touchUnsafe()

	for _, p := range g.Players {
		if !p.Connected || p.Conn == nil {
			continue
		}
		a := assignments[p.Name]
		p.Conn.Write(Event{Type: EventStarted, Target: a.Target, Word: a.Word})
	}

	s.Log.WithFields(logrus.Fields{"game": code, "players": len(g.Players)}).Info("game started")
}

// HandleDisconnect processes a transport-level connection drop. The player is
// only marked disconnected; removal waits out the reconnect grace window in
// the sweeper.
func (s *Service) HandleDisconnect(connID uuid.UUID) {
	g, name, ok := s.Registry.FindByConn(connID)
	if !ok {
		return
	}

	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.findPlayerUnsafe(name)
	if p == nil || p.Conn == nil || p.Conn.ID != connID {
		// The slot was rebound to a newer connection in the meantime.
		return
	}
	if !p.Connected {
		return
	}

	p.Connected = false
	p.DisconnectedAt = time.Now()
	g.touchUnsafe()
	g.noticeUnsafe(name + " disconnected")
	g.broadcastRosterUnsafe()

	s.Log.WithFields(logrus.Fields{"game": g.Code, "player": name}).Info("player disconnected")
}
