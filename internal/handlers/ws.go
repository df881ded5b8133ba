// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/benvh/wordhunt/internal/game"
)

// Envelope is the client→server message format. The tagged action is
// validated here at the boundary; the state machine only ever sees decoded,
// typed input.
type Envelope struct {
	Action   string `json:"action"`
	Player   string `json:"player,omitempty"`
	GameCode string `json:"gameCode,omitempty"`
	Language string `json:"language,omitempty"`
}

const (
	ActionCreateGame = "createGame"
	ActionJoinGame   = "joinGame"
	ActionStartGame  = "startGame"
)

// Subprotocol spoken over /ws. Clients that omit it are still accepted.
const Subprotocol = "wordhunt"

// WSHandler upgrades the HTTP connection and runs one client session: a write
// pump draining the player's out channel, and a read loop dispatching actions
// to the game service. When the read loop exits for any reason the connection
// is reported as a disconnect, which starts the player's grace window.
func WSHandler(logger *logrus.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"}, // Tighten behind a reverse proxy in production.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := &game.PlayerConn{
			ID:      uuid.New(),
			Cancel:  cancel,
			OutChan: make(chan game.Event, 16),
		}

		entry := logger.WithFields(logrus.Fields{
			"conn":   conn.ID,
			"remote": r.RemoteAddr,
		})
		entry.Info("websocket connected")

		go writePump(ctx, c, conn, logger)
		readPump(ctx, c, conn, svc, logger)

		// The player keeps their roster slot for the grace window; the
		// sweeper removes them if they never come back.
		svc.HandleDisconnect(conn.ID)
		entry.Info("websocket disconnected")
	}
}

// writePump drains the out channel onto the socket until the context dies.
func writePump(ctx context.Context, c *websocket.Conn, conn *game.PlayerConn, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case ev := <-conn.OutChan:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal %s event: %v", ev.Type, err)
				continue
			}
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

// readPump decodes envelopes off the socket and dispatches them. Malformed
// payloads are reported back as InvalidInput and otherwise ignored; the
// connection stays open.
func readPump(ctx context.Context, c *websocket.Conn, conn *game.PlayerConn, svc *game.Service, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Debugf("invalid json from %s: %v", conn.ID, err)
			conn.WriteError(game.ErrInvalidInput)
			continue
		}
		dispatch(env, conn, svc)
	}
}

// dispatch routes one decoded envelope into the state machine and writes the
// direct reply. Broadcasts to the rest of the roster happen inside the
// service.
func dispatch(env Envelope, conn *game.PlayerConn, svc *game.Service) {
	switch env.Action {
	case ActionCreateGame:
		code, roster, err := svc.CreateGame(env.Player, env.Language, conn)
		if err != nil {
			conn.WriteError(err)
			return
		}
		conn.Write(game.Event{
			Type:     game.EventReply,
			Result:   "OK",
			GameCode: code,
			Players:  roster,
		})

	case ActionJoinGame:
		roster, err := svc.JoinGame(env.Player, env.GameCode, conn)
		if err != nil {
			conn.WriteError(err)
			return
		}
		conn.Write(game.Event{
			Type:    game.EventReply,
			Result:  "OK",
			Players: roster,
		})

	case ActionStartGame:
		// On success the countdown broadcast is the reply.
		if err := svc.StartGame(env.GameCode); err != nil {
			conn.WriteError(err)
		}

	default:
		conn.WriteError(game.ErrInvalidInput)
	}
}
