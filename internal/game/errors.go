// internal/game/errors.go
package game

import "errors"

// Sentinel errors for every way a client action can fail. All of these are
// recoverable: they are reported back to the originating connection and never
// terminate the process.
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrNameTaken         = errors.New("a connected player already uses that name")
	ErrNotEnoughPlayers  = errors.New("not enough players to start")
	ErrInvalidInput      = errors.New("invalid input")
	ErrWordPoolExhausted = errors.New("word pool exhausted")
	ErrGameStarted       = errors.New("game has already started")
)

// ErrorCode maps a sentinel error to the code clients see on the wire.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return "GameNotFound"
	case errors.Is(err, ErrNameTaken):
		return "NameTaken"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "NotEnoughPlayers"
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrWordPoolExhausted):
		return "WordPoolExhausted"
	case errors.Is(err, ErrGameStarted):
		return "GameStarted"
	default:
		return "Internal"
	}
}
