// internal/game/codes.go
package game

import "math/rand"

// Game codes are 5 characters from an unambiguous uppercase alphabet, short
// enough to read out loud across a room.
const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 5
)

func newCode(rng *rand.Rand) string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
