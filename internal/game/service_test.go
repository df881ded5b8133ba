// internal/game/service_test.go
package game

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benvh/wordhunt/internal/words"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testPools() *words.Pools {
	return words.New(map[string][]string{
		"en": {"apple", "banana", "cherry", "dragon", "elephant", "umbrella", "volcano", "sandwich"},
	})
}

// newTestService uses a countdown short enough that tests can wait it out.
func newTestService(pools *words.Pools) *Service {
	svc := NewService(NewRegistry(), pools, testLogger())
	svc.Countdown = 20 * time.Millisecond
	return svc
}

func newTestConn() *PlayerConn {
	return &PlayerConn{ID: uuid.New(), OutChan: make(chan Event, 64)}
}

// waitForEvent drains conn until an event of the wanted type arrives.
func waitForEvent(t *testing.T, conn *PlayerConn, typ EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-conn.OutChan:
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", typ)
			return Event{}
		}
	}
}

// drainEvents discards everything queued on conn so a test can assert on
// events from one specific action.
func drainEvents(conn *PlayerConn) {
	for {
		select {
		case <-conn.OutChan:
		default:
			return
		}
	}
}

func assertNoEvent(t *testing.T, conn *PlayerConn, typ EventType) {
	t.Helper()
	for {
		select {
		case ev := <-conn.OutChan:
			assert.NotEqual(t, typ, ev.Type, "unexpected %s event", typ)
		default:
			return
		}
	}
}

func TestCreateGame(t *testing.T) {
	svc := newTestService(testPools())

	conn := newTestConn()
	code, roster, err := svc.CreateGame("Ana", "en", conn)
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{5}$`, code)
	require.Len(t, roster, 1)
	assert.Equal(t, "Ana", roster[0].Name)
	assert.True(t, roster[0].Connected)
	assert.True(t, roster[0].Host)

	g, ok := svc.Registry.Get(code)
	require.True(t, ok)
	assert.Equal(t, StateLobby, g.State)
}

func TestCreateGameRejectsBadNames(t *testing.T) {
	svc := newTestService(testPools())

	_, _, err := svc.CreateGame("", "en", newTestConn())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.CreateGame("   ", "en", newTestConn())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.CreateGame(strings.Repeat("x", 33), "en", newTestConn())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateGameNormalizesUnknownLanguage(t *testing.T) {
	svc := newTestService(testPools())

	code, _, err := svc.CreateGame("Ana", "xx", newTestConn())
	require.NoError(t, err)

	g, ok := svc.Registry.Get(code)
	require.True(t, ok)
	assert.Equal(t, words.DefaultLanguage, g.Language)
}

func TestJoinGameUnknownCode(t *testing.T) {
	svc := newTestService(testPools())

	_, _, err := svc.CreateGame("Ana", "en", newTestConn())
	require.NoError(t, err)

	_, err = svc.JoinGame("Bob", "ZZZZZ", newTestConn())
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestJoinGameBroadcastsRoster(t *testing.T) {
	svc := newTestService(testPools())

	anaConn := newTestConn()
	code, _, err := svc.CreateGame("Ana", "en", anaConn)
	require.NoError(t, err)

	roster, err := svc.JoinGame("Bob", code, newTestConn())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Ana", roster[0].Name, "roster order is join order")
	assert.Equal(t, "Bob", roster[1].Name)

	ev := waitForEvent(t, anaConn, EventRoster)
	require.Len(t, ev.Players, 2)
}

func TestJoinGameNameTaken(t *testing.T) {
	svc := newTestService(testPools())

	code, _, err := svc.CreateGame("Ana", "en", newTestConn())
	require.NoError(t, err)

	_, err = svc.JoinGame("Ana", code, newTestConn())
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestStartGameRequiresTwoPlayers(t *testing.T) {
	svc := newTestService(testPools())

	code, _, err := svc.CreateGame("Ana", "en", newTestConn())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.StartGame(code), ErrNotEnoughPlayers)
	assert.ErrorIs(t, svc.StartGame("ZZZZZ"), ErrGameNotFound)
}

func TestStartGameDeliversAssignments(t *testing.T) {
	svc := newTestService(testPools())

	anaConn := newTestConn()
	bobConn := newTestConn()
	code, _, err := svc.CreateGame("Ana", "en", anaConn)
	require.NoError(t, err)
	_, err = svc.JoinGame("Bob", code, bobConn)
	require.NoError(t, err)

	require.NoError(t, svc.StartGame(code))

	waitForEvent(t, anaConn, EventCountdown)
	waitForEvent(t, bobConn, EventCountdown)

	anaStarted := waitForEvent(t, anaConn, EventStarted)
	bobStarted := waitForEvent(t, bobConn, EventStarted)

	// Two players always target each other, never themselves.
	assert.Equal(t, "Bob", anaStarted.Target)
	assert.Equal(t, "Ana", bobStarted.Target)
	assert.NotEmpty(t, anaStarted.Word)
	assert.NotEmpty(t, bobStarted.Word)
	assert.NotEqual(t, anaStarted.Word, bobStarted.Word)

	g, ok := svc.Registry.Get(code)
	require.True(t, ok)
	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Equal(t, StateStarted, g.State)
	assert.False(t, g.StartedAt.IsZero())
	require.Len(t, g.Assignments, 2)
	assert.Equal(t, anaStarted.Word, g.Assignments["Ana"].Word)
	assert.Equal(t, bobStarted.Word, g.Assignments["Bob"].Word)
}

func TestStartGameTwiceRejected(t *testing.T) {
	svc := newTestService(testPools())
	svc.Countdown = 200 * time.Millisecond

	code, _, err := svc.CreateGame("Ana", "en", newTestConn())
	require.NoError(t, err)
	_, err = svc.JoinGame("Bob", code, newTestConn())
	require.NoError(t, err)

	require.NoError(t, svc.StartGame(code))
	assert.ErrorIs(t, svc.StartGame(code), ErrGameStarted)
}

func TestJoinRejectedDuringCountdown(t *testing.T) {
	svc := newTestService(testPools())
	svc.Countdown = 200 * time.Millisecond

	code, _, err := svc.CreateGame("Ana", "en", newTestConn())
	require.NoError(t, err)
	_, err = svc.JoinGame("Bob", code, newTestConn())
	require.NoError(t, err)

	require.NoError(t, svc.StartGame(code))

	// The roster locks once the countdown is committed.
	_, err = svc.JoinGame("Carol", code, newTestConn())
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestCountdownFiringAfterEvictionIsNoop(t *testing.T) {
	svc := newTestService(testPools())

	anaConn := newTestConn()
	bobConn := newTestConn()
	code, _, err := svc.CreateGame("Ana", "en", anaConn)
	require.NoError(t, err)
	_, err = svc.JoinGame("Bob", code, bobConn)
	require.NoError(t, err)

	require.NoError(t, svc.StartGame(code))
	svc.Registry.Delete(code)

	time.Sleep(svc.Countdown + 50*time.Millisecond)

	assertNoEvent(t, anaConn, EventStarted)
	assertNoEvent(t, bobConn, EventStarted)
	assert.Equal(t, 0, svc.Registry.Len())
}

func TestStartAbortsWhenPoolExhausted(t *testing.T) {
	svc := newTestService(words.New(map[string][]string{"en": {"apple"}}))

	anaConn := newTestConn()
	bobConn := newTestConn()
	code, _, err := svc.CreateGame("Ana", "en", anaConn)
	require.NoError(t, err)
	_, err = svc.JoinGame("Bob", code, bobConn)
	require.NoError(t, err)

	require.NoError(t, svc.StartGame(code))

	ev := waitForEvent(t, anaConn, EventError)
	assert.Equal(t, "WordPoolExhausted", ev.Error)
	waitForEvent(t, bobConn, EventError)

	// The round failed but the game survives, back in the lobby.
	g, ok := svc.Registry.Get(code)
	require.True(t, ok)
	g.Mu.Lock()
	assert.Equal(t, StateLobby, g.State)
	assert.Empty(t, g.Assignments)
	g.Mu.Unlock()
}

func TestDisconnectKeepsRosterEntry(t *testing.T) {
	svc := newTestService(testPools())

	anaConn := newTestConn()
	bobConn := newTestConn()
	code, _, err := svc.CreateGame("Ana", "en", anaConn)
	require.NoError(t, err)
	_, err = svc.JoinGame("Bob", code, bobConn)
	require.NoError(t, err)
	drainEvents(anaConn)

	svc.HandleDisconnect(bobConn.ID)

	g, ok := svc.Registry.Get(code)
	require.True(t, ok)
	g.Mu.Lock()
	require.Len(t, g.Players, 2)
	bob := g.findPlayerUnsafe("Bob")
	require.NotNil(t, bob)
	assert.False(t, bob.Connected)
	assert.False(t, bob.DisconnectedAt.IsZero())
	g.Mu.Unlock()

	ev := waitForEvent(t, anaConn, EventRoster)
	require.Len(t, ev.Players, 2)
	for _, entry := range ev.Players {
		if entry.Name == "Bob" {
			assert.False(t, entry.Connected)
		}
	}
}

func TestDisconnectUnknownConnIsNoop(t *testing.T) {
	svc := newTestService(testPools())
	svc.HandleDisconnect(uuid.New())
}

func TestReconnectWithinGrace(t *testing.T) {
	svc := newTestService(testPools())

	anaConn := newTestConn()
	code, _, err := svc.CreateGame("Ana", "en", anaConn)
	require.NoError(t, err)

	svc.HandleDisconnect(anaConn.ID)

	// Rejoining with the same name rebinds the existing entry instead of
	// duplicating it.
	newConn := newTestConn()
	roster, err := svc.JoinGame("Ana", code, newConn)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Ana", roster[0].Name)
	assert.True(t, roster[0].Connected)

	g, _ := svc.Registry.Get(code)
	g.Mu.Lock()
	ana := g.findPlayerUnsafe("Ana")
	assert.Same(t, newConn, ana.Conn)
	assert.True(t, ana.DisconnectedAt.IsZero())
	g.Mu.Unlock()
}

func TestReconnectReplaysAssignment(t *testing.T) {
	svc := newTestService(testPools())

	anaConn := newTestConn()
	bobConn := newTestConn()
	code, _, err := svc.CreateGame("Ana", "en", anaConn)
	require.NoError(t, err)
	_, err = svc.JoinGame("Bob", code, bobConn)
	require.NoError(t, err)
	require.NoError(t, svc.StartGame(code))

	original := waitForEvent(t, bobConn, EventStarted)

	svc.HandleDisconnect(bobConn.ID)

	newConn := newTestConn()
	roster, err := svc.JoinGame("Bob", code, newConn)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	// Idempotent replay: the stored assignment, never a recomputed one.
	replayed := waitForEvent(t, newConn, EventStarted)
	assert.Equal(t, original.Target, replayed.Target)
	assert.Equal(t, original.Word, replayed.Word)
}
