// internal/game/events.go
package game

// EventType is an enum-like type for the server→client message kinds.
type EventType string

const (
	EventReply     EventType = "reply"     // direct response to createGame/joinGame
	EventRoster    EventType = "roster"    // broadcast on any roster change
	EventCountdown EventType = "countdown" // broadcast when a start is committed
	EventStarted   EventType = "started"   // private target/word delivery
	EventNotice    EventType = "notice"    // human-readable join/leave/evict text
	EventError     EventType = "error"     // structured error reply
)

// RosterEntry is one player's public view in a roster broadcast.
type RosterEntry struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Host      bool   `json:"host,omitempty"`
}

// Event is the single wire format for everything the server sends. Fields are
// populated per Type; zero fields are omitted from the JSON.
type Event struct {
	Type     EventType     `json:"event"`
	Result   string        `json:"result,omitempty"`
	GameCode string        `json:"gameCode,omitempty"`
	Players  []RosterEntry `json:"players,omitempty"`
	Seconds  int           `json:"seconds,omitempty"`
	Target   string        `json:"target,omitempty"`
	Word     string        `json:"word,omitempty"`
	Error    string        `json:"error,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// ErrorEvent builds the structured error reply for a failed action.
func ErrorEvent(err error) Event {
	return Event{
		Type:    EventError,
		Result:  "Error",
		Error:   ErrorCode(err),
		Message: err.Error(),
	}
}
