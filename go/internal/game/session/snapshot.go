package session

import (
	"time"

	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// Snapshot is the single consistent local view of the room. It is owned by
// the session's reducer loop and replaced wholesale on each server event;
// readers receive copies and never mutate shared state.
type Snapshot struct {
	RoomID     string
	Players    []events.Player
	PotTotal   int64
	BootAmount int64
	IsActive   bool

	// CurrentTurnPlayerID is the single player flagged with the turn, empty
	// when no hand is in progress.
	CurrentTurnPlayerID string
	// TurnDeadline is set only by a turn-started event and cleared only by
	// game-ended or local expiry.
	TurnDeadline *time.Time

	// StatusMessage is the last informational text; overwritten, never
	// accumulated.
	StatusMessage string
	// ErrorMessage is a transient gameplay error banner, auto-cleared.
	ErrorMessage string

	Outcome *Outcome
	Chat    []events.ChatMessage
}

// Outcome is the result of a finished hand. Hands only holds the players the
// server revealed at showdown.
type Outcome struct {
	WinnerID   string
	WinnerName string
	Winnings   int64
	HandType   string
	Hands      map[string][]string
}

// Player returns the seat with the given id, if present.
func (s Snapshot) Player(userID string) (events.Player, bool) {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p, true
		}
	}
	return events.Player{}, false
}

// clone copies the snapshot deeply enough that a reader can hold it across
// subsequent reducer updates.
func (s Snapshot) clone() Snapshot {
	out := s
	if s.Players != nil {
		out.Players = make([]events.Player, len(s.Players))
		copy(out.Players, s.Players)
	}
	if s.Chat != nil {
		out.Chat = make([]events.ChatMessage, len(s.Chat))
		copy(out.Chat, s.Chat)
	}
	if s.TurnDeadline != nil {
		deadline := *s.TurnDeadline
		out.TurnDeadline = &deadline
	}
	if s.Outcome != nil {
		outcome := *s.Outcome
		out.Outcome = &outcome
	}
	return out
}
