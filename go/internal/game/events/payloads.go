package events

import "time"

// Action is a turn action the player may submit. The server re-validates
// every action; this enum only bounds what the client can express.
type Action string

const (
	ActionSee   Action = "see"
	ActionBlind Action = "blind"
	ActionChaal Action = "chaal"
	ActionFold  Action = "fold"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionSee, ActionBlind, ActionChaal, ActionFold:
		return true
	}
	return false
}

// RequiresBet reports whether the action carries a wager amount.
func (a Action) RequiresBet() bool {
	return a == ActionBlind || a == ActionChaal
}

// Player mirrors the per-seat state the server includes in every room update.
// Hand entries are opaque card references; "?" or an empty string is a
// face-down card the server has not revealed.
type Player struct {
	UserID          string   `json:"userId"`
	Username        string   `json:"username"`
	ProfileImageURL string   `json:"profileImageURL"`
	GameMoney       int64    `json:"gameMoney"`
	Playing         bool     `json:"playing"`
	Seen            bool     `json:"seen"`
	Turn            bool     `json:"turn"`
	Hand            []string `json:"hand"`
}

// ChatMessage is a single entry of the server-authoritative chat log.
type ChatMessage struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	ProfileImageURL string    `json:"profileImageURL"`
	Content         string    `json:"content"`
	Timestamp       time.Time `json:"timestamp"`
}

// JoinedRoom confirms a join request and names the room.
type JoinedRoom struct {
	RoomID string `json:"roomId"`
}

// RoomUpdate is the wholesale room state push. Every field replaces the
// client's previous view; nothing is merged.
type RoomUpdate struct {
	Players    []Player      `json:"players"`
	RoomMoney  int64         `json:"roomMoney"`
	BootAmount int64         `json:"bootAmount"`
	IsGameOn   bool          `json:"isGameOn"`
	Chat       []ChatMessage `json:"chat"`
}

// GameStarted announces a new hand.
type GameStarted struct{}

// TurnStarted announces whose turn it is. TurnStartTime and Duration are
// both unix milliseconds; the deadline is their sum.
type TurnStarted struct {
	UserID        string `json:"userId"`
	TurnStartTime int64  `json:"turnStartTime"`
	Duration      int64  `json:"duration"`
}

// Deadline returns the wall-clock instant at which the server auto-resolves
// the turn.
func (t TurnStarted) Deadline() time.Time {
	return time.UnixMilli(t.TurnStartTime + t.Duration)
}

// PlayerFolded reports a fold, voluntary or by server timeout.
type PlayerFolded struct {
	UserID string `json:"userId"`
	IsAuto bool   `json:"isAuto"`
}

// GameEnded carries the hand outcome. Hands only contains the players the
// server chose to reveal at showdown.
type GameEnded struct {
	WinnerUserID   string              `json:"winnerUserId"`
	WinnerUsername string              `json:"winnerUsername"`
	Winnings       int64               `json:"winnings"`
	HandType       string              `json:"handType"`
	Hands          map[string][]string `json:"hands"`
}

// ServerError is a transient gameplay error, e.g. an illegal action.
type ServerError struct {
	Message string `json:"message"`
}

// RoomNotFound is the non-fatal reply to a join-room-by-id for a room that
// no longer exists.
type RoomNotFound struct {
	Message string `json:"message"`
}

// JoinRoom asks the matchmaker to place the player into a public or private
// room.
type JoinRoom struct {
	UserID          string `json:"userId"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageURL"`
	GameMoney       int64  `json:"gameMoney"`
	IsPrivate       bool   `json:"isPrivate"`
}

// JoinRoomByID joins a specific room, typically from an invite link. The
// roomIdd key is the server's spelling and is kept for compatibility.
type JoinRoomByID struct {
	UserID          string `json:"userId"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageURL"`
	GameMoney       int64  `json:"gameMoney"`
	RoomID          string `json:"roomIdd"`
}

// PlayerActionMsg submits a turn action.
type PlayerActionMsg struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Action Action `json:"action"`
	Amount int64  `json:"amount"`
}

// RequestShow asks for a showdown against the remaining player.
type RequestShow struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// SendChat posts a chat message. It becomes visible locally only once the
// server echoes it back in a room update.
type SendChat struct {
	RoomID          string `json:"roomId"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageURL"`
	Content         string `json:"content"`
}

// LeaveGame removes the player from the room.
type LeaveGame struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}
