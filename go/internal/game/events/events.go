package events

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire frame shared by both directions of the table socket.
// The server tags every frame with an event name and an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound event names pushed by the table server.
const (
	EventJoinedRoom   = "joined-room"
	EventRoomUpdate   = "room-update"
	EventGameStarted  = "game-started"
	EventTurnStarted  = "turn-started"
	EventPlayerFolded = "player-folded"
	EventGameEnded    = "game-ended"
	EventError        = "error"
	EventRoomNotFound = "room-not-found"
)

// Outbound event names emitted by the client.
const (
	EventJoinRoom     = "join-room"
	EventJoinRoomByID = "join-room-by-id"
	EventPlayerAction = "player-action"
	EventRequestShow  = "request-show"
	EventSendChat     = "send-chat"
	EventLeaveGame    = "leave-game"
)

// Inbound is the closed set of server-pushed events. Payloads that do not
// decode into one of these variants are rejected at the boundary.
type Inbound interface {
	inbound()
}

func (JoinedRoom) inbound()   {}
func (RoomUpdate) inbound()   {}
func (GameStarted) inbound()  {}
func (TurnStarted) inbound()  {}
func (PlayerFolded) inbound() {}
func (GameEnded) inbound()    {}
func (ServerError) inbound()  {}
func (RoomNotFound) inbound() {}

// Outbound is the closed set of client intents. Name returns the wire event
// name the payload is enveloped under.
type Outbound interface {
	Name() string
}

func (JoinRoom) Name() string        { return EventJoinRoom }
func (JoinRoomByID) Name() string    { return EventJoinRoomByID }
func (PlayerActionMsg) Name() string { return EventPlayerAction }
func (RequestShow) Name() string     { return EventRequestShow }
func (SendChat) Name() string        { return EventSendChat }
func (LeaveGame) Name() string       { return EventLeaveGame }

// Decode parses a raw socket frame into one of the known inbound variants.
// Unknown event names and malformed payloads return an error so nothing
// downstream ever sees a partially decoded event.
func Decode(frame []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	decode := func(v Inbound) (Inbound, error) {
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, v); err != nil {
				return nil, fmt.Errorf("unmarshal %s payload: %w", env.Event, err)
			}
		}
		return v, nil
	}

	switch env.Event {
	case EventJoinedRoom:
		return decode(&JoinedRoom{})
	case EventRoomUpdate:
		return decode(&RoomUpdate{})
	case EventGameStarted:
		return decode(&GameStarted{})
	case EventTurnStarted:
		return decode(&TurnStarted{})
	case EventPlayerFolded:
		return decode(&PlayerFolded{})
	case EventGameEnded:
		return decode(&GameEnded{})
	case EventError:
		return decode(&ServerError{})
	case EventRoomNotFound:
		return decode(&RoomNotFound{})
	default:
		return nil, fmt.Errorf("unknown event type: %s", env.Event)
	}
}

// Encode wraps an outbound intent in the socket envelope.
func Encode(out Outbound) ([]byte, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", out.Name(), err)
	}
	frame, err := json.Marshal(Envelope{Event: out.Name(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", out.Name(), err)
	}
	return frame, nil
}
