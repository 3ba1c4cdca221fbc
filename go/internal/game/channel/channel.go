package channel

import (
	"errors"

	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// Channel is a single established event channel to the table server. Frames
// arrive on Events in server order; the channel never reorders, drops, or
// coalesces them. Events is closed when the connection is gone, whatever the
// reason.
type Channel interface {
	// Events delivers raw inbound frames in arrival order.
	Events() <-chan []byte
	// Send fires one outbound intent. It never waits for a response.
	Send(out events.Outbound) error
	// Close tears the connection down. Idempotent.
	Close() error
}

var (
	// ErrAlreadyConnected is returned when a connect is attempted while a
	// connection is pending or open for the same manager.
	ErrAlreadyConnected = errors.New("channel: connection already pending or open")
	// ErrChannelClosed is returned by Send after the channel has closed.
	ErrChannelClosed = errors.New("channel: closed")
)

// Status is the connection lifecycle of a channel manager.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusConnected
	StatusDisconnected
	// StatusFailed is terminal for one connect attempt: the handshake never
	// completed. A later Connect starts over from Connecting.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
