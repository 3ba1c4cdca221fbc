package channel

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// NATSConfig holds configuration for the NATS-backed event channel, used by
// deployments where the table server publishes room events over NATS
// subjects instead of a direct socket.
type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	// IntentSubject is where client intents are published.
	IntentSubject string
	// EventSubject is the per-client subject the server addresses room
	// events to. Derived from a fresh client id when empty.
	EventSubject string
}

// DefaultNATSConfig returns the default NATS channel configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		IntentSubject: "tables.intents",
	}
}

// NATS is a Channel over a NATS connection. Ordering is preserved by a
// single subscription feeding a single forwarding goroutine.
type NATS struct {
	cfg    NATSConfig
	nc     *nats.Conn
	sub    *nats.Subscription
	msgCh  chan *nats.Msg
	events chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// DialNATS connects to NATS and subscribes to the client's event subject.
func DialNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.EventSubject == "" {
		cfg.EventSubject = fmt.Sprintf("tables.client.%s.events", uuid.New().String())
	}

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	msgCh := make(chan *nats.Msg, 256)
	sub, err := nc.ChanSubscribe(cfg.EventSubject, msgCh)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", cfg.EventSubject, err)
	}

	n := &NATS{
		cfg:    cfg,
		nc:     nc,
		sub:    sub,
		msgCh:  msgCh,
		events: make(chan []byte, 256),
		done:   make(chan struct{}),
	}
	go n.forward()

	log.Info().Str("subject", cfg.EventSubject).Msg("subscribed to table events")
	return n, nil
}

// EventSubject returns the subject the server should address this client on.
// It is included in join payload metadata by deployments using this channel.
func (n *NATS) EventSubject() string {
	return n.cfg.EventSubject
}

func (n *NATS) forward() {
	defer close(n.events)
	for {
		select {
		case <-n.done:
			return
		case msg, ok := <-n.msgCh:
			if !ok {
				return
			}
			select {
			case n.events <- msg.Data:
			case <-n.done:
				return
			}
		}
	}
}

// Events delivers inbound frames in publish order.
func (n *NATS) Events() <-chan []byte {
	return n.events
}

// Send publishes one outbound intent.
func (n *NATS) Send(out events.Outbound) error {
	select {
	case <-n.done:
		return ErrChannelClosed
	default:
	}
	frame, err := events.Encode(out)
	if err != nil {
		return err
	}
	if err := n.nc.Publish(n.cfg.IntentSubject, frame); err != nil {
		return fmt.Errorf("publish intent: %w", err)
	}
	return nil
}

// Close drains the subscription and closes the connection. Idempotent.
func (n *NATS) Close() error {
	n.closeOnce.Do(func() {
		close(n.done)
		n.sub.Unsubscribe()
		n.nc.Close()
	})
	return nil
}
