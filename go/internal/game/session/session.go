package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/tashclub/teenpatti/go/internal/game/betting"
	"github.com/tashclub/teenpatti/go/internal/game/channel"
	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// errorDisplayWindow is how long a transient gameplay error stays visible.
const errorDisplayWindow = 3 * time.Second

var (
	// ErrSessionClosed is returned by intents after the session has been
	// torn down (left, disconnected, or forced logout).
	ErrSessionClosed = errors.New("session: closed")
	// ErrNotInRoom is returned by intents sent before a join confirmation.
	ErrNotInRoom = errors.New("session: not in a room")
)

// BalanceStore persists the local player's balance against the account
// service. Implemented by the accounts client.
type BalanceStore interface {
	PersistBalance(ctx context.Context, userID string, amount int64) (int64, error)
}

// Config identifies the local player and the room to join.
type Config struct {
	UserID          string
	Username        string
	ProfileImageURL string

	// RoomID selects join-by-id (invite or deep link) when set; otherwise
	// the server matchmakes the player into a room.
	RoomID      string
	PrivateRoom bool

	// Balance is the last balance fetched from the account service before
	// joining.
	Balance int64
}

// Session reconciles server-pushed room events into a local snapshot and
// carries the player's intents back over the channel. All reconciliation
// runs on the single Run goroutine; intents and snapshot reads may come from
// anywhere.
type Session struct {
	cfg      Config
	ch       channel.Channel
	balances BalanceStore
	clock    clockwork.Clock

	mu          sync.RWMutex
	snap        Snapshot
	lastBalance int64
	closed      bool
	errSeq      uint64

	cd       *countdown
	joinOnce sync.Once
	teardown sync.Once

	onUpdate       func(Snapshot)
	onForcedLogout func()
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces the wall clock, used by tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithUpdateFunc registers a callback invoked with a fresh snapshot copy
// after every state change.
func WithUpdateFunc(fn func(Snapshot)) Option {
	return func(s *Session) { s.onUpdate = fn }
}

// WithForcedLogoutFunc registers a callback invoked once when the account
// service invalidates the session.
func WithForcedLogoutFunc(fn func()) Option {
	return func(s *Session) { s.onForcedLogout = fn }
}

// New creates a session over an established channel.
func New(cfg Config, ch channel.Channel, balances BalanceStore, opts ...Option) *Session {
	s := &Session{
		cfg:         cfg,
		ch:          ch,
		balances:    balances,
		clock:       clockwork.NewRealClock(),
		lastBalance: cfg.Balance,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cd = newCountdown(s.clock, s.onCountdownTick)
	return s
}

// Run joins the room and reconciles inbound events until the channel closes
// or ctx is cancelled. Events are applied strictly in arrival order.
func (s *Session) Run(ctx context.Context) error {
	s.joinOnce.Do(s.sendJoin)

	for {
		select {
		case <-ctx.Done():
			s.cd.stop()
			return ctx.Err()
		case frame, ok := <-s.ch.Events():
			if !ok {
				s.cd.stop()
				s.mu.Lock()
				s.closed = true
				s.mu.Unlock()
				return nil
			}
			ev, err := events.Decode(frame)
			if err != nil {
				log.Warn().Err(err).Msg("rejected inbound frame")
				continue
			}
			s.apply(ev)
		}
	}
}

// sendJoin emits exactly one join intent for this connection.
func (s *Session) sendJoin() {
	var err error
	if s.cfg.RoomID != "" {
		err = s.ch.Send(events.JoinRoomByID{
			UserID:          s.cfg.UserID,
			Username:        s.cfg.Username,
			ProfileImageURL: s.cfg.ProfileImageURL,
			GameMoney:       s.cfg.Balance,
			RoomID:          s.cfg.RoomID,
		})
	} else {
		err = s.ch.Send(events.JoinRoom{
			UserID:          s.cfg.UserID,
			Username:        s.cfg.Username,
			ProfileImageURL: s.cfg.ProfileImageURL,
			GameMoney:       s.cfg.Balance,
			IsPrivate:       s.cfg.PrivateRoom,
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to send join request")
	}
}

// Snapshot returns a copy of the current room view.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// TurnTimeLeft returns the locally predicted seconds until the current turn
// auto-resolves.
func (s *Session) TurnTimeLeft() int {
	return s.cd.timeLeft()
}

// Balance returns the last synchronized balance of the local player.
func (s *Session) Balance() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBalance
}

// CurrentBet returns the advisory call amount for the current room state.
func (s *Session) CurrentBet() int64 {
	snap := s.Snapshot()
	if !snap.IsActive {
		return snap.BootAmount
	}
	return betting.CurrentBet(snap.Players, snap.PotTotal, snap.BootAmount)
}

// SelectAction resolves a chosen action against the bet policy. For an
// affordable bet-requiring action it returns a draft for the player to
// adjust and confirm; anything else, including a bet the player cannot
// cover, is sent immediately (downgraded to a fold in the short-stack case).
func (s *Session) SelectAction(action events.Action) (*betting.Draft, error) {
	if !action.Valid() {
		return nil, errors.New("session: unknown action")
	}

	snap := s.Snapshot()
	self, ok := snap.Player(s.cfg.UserID)
	if !ok {
		return nil, ErrNotInRoom
	}
	currentBet := s.CurrentBet()

	resolved := betting.Decide(self, action, currentBet)
	if resolved.RequiresBet() {
		draft := betting.NewDraft(resolved, currentBet, self.GameMoney)
		return &draft, nil
	}
	return nil, s.SendAction(resolved, 0)
}

// ConfirmBet submits a confirmed bet draft.
func (s *Session) ConfirmBet(draft betting.Draft) error {
	return s.SendAction(draft.Action, draft.Amount)
}

// SendAction fires one player-action intent. The server's next room update
// is what reflects the effect.
func (s *Session) SendAction(action events.Action, amount int64) error {
	roomID, err := s.guard()
	if err != nil {
		return err
	}
	return s.ch.Send(events.PlayerActionMsg{
		RoomID: roomID,
		UserID: s.cfg.UserID,
		Action: action,
		Amount: amount,
	})
}

// RequestShow asks the server for a showdown.
func (s *Session) RequestShow() error {
	roomID, err := s.guard()
	if err != nil {
		return err
	}
	return s.ch.Send(events.RequestShow{RoomID: roomID, UserID: s.cfg.UserID})
}

// SendChat posts a chat message. The message only shows up once the server
// echoes it back in a room update.
func (s *Session) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	roomID, err := s.guard()
	if err != nil {
		return err
	}
	return s.ch.Send(events.SendChat{
		RoomID:          roomID,
		Username:        s.cfg.Username,
		ProfileImageURL: s.cfg.ProfileImageURL,
		Content:         text,
	})
}

// RoomID returns the joined room's identifier, empty before the join is
// confirmed.
func (s *Session) RoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.RoomID
}

// LeaveRoom emits exactly one leave-game intent per invocation and tears
// the session down.
func (s *Session) LeaveRoom() error {
	roomID, err := s.guard()
	if err != nil {
		return err
	}
	if err := s.ch.Send(events.LeaveGame{UserID: s.cfg.UserID, RoomID: roomID}); err != nil {
		return err
	}
	s.close(false)
	return nil
}

func (s *Session) guard() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	if s.snap.RoomID == "" {
		return "", ErrNotInRoom
	}
	return s.snap.RoomID, nil
}

// syncBalance pushes a diverged balance to the account service without
// blocking reconciliation. Its only terminal outcomes are a snapshot update
// or a forced session teardown.
func (s *Session) syncBalance(amount int64) {
	go func() {
		updated, err := s.balances.PersistBalance(context.Background(), s.cfg.UserID, amount)
		if err != nil {
			log.Error().Err(err).Int64("amount", amount).Msg("balance sync failed, forcing logout")
			s.close(true)
			return
		}
		s.mu.Lock()
		s.lastBalance = updated
		s.mu.Unlock()
		s.publish()
	}()
}

// close tears the session down once: the countdown stops, the channel
// closes, and further intents fail with ErrSessionClosed.
func (s *Session) close(forced bool) {
	s.teardown.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cd.stop()
		s.ch.Close()

		if forced {
			log.Warn().Str("user_id", s.cfg.UserID).Msg("session terminated by forced logout")
			if s.onForcedLogout != nil {
				s.onForcedLogout()
			}
		}
	})
}

func (s *Session) onCountdownTick(remaining int) {
	if remaining <= 0 {
		s.mu.Lock()
		s.snap.TurnDeadline = nil
		s.mu.Unlock()
	}
	s.publish()
}

func (s *Session) publish() {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(s.Snapshot())
}
