package session

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// apply folds one inbound event into the snapshot. Events are total over the
// fields they touch and are applied strictly in arrival order; the only side
// effect that escapes the reducer is the asynchronous balance sync.
func (s *Session) apply(ev events.Inbound) {
	switch ev := ev.(type) {
	case *events.JoinedRoom:
		s.applyJoinedRoom(ev)
	case *events.RoomUpdate:
		s.applyRoomUpdate(ev)
	case *events.GameStarted:
		s.applyGameStarted()
	case *events.TurnStarted:
		s.applyTurnStarted(ev)
	case *events.PlayerFolded:
		s.applyPlayerFolded(ev)
	case *events.GameEnded:
		s.applyGameEnded(ev)
	case *events.ServerError:
		s.applyServerError(ev)
	case *events.RoomNotFound:
		// Non-fatal: the channel stays open and no local room is fabricated.
		log.Warn().Str("message", ev.Message).Msg("room not found")
		return
	}
	s.publish()
}

func (s *Session) applyJoinedRoom(ev *events.JoinedRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.RoomID == "" {
		s.snap.RoomID = ev.RoomID
	}
	s.snap.StatusMessage = fmt.Sprintf("Joined room %s", ev.RoomID)
}

// applyRoomUpdate replaces the room view wholesale. The chat log is replaced,
// not merged, so a locally sent message appears only once the server echoes
// it back.
func (s *Session) applyRoomUpdate(ev *events.RoomUpdate) {
	var syncTo int64
	syncNeeded := false

	s.mu.Lock()
	s.snap.Players = ev.Players
	s.snap.PotTotal = ev.RoomMoney
	s.snap.BootAmount = ev.BootAmount
	s.snap.IsActive = ev.IsGameOn
	s.snap.Chat = ev.Chat
	s.snap.CurrentTurnPlayerID = turnPlayerID(ev.Players, ev.IsGameOn)

	if self, ok := s.snap.Player(s.cfg.UserID); ok && self.GameMoney != s.lastBalance {
		s.lastBalance = self.GameMoney
		syncTo = self.GameMoney
		syncNeeded = true
	}
	s.mu.Unlock()

	if syncNeeded {
		s.syncBalance(syncTo)
	}
}

func (s *Session) applyGameStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A stale outcome must never survive into the next hand.
	s.snap.Outcome = nil
	s.snap.StatusMessage = "Game started!"
}

func (s *Session) applyTurnStarted(ev *events.TurnStarted) {
	deadline := ev.Deadline()

	s.mu.Lock()
	s.snap.CurrentTurnPlayerID = ev.UserID
	s.snap.TurnDeadline = &deadline
	s.mu.Unlock()

	s.cd.reset(deadline)
}

func (s *Session) applyPlayerFolded(ev *events.PlayerFolded) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := "Player"
	if p, ok := s.snap.Player(ev.UserID); ok {
		name = p.Username
	}
	if ev.IsAuto {
		s.snap.StatusMessage = fmt.Sprintf("%s auto-folded due to timeout", name)
	} else {
		s.snap.StatusMessage = fmt.Sprintf("%s folded", name)
	}
}

func (s *Session) applyGameEnded(ev *events.GameEnded) {
	s.mu.Lock()
	s.snap.Outcome = &Outcome{
		WinnerID:   ev.WinnerUserID,
		WinnerName: ev.WinnerUsername,
		Winnings:   ev.Winnings,
		HandType:   ev.HandType,
		Hands:      ev.Hands,
	}
	s.snap.TurnDeadline = nil
	s.snap.CurrentTurnPlayerID = ""
	s.snap.StatusMessage = fmt.Sprintf("%s won ₹%d!", ev.WinnerUsername, ev.Winnings)
	s.mu.Unlock()

	s.cd.stop()
}

func (s *Session) applyServerError(ev *events.ServerError) {
	s.mu.Lock()
	s.snap.ErrorMessage = ev.Message
	s.errSeq++
	seq := s.errSeq
	s.mu.Unlock()

	s.clock.AfterFunc(errorDisplayWindow, func() {
		s.mu.Lock()
		cleared := false
		if s.errSeq == seq && s.snap.ErrorMessage != "" {
			s.snap.ErrorMessage = ""
			cleared = true
		}
		s.mu.Unlock()
		if cleared {
			s.publish()
		}
	})
}

// turnPlayerID derives the current turn holder: the single player flagged by
// the server, or empty when no hand is in progress.
func turnPlayerID(players []events.Player, active bool) string {
	if !active {
		return ""
	}
	for _, p := range players {
		if p.Turn {
			return p.UserID
		}
	}
	return ""
}
