package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// frame wraps a payload in the wire envelope the server uses.
func frame(t *testing.T, event string, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}{Event: event, Data: data})
	require.NoError(t, err)
	return raw
}

func runSession(t *testing.T, s *Session, ch *stubChannel) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	t.Cleanup(func() {
		ch.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("session did not stop after channel close")
		}
	})
	return done
}

func TestRunJoinsByIDExactlyOnce(t *testing.T) {
	ch := newStubChannel()
	balances := newStubBalances(nil)
	s := New(Config{UserID: "u1", Username: "asha", RoomID: "room-7", Balance: 2000}, ch, balances)

	runSession(t, s, ch)

	assert.Eventually(t, func() bool { return len(ch.sentEvents()) == 1 },
		time.Second, time.Millisecond)
	sent := ch.sentEvents()
	join, ok := sent[0].(events.JoinRoomByID)
	require.True(t, ok, "expected a join-room-by-id intent, got %T", sent[0])
	assert.Equal(t, "room-7", join.RoomID)
	assert.Equal(t, int64(2000), join.GameMoney)

	// The channel yields events but never a second join.
	ch.frames <- frame(t, events.EventJoinedRoom, events.JoinedRoom{RoomID: "room-7"})
	assert.Eventually(t, func() bool { return s.RoomID() == "room-7" },
		time.Second, time.Millisecond)
	assert.Len(t, ch.sentEvents(), 1)
}

func TestRunJoinsViaMatchmakingWhenNoRoomID(t *testing.T) {
	ch := newStubChannel()
	balances := newStubBalances(nil)
	s := New(Config{UserID: "u1", Username: "asha", PrivateRoom: true, Balance: 2000}, ch, balances)

	runSession(t, s, ch)

	assert.Eventually(t, func() bool { return len(ch.sentEvents()) == 1 },
		time.Second, time.Millisecond)
	join, ok := ch.sentEvents()[0].(events.JoinRoom)
	require.True(t, ok, "expected a matchmaking join intent")
	assert.True(t, join.IsPrivate)
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	ch := newStubChannel()
	balances := newStubBalances(nil)
	s := New(Config{UserID: "u1"}, ch, balances)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	ch.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not return after channel close")
	}

	assert.ErrorIs(t, s.SendChat("hello"), ErrSessionClosed)
}

func TestRunSkipsMalformedFrames(t *testing.T) {
	ch := newStubChannel()
	balances := newStubBalances(nil)
	s := New(Config{UserID: "u1"}, ch, balances)

	runSession(t, s, ch)

	ch.frames <- []byte(`{"event":"room-update","data":"not an object"}`)
	ch.frames <- frame(t, events.EventJoinedRoom, events.JoinedRoom{RoomID: "room-9"})

	// The bad frame is dropped, the good one behind it still lands.
	assert.Eventually(t, func() bool { return s.RoomID() == "room-9" },
		time.Second, time.Millisecond)
}

func TestBalanceDivergenceTriggersPersist(t *testing.T) {
	ch := newStubChannel()
	balances := newStubBalances(nil)
	s := New(Config{UserID: "u1", Balance: 2000}, ch, balances)

	s.apply(roomUpdate([]events.Player{{UserID: "u1", GameMoney: 1500}}, 500, true))

	select {
	case <-balances.done:
	case <-time.After(time.Second):
		t.Fatal("persist never called")
	}
	assert.Equal(t, []int64{1500}, balances.persistCalls())
	assert.Eventually(t, func() bool { return s.Balance() == 1500 },
		time.Second, time.Millisecond)

	// An identical update does not persist again.
	s.apply(roomUpdate([]events.Player{{UserID: "u1", GameMoney: 1500}}, 500, true))
	select {
	case <-balances.done:
		t.Fatal("unchanged balance persisted again")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPersistFailureForcesLogout(t *testing.T) {
	ch := newStubChannel()
	balances := newStubBalances(errors.New("session invalidated"))
	loggedOut := make(chan struct{})
	s := New(Config{UserID: "u1", Balance: 2000}, ch, balances,
		WithForcedLogoutFunc(func() { close(loggedOut) }))

	s.apply(&events.JoinedRoom{RoomID: "room-1"})
	s.apply(roomUpdate([]events.Player{{UserID: "u1", GameMoney: 900}}, 1100, true))

	select {
	case <-loggedOut:
	case <-time.After(time.Second):
		t.Fatal("forced logout callback never fired")
	}
	assert.True(t, ch.isClosed())
	assert.ErrorIs(t, s.SendAction(events.ActionFold, 0), ErrSessionClosed)
}

func TestIntentsRequireJoinedRoom(t *testing.T) {
	s, _, _ := testSession(t, Config{UserID: "u1"})

	assert.ErrorIs(t, s.SendAction(events.ActionChaal, 500), ErrNotInRoom)
	assert.ErrorIs(t, s.RequestShow(), ErrNotInRoom)
	assert.ErrorIs(t, s.SendChat("anyone here?"), ErrNotInRoom)
	assert.ErrorIs(t, s.LeaveRoom(), ErrNotInRoom)
}

func TestLeaveRoomSendsOneLeaveIntent(t *testing.T) {
	s, ch, _ := testSession(t, Config{UserID: "u1"})
	s.apply(&events.JoinedRoom{RoomID: "room-1"})

	require.NoError(t, s.LeaveRoom())

	sent := ch.sentEvents()
	require.Len(t, sent, 1)
	leave, ok := sent[0].(events.LeaveGame)
	require.True(t, ok)
	assert.Equal(t, "room-1", leave.RoomID)
	assert.True(t, ch.isClosed())

	// A second leave is rejected rather than duplicated.
	assert.ErrorIs(t, s.LeaveRoom(), ErrSessionClosed)
	assert.Len(t, ch.sentEvents(), 1)
}

func TestSendChatTrimsAndDropsEmpty(t *testing.T) {
	s, ch, _ := testSession(t, Config{UserID: "u1", Username: "asha"})
	s.apply(&events.JoinedRoom{RoomID: "room-1"})

	require.NoError(t, s.SendChat("   "))
	assert.Empty(t, ch.sentEvents())

	require.NoError(t, s.SendChat("  good luck  "))
	sent := ch.sentEvents()
	require.Len(t, sent, 1)
	msg, ok := sent[0].(events.SendChat)
	require.True(t, ok)
	assert.Equal(t, "good luck", msg.Content)

	// Chat state does not change until the server echoes the message.
	assert.Empty(t, s.Snapshot().Chat)
}

func TestCurrentBetFallsBackToBootBetweenHands(t *testing.T) {
	s, _, _ := testSession(t, Config{UserID: "u1"})

	s.apply(roomUpdate([]events.Player{{UserID: "u1", GameMoney: 2000}}, 0, false))
	assert.Equal(t, int64(500), s.CurrentBet())

	players := []events.Player{
		{UserID: "u1", GameMoney: 2000, Playing: true},
		{UserID: "u2", GameMoney: 2000, Playing: true},
	}
	s.apply(roomUpdate(players, 3000, true))
	assert.Equal(t, int64(1500), s.CurrentBet())
}

func TestSelectActionReturnsDraftForAffordableBet(t *testing.T) {
	s, ch, _ := testSession(t, Config{UserID: "u1"})
	s.apply(&events.JoinedRoom{RoomID: "room-1"})

	players := []events.Player{
		{UserID: "u1", GameMoney: 2000, Playing: true},
		{UserID: "u2", GameMoney: 2000, Playing: true},
	}
	s.apply(roomUpdate(players, 1000, true))

	draft, err := s.SelectAction(events.ActionChaal)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, events.ActionChaal, draft.Action)
	assert.Equal(t, s.CurrentBet(), draft.Amount)

	// Nothing hits the wire until the draft is confirmed.
	assert.Empty(t, ch.sentEvents())

	require.NoError(t, s.ConfirmBet(*draft))
	sent := ch.sentEvents()
	require.Len(t, sent, 1)
	action, ok := sent[0].(events.PlayerActionMsg)
	require.True(t, ok)
	assert.Equal(t, events.ActionChaal, action.Action)
	assert.Equal(t, draft.Amount, action.Amount)
}

func TestSelectActionAutoFoldsShortStack(t *testing.T) {
	s, ch, _ := testSession(t, Config{UserID: "u1"})
	s.apply(&events.JoinedRoom{RoomID: "room-1"})

	players := []events.Player{
		{UserID: "u1", GameMoney: 200, Playing: true},
		{UserID: "u2", GameMoney: 5000, Playing: true},
	}
	s.apply(roomUpdate(players, 2000, true))
	require.Greater(t, s.CurrentBet(), int64(200))

	draft, err := s.SelectAction(events.ActionChaal)
	require.NoError(t, err)
	assert.Nil(t, draft, "an unaffordable bet resolves without a draft")

	sent := ch.sentEvents()
	require.Len(t, sent, 1)
	action, ok := sent[0].(events.PlayerActionMsg)
	require.True(t, ok)
	assert.Equal(t, events.ActionFold, action.Action)
	assert.Equal(t, int64(0), action.Amount)
}

func TestSelectActionSendsFoldImmediately(t *testing.T) {
	s, ch, _ := testSession(t, Config{UserID: "u1"})
	s.apply(&events.JoinedRoom{RoomID: "room-1"})
	s.apply(roomUpdate([]events.Player{{UserID: "u1", GameMoney: 2000, Playing: true}}, 500, true))

	draft, err := s.SelectAction(events.ActionFold)
	require.NoError(t, err)
	assert.Nil(t, draft)

	sent := ch.sentEvents()
	require.Len(t, sent, 1)
	action := sent[0].(events.PlayerActionMsg)
	assert.Equal(t, events.ActionFold, action.Action)
}

func TestSelectActionRejectsUnknownAction(t *testing.T) {
	s, _, _ := testSession(t, Config{UserID: "u1"})
	s.apply(&events.JoinedRoom{RoomID: "room-1"})
	s.apply(roomUpdate([]events.Player{{UserID: "u1", GameMoney: 2000}}, 0, false))

	_, err := s.SelectAction(events.Action("raise"))
	assert.Error(t, err)
}
