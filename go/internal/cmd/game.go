package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"

	"github.com/tashclub/teenpatti/go/clients/accounts"
	"github.com/tashclub/teenpatti/go/internal/game/events"
	"github.com/tashclub/teenpatti/go/internal/game/session"
)

var menuOptions = []string{
	"See cards",
	"Blind",
	"Chaal",
	"Fold",
	"Request show",
	"Chat",
	"Friends",
	"Invite friend",
	"Pending invites",
	"Leave table",
	"Quit",
}

// runCommandLoop drives the player's side of the table until they leave, quit,
// or the session is torn down.
func runCommandLoop(ctx context.Context, sess *session.Session, client *accounts.Client, cfg *Config) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		selected, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("Select your next action").
			WithOptions(menuOptions).Show()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		switch selected {
		case "See cards":
			err = act(sess, events.ActionSee)
		case "Blind":
			err = act(sess, events.ActionBlind)
		case "Chaal":
			err = act(sess, events.ActionChaal)
		case "Fold":
			err = act(sess, events.ActionFold)
		case "Request show":
			err = sess.RequestShow()
		case "Chat":
			err = chat(sess)
		case "Friends":
			err = listFriends(ctx, client, cfg)
		case "Invite friend":
			err = inviteFriend(ctx, sess, client, cfg)
		case "Pending invites":
			err = listInvites(ctx, client, cfg)
		case "Leave table":
			if err := sess.LeaveRoom(); err != nil && !errors.Is(err, session.ErrSessionClosed) {
				return err
			}
			return nil
		case "Quit":
			return nil
		}

		switch {
		case errors.Is(err, session.ErrSessionClosed):
			return nil
		case errors.Is(err, session.ErrNotInRoom):
			pterm.Info.Println("Still waiting to join a room...")
		case err != nil:
			pterm.Error.Printfln("Action failed: %v", err)
		}
	}
}

// act resolves an action through the bet policy. Bet-requiring actions go
// through an adjust-and-confirm prompt; everything else is fired directly.
func act(sess *session.Session, action events.Action) error {
	draft, err := sess.SelectAction(action)
	if err != nil || draft == nil {
		return err
	}

	input, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Enter your bet amount").
		WithDefaultValue(strconv.FormatInt(draft.Amount, 10)).Show()
	if err != nil {
		return err
	}
	if amount, convErr := strconv.ParseInt(input, 10, 64); convErr == nil {
		draft.SetAmount(amount)
	} else {
		pterm.Info.Printfln("Not a number, keeping %d", draft.Amount)
	}

	confirm, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText(pterm.Sprintf("Bet %d on %s?", draft.Amount, draft.Action)).
		WithDefaultValue(true).Show()
	if err != nil {
		return err
	}
	if !confirm {
		pterm.Info.Println("Bet cancelled.")
		return nil
	}
	return sess.ConfirmBet(*draft)
}

func chat(sess *session.Session) error {
	text, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Say something").Show()
	if err != nil {
		return err
	}
	return sess.SendChat(text)
}

func listFriends(ctx context.Context, client *accounts.Client, cfg *Config) error {
	friends, err := client.Friends(ctx, cfg.Player.UserID)
	if err != nil {
		return err
	}
	if len(friends) == 0 {
		pterm.Info.Println("No friends yet.")
		return nil
	}
	for _, f := range friends {
		pterm.Info.Printfln("%s (%s) — balance %d", f.Username, f.UserID, f.GameMoney)
	}
	return nil
}

func inviteFriend(ctx context.Context, sess *session.Session, client *accounts.Client, cfg *Config) error {
	roomID := sess.RoomID()
	if roomID == "" {
		return session.ErrNotInRoom
	}
	friendID, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Friend's user id").Show()
	if err != nil {
		return err
	}
	if friendID == "" {
		return nil
	}
	if err := client.SendGameInvite(ctx, friendID, cfg.Player.UserID, roomID, "teen-patti"); err != nil {
		return err
	}
	pterm.Success.Printfln("Invited %s to room %s", friendID, roomID)
	log.Info().Str("friend_id", friendID).Str("room_id", roomID).Msg("game invite sent")
	return nil
}

func listInvites(ctx context.Context, client *accounts.Client, cfg *Config) error {
	invites, err := client.GameInvites(ctx, cfg.Player.UserID)
	if err != nil {
		return err
	}
	if len(invites) == 0 {
		pterm.Info.Println("No pending invites.")
		return nil
	}
	for _, inv := range invites {
		pterm.Info.Printfln("%s invited you to room %s (%s)", inv.Inviter.Username, inv.RoomID, inv.GameType)
	}
	return nil
}
