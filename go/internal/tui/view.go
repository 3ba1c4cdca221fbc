package tui

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/tashclub/teenpatti/go/internal/game/events"
	"github.com/tashclub/teenpatti/go/internal/game/session"
)

const chatTail = 5

// View renders room snapshots for the terminal table client. It is
// presentation only; all state lives in the session snapshot.
type View struct {
	SelfID string
}

// Render draws the full table: opponents on top, the pot strip in the middle,
// the local seat and any banners at the bottom.
func (v View) Render(snap session.Snapshot, timeLeft int) string {
	var seats []pterm.Panel
	var self pterm.Panel
	for _, p := range snap.Players {
		panel := pterm.Panel{Data: v.seatInfo(p, snap, timeLeft)}
		if p.UserID == v.SelfID {
			self = panel
			continue
		}
		seats = append(seats, panel)
	}

	dashboard := []pterm.Panel{self}
	if snap.Outcome != nil {
		dashboard = append(dashboard, outcomePanel(*snap.Outcome))
	}
	if banner := bannerInfo(snap); banner != "" {
		dashboard = append(dashboard, pterm.Panel{Data: banner})
	}
	if chat := chatInfo(snap.Chat); chat != "" {
		dashboard = append(dashboard, pterm.Panel{Data: chat})
	}

	out, err := pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		seats,
		{{Data: potInfo(snap)}},
		dashboard,
	}).Srender()
	if err != nil {
		return pterm.Sprintfln("render failed: %v", err)
	}
	return out
}

func (v View) seatInfo(p events.Player, snap session.Snapshot, timeLeft int) string {
	hpadding := 4
	if p.UserID == v.SelfID {
		hpadding = 10
	}
	pbox := pterm.DefaultBox.WithLeftPadding(hpadding).WithRightPadding(hpadding).WithTopPadding(1).WithBottomPadding(1)

	title := p.Username
	if p.UserID == v.SelfID {
		title += " (you)"
	}

	var status string
	switch {
	case !snap.IsActive:
		status = pterm.Cyan("Waiting")
	case !p.Playing:
		status = pterm.LightRed("Folded")
	case p.Seen:
		status = pterm.LightGreen("Seen")
	default:
		status = pterm.LightGreen("Blind")
	}

	lines := []string{status, pterm.Sprintf("Balance: %d", p.GameMoney)}
	if len(p.Hand) > 0 {
		lines = append(lines, pterm.BgGreen.Sprintf(" %s ", strings.Join(p.Hand, " - ")))
	}
	if snap.IsActive && p.UserID == snap.CurrentTurnPlayerID {
		lines = append(lines, pterm.LightYellow(pterm.Sprintf("On turn (%ds)", timeLeft)))
	}
	return pbox.WithTitle(title).WithTitleTopLeft().Sprintf("%s", strings.Join(lines, "\n"))
}

func potInfo(snap session.Snapshot) string {
	room := snap.RoomID
	if room == "" {
		room = "joining..."
	}
	state := "waiting for players"
	if snap.IsActive {
		state = "hand in progress"
	}
	return pterm.BgGreen.Sprintf("\n Room %s | Pot: %d | Boot: %d | %s \n", room, snap.PotTotal, snap.BootAmount, state)
}

func outcomePanel(o session.Outcome) pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	info := pterm.Sprintfln("%s won %d", pterm.LightCyan(o.WinnerName), o.Winnings)
	if o.HandType != "" {
		info += pterm.Sprintfln("with %s", o.HandType)
	}
	for userID, hand := range o.Hands {
		info += pterm.Sprintfln("%s: %s", userID, strings.Join(hand, " - "))
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightGreen("|SHOWDOWN|")).WithTitleTopCenter().Sprintf(info)}
}

// bannerInfo surfaces the transient status and error lines; both are
// auto-cleared upstream, so whatever the snapshot holds is current.
func bannerInfo(snap session.Snapshot) string {
	var lines []string
	if snap.StatusMessage != "" {
		lines = append(lines, pterm.LightCyan(snap.StatusMessage))
	}
	if snap.ErrorMessage != "" {
		lines = append(lines, pterm.LightRed(snap.ErrorMessage))
	}
	return strings.Join(lines, "\n")
}

func chatInfo(chat []events.ChatMessage) string {
	if len(chat) == 0 {
		return ""
	}
	start := 0
	if len(chat) > chatTail {
		start = len(chat) - chatTail
	}
	var lines []string
	for _, msg := range chat[start:] {
		lines = append(lines, pterm.Sprintf("%s: %s", pterm.LightCyan(msg.Username), msg.Content))
	}
	return pterm.DefaultBox.WithTitle("chat").WithTitleTopLeft().Sprintf("%s", strings.Join(lines, "\n"))
}
