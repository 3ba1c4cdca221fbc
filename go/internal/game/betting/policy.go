package betting

import (
	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// TableCeiling is the fixed per-table maximum wager. The server enforces the
// same limit; this constant only bounds what the client offers.
const TableCeiling int64 = 5000

// CurrentBet derives the suggested call amount from room state. It is
// advisory only; the server re-validates every submitted action.
//
// The pot beyond the collected boots is spread evenly across the players
// still in the hand, so the suggestion tracks the table's effective stake.
func CurrentBet(players []events.Player, pot, boot int64) int64 {
	active := int64(0)
	for _, p := range players {
		if p.Playing {
			active++
		}
	}
	if active == 0 {
		return boot
	}

	candidate := boot
	if totalBoot := active * boot; pot > totalBoot {
		candidate = boot + (pot-totalBoot)/active
	}
	if candidate > TableCeiling {
		candidate = TableCeiling
	}
	return candidate
}

// MaxProposal is the largest amount the player may put into a single action.
func MaxProposal(balance int64) int64 {
	if balance < TableCeiling {
		return balance
	}
	return TableCeiling
}

// Decide resolves a selected action against the player's balance. A
// bet-requiring action the player cannot cover resolves to a fold so the
// player is never offered a wager they cannot place.
func Decide(player events.Player, action events.Action, currentBet int64) events.Action {
	if action.RequiresBet() && player.GameMoney < currentBet {
		return events.ActionFold
	}
	return action
}

// Draft is a locally held bet proposal. It is never sent until confirmed and
// is discarded on cancel.
type Draft struct {
	Action events.Action
	Amount int64

	currentBet int64
	balance    int64
}

// NewDraft opens a bet proposal for a bet-requiring action, seeded with the
// current bet.
func NewDraft(action events.Action, currentBet, balance int64) Draft {
	d := Draft{Action: action, currentBet: currentBet, balance: balance}
	d.SetAmount(currentBet)
	return d
}

// SetAmount clamps the proposed amount into [currentBet, MaxProposal].
func (d *Draft) SetAmount(amount int64) {
	if amount < d.currentBet {
		amount = d.currentBet
	}
	if max := MaxProposal(d.balance); amount > max {
		amount = max
	}
	d.Amount = amount
}
