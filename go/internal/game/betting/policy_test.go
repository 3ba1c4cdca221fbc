package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tashclub/teenpatti/go/internal/game/events"
)

func activePlayers(n int) []events.Player {
	players := make([]events.Player, n)
	for i := range players {
		players[i].Playing = true
	}
	return players
}

func TestCurrentBetBootOnly(t *testing.T) {
	// Three boots in the pot, nothing extra.
	got := CurrentBet(activePlayers(3), 1500, 500)
	assert.Equal(t, int64(500), got)
}

func TestCurrentBetSpreadsExtraAcrossActivePlayers(t *testing.T) {
	// extra = 4500 - 1500 = 3000, split three ways on top of the boot.
	got := CurrentBet(activePlayers(3), 4500, 500)
	assert.Equal(t, int64(1500), got)
}

func TestCurrentBetClampsToTableCeiling(t *testing.T) {
	got := CurrentBet(activePlayers(2), 50000, 500)
	assert.Equal(t, TableCeiling, got)
}

func TestCurrentBetFloorsDivision(t *testing.T) {
	// extra = 1000 over 3 players -> 333 each.
	got := CurrentBet(activePlayers(3), 2500, 500)
	assert.Equal(t, int64(833), got)
}

func TestCurrentBetNoActivePlayers(t *testing.T) {
	players := activePlayers(3)
	for i := range players {
		players[i].Playing = false
	}
	assert.Equal(t, int64(500), CurrentBet(players, 9000, 500))
	assert.Equal(t, int64(500), CurrentBet(nil, 0, 500))
}

func TestMaxProposal(t *testing.T) {
	assert.Equal(t, int64(300), MaxProposal(300))
	assert.Equal(t, TableCeiling, MaxProposal(12000))
}

func TestDecideRoutesShortStackToFold(t *testing.T) {
	short := events.Player{UserID: "u1", GameMoney: 300, Playing: true}

	assert.Equal(t, events.ActionFold, Decide(short, events.ActionBlind, 500))
	assert.Equal(t, events.ActionFold, Decide(short, events.ActionChaal, 500))

	// Non-betting actions are unaffected by balance.
	assert.Equal(t, events.ActionSee, Decide(short, events.ActionSee, 500))
	assert.Equal(t, events.ActionFold, Decide(short, events.ActionFold, 500))
}

func TestDecideKeepsAffordableAction(t *testing.T) {
	p := events.Player{UserID: "u1", GameMoney: 2000, Playing: true}
	assert.Equal(t, events.ActionChaal, Decide(p, events.ActionChaal, 500))
}

func TestDraftClampsProposedAmount(t *testing.T) {
	d := NewDraft(events.ActionChaal, 500, 3000)
	assert.Equal(t, int64(500), d.Amount)

	d.SetAmount(200)
	assert.Equal(t, int64(500), d.Amount, "cannot propose below the current bet")

	d.SetAmount(9000)
	assert.Equal(t, int64(3000), d.Amount, "cannot propose beyond own balance")

	d.SetAmount(1200)
	assert.Equal(t, int64(1200), d.Amount)
}

func TestDraftRespectsTableCeiling(t *testing.T) {
	d := NewDraft(events.ActionBlind, 500, 100000)
	d.SetAmount(99999)
	assert.Equal(t, TableCeiling, d.Amount)
}
