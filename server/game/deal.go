package game

import (
	"github.com/xp-team/cryptopoker/server/engine"
)

// Deal is the public state returned after every operation: the fresh deal
// on connect, the intermediate state while a hand continues (empty winner
// list), or the settled outcome plus the next hand's opening state.
//
// Both seats' hole cards are exposed, as the system this replaces did.
type Deal struct {
	CommunityCards []engine.Card    `json:"communityCards"`
	PlayerACards   *engine.HoleHand `json:"playerACards"`
	PlayerBCards   *engine.HoleHand `json:"playerBCards"`
	PlayerAChips   int              `json:"playerAChips"`
	PlayerBChips   int              `json:"playerBChips"`
	PlayerABet     int              `json:"playerABet"`
	PlayerBBet     int              `json:"playerBBet"`
	Pot            int              `json:"pot"`
	Winners        []int64          `json:"winner"`
	Winning        int              `json:"winning"`
}

// Settled reports whether the deal carries a hand outcome.
func (d *Deal) Settled() bool { return len(d.Winners) > 0 }

// snapshot captures a session's public state. Pot is the aggregate of
// collected chips and bets still on the table.
func snapshot(session Session) *Deal {
	seats := session.Seats()
	hole := session.HoleCards()
	d := &Deal{
		CommunityCards: session.CommunityCards(),
		PlayerAChips:   seats[0].TotalChips,
		PlayerBChips:   seats[1].TotalChips,
		PlayerABet:     seats[0].BetSize,
		PlayerBBet:     seats[1].BetSize,
		Winners:        []int64{},
	}
	if len(hole) == 2 {
		a, b := hole[0], hole[1]
		d.PlayerACards = &a
		d.PlayerBCards = &b
	}
	if pots := session.Pots(); len(pots) > 0 {
		d.Pot = pots[0].Size
	}
	return d
}
