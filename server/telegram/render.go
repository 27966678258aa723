package telegram

import (
	"fmt"
	"strings"

	"github.com/xp-team/cryptopoker/server/engine"
	"github.com/xp-team/cryptopoker/server/game"
	"github.com/xp-team/cryptopoker/server/store"
)

func emojifyCard(c engine.Card) string {
	switch c.Suit {
	case 'c':
		return "♣️ " + c.RankString()
	case 'd':
		return "♦️ " + c.RankString()
	case 'h':
		return "♥️ " + c.RankString()
	case 's':
		return "♠️ " + c.RankString()
	}
	return c.String()
}

func emojifyHand(h engine.HoleHand) string {
	return emojifyCard(h.First) + "  " + emojifyCard(h.Second)
}

func emojifyBoard(cards []engine.Card) string {
	if len(cards) == 0 {
		return "—"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = emojifyCard(c)
	}
	return strings.Join(parts, "  ")
}

// renderDeal shows one seat its view of the table. Seat is 0 for playerA.
func renderDeal(d *game.Deal, seat int) string {
	var b strings.Builder
	hole := d.PlayerACards
	chips, bet := d.PlayerAChips, d.PlayerABet
	oppChips, oppBet := d.PlayerBChips, d.PlayerBBet
	if seat == 1 {
		hole = d.PlayerBCards
		chips, bet = d.PlayerBChips, d.PlayerBBet
		oppChips, oppBet = d.PlayerAChips, d.PlayerABet
	}
	if hole != nil {
		fmt.Fprintf(&b, "Your cards: %s\n", emojifyHand(*hole))
	}
	fmt.Fprintf(&b, "Board: %s\n", emojifyBoard(d.CommunityCards))
	fmt.Fprintf(&b, "Pot: %d\n", d.Pot)
	fmt.Fprintf(&b, "You: %d chips (bet %d)\n", chips, bet)
	fmt.Fprintf(&b, "Opponent: %d chips (bet %d)", oppChips, oppBet)
	return b.String()
}

// renderOutcome announces a settled hand to one seat, followed by the next
// hand's opening state.
func renderOutcome(m *store.Match, d *game.Deal, playerID int64) string {
	var b strings.Builder
	switch {
	case len(d.Winners) == 2:
		b.WriteString("🤝 Split pot!\n")
	case len(d.Winners) == 1 && d.Winners[0] == playerID:
		fmt.Fprintf(&b, "🏆 You win %d!\n", d.Winning)
	case len(d.Winners) == 1:
		fmt.Fprintf(&b, "😿 You lose %d.\n", d.Winning)
	}
	b.WriteString("\nNext hand:\n")
	b.WriteString(renderDeal(d, m.SeatOf(playerID)))
	return b.String()
}

func renderOpenMatches(matches []store.Match) string {
	if len(matches) == 0 {
		return "No open matches. Start one with /new."
	}
	var b strings.Builder
	b.WriteString("Open matches:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "• %s (player %d)\n", m.ID, m.PlayerA)
	}
	b.WriteString("Join one with /join <id>.")
	return b.String()
}

const helpText = `Heads-up poker, one command per move:
/new — open a match and wait for an opponent
/games — list matches waiting for a player
/join <id> — take the second seat
/fold /check /call — act when it is your turn
/bet <amount> /raise <amount> — put chips in
/leave — abandon the current match`
