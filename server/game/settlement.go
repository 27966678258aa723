package game

import (
	"context"
	"log"

	"github.com/xp-team/cryptopoker/server/engine"
	"github.com/xp-team/cryptopoker/server/store"
)

// settle interprets engine state after an action that may have ended the
// hand. Two mutually exclusive paths resolve an ended hand; while the hand
// continues it reports settled=false and touches nothing.
//
// Path A, showdown: the engine never names a winner, so the outcome is read
// from stack deltas against the balances persisted before the hand started.
// Path B, fold: exactly one seat is still eligible for the pot; it takes
// the full pot size off the other seat's balance.
func (s *Service) settle(ctx context.Context, m *store.Match, session Session) (*Deal, bool, error) {
	pots := session.Pots()
	if len(pots) == 0 {
		return nil, false, nil
	}
	winning := pots[0].Size

	if session.ShowdownReachable() {
		hole, board := session.HoleCards(), session.CommunityCards()
		if err := session.Showdown(); err != nil {
			return nil, false, Errorf(Internal, "showdown: %v", err)
		}
		if len(hole) == 2 && len(board) == 5 {
			log.Printf("match %s showdown: %s vs %s", m.ID,
				engine.Describe(hole[0], board), engine.Describe(hole[1], board))
		}
		seats := session.Seats()
		var winners []int64
		switch {
		case seats[0].TotalChips == m.BalanceA && seats[1].TotalChips == m.BalanceB:
			winners = []int64{m.PlayerA, *m.PlayerB} // draw
		case seats[0].TotalChips > m.BalanceA:
			winners = []int64{m.PlayerA}
		default:
			winners = []int64{*m.PlayerB}
		}
		if err := s.store.UpdateBalances(ctx, m.ID, seats[0].TotalChips, seats[1].TotalChips); err != nil {
			return nil, false, Errorf(Internal, "persist balances: %v", err)
		}
		return s.finishHand(ctx, m.ID, winners, winning)
	}

	if session.IsHandInProgress() {
		return nil, false, nil
	}

	pot := pots[0]
	if len(pot.EligiblePlayers) != 1 {
		return nil, false, nil
	}
	balanceA, balanceB := m.BalanceA, m.BalanceB
	var winners []int64
	if pot.EligiblePlayers[0] == 0 {
		balanceA += pot.Size
		balanceB -= pot.Size
		winners = []int64{m.PlayerA}
	} else {
		balanceA -= pot.Size
		balanceB += pot.Size
		winners = []int64{*m.PlayerB}
	}
	if err := s.store.UpdateBalances(ctx, m.ID, balanceA, balanceB); err != nil {
		return nil, false, Errorf(Internal, "persist balances: %v", err)
	}
	return s.finishHand(ctx, m.ID, winners, pot.Size)
}

// finishHand starts the next hand before the outcome is returned, so the
// next inbound action targets the new session.
func (s *Service) finishHand(ctx context.Context, matchID string, winners []int64, winning int) (*Deal, bool, error) {
	_, deal, err := s.resetHand(ctx, matchID)
	if err != nil {
		return nil, false, err
	}
	deal.Winners = winners
	deal.Winning = winning
	return deal, true, nil
}
