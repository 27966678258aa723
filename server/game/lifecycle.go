package game

import (
	"context"

	"github.com/xp-team/cryptopoker/server/store"
)

// resetHand discards the current session and deals the next hand, reseating
// both players at their just-persisted running balances. Every hand opens
// awaiting playerA; there is no button rotation. The caller holds the
// match lock.
func (s *Service) resetHand(ctx context.Context, matchID string) (*store.Match, *Deal, error) {
	m, err := s.findMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	session := s.registry.Create(matchID, m.BalanceA, m.BalanceB)
	if err := s.store.UpdateTurn(ctx, matchID, m.PlayerA); err != nil {
		return nil, nil, Errorf(Internal, "update turn: %v", err)
	}
	turn := m.PlayerA
	m.TurnFor = &turn
	return m, snapshot(session), nil
}
