package game

import (
	"context"
	"log"

	"github.com/xp-team/cryptopoker/server/engine"
	"github.com/xp-team/cryptopoker/server/store"
)

// MatchStore is the persisted-record collaborator. *store.DB implements it.
type MatchStore interface {
	CreateMatch(ctx context.Context, playerA, chatA int64) (*store.Match, error)
	FindOpenMatches(ctx context.Context) ([]store.Match, error)
	AtomicJoin(ctx context.Context, matchID string, playerB, chatB int64) (*store.Match, error)
	FindByID(ctx context.Context, matchID string) (*store.Match, error)
	UpdateBalances(ctx context.Context, matchID string, balanceA, balanceB int) error
	UpdateTurn(ctx context.Context, matchID string, playerID int64) error
	DeleteMatch(ctx context.Context, matchID string) error
}

// Service is the orchestrator facade exposed to the REST and chat layers.
// All session access goes through the registry's per-match lock, so at most
// one action is ever applied to a match's live hand at a time.
type Service struct {
	store    MatchStore
	registry *Registry
}

func NewService(st MatchStore, registry *Registry) *Service {
	return &Service{store: st, registry: registry}
}

// CreateMatch opens a match with only the owner seated. No session exists
// until a second player connects.
func (s *Service) CreateMatch(ctx context.Context, playerA, chatA int64) (*store.Match, error) {
	m, err := s.store.CreateMatch(ctx, playerA, chatA)
	if err != nil {
		return nil, Errorf(Internal, "create match: %v", err)
	}
	return m, nil
}

// ListOpenMatches returns matches still missing a second player.
func (s *Service) ListOpenMatches(ctx context.Context) ([]store.Match, error) {
	out, err := s.store.FindOpenMatches(ctx)
	if err != nil {
		return nil, Errorf(Internal, "list matches: %v", err)
	}
	return out, nil
}

// ConnectMatch seats playerB into an open match and deals the first hand.
// The store-level conditional update admits exactly one joiner; everyone
// else gets NotFound, as does a join on an absent match.
func (s *Service) ConnectMatch(ctx context.Context, matchID string, playerB, chatB int64) (*store.Match, *Deal, error) {
	m, err := s.store.AtomicJoin(ctx, matchID, playerB, chatB)
	if err != nil {
		return nil, nil, Errorf(Internal, "join match: %v", err)
	}
	if m == nil {
		return nil, nil, Errorf(NotFound, "match #%s not found", matchID)
	}

	mu := s.registry.Locker(matchID)
	mu.Lock()
	defer mu.Unlock()
	return s.resetHand(ctx, matchID)
}

// TakeAction validates and applies one player action, advancing the betting
// round when it ends and settling the hand when it is over. The returned
// deal either continues the hand (empty winner list) or carries the outcome
// plus the next hand's opening state.
func (s *Service) TakeAction(ctx context.Context, matchID string, playerID int64, kind engine.ActionKind, amount int) (*Deal, error) {
	mu := s.registry.Locker(matchID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.registry.Get(matchID)
	if err != nil {
		return nil, err
	}
	m, err := s.findMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.Seated(playerID) {
		return nil, Errorf(Forbidden, "you are not playing this match")
	}
	if m.TurnFor == nil || *m.TurnFor != playerID {
		return nil, Errorf(NotAcceptable, "it's not your turn")
	}

	if err := session.ActionTaken(kind, amount); err != nil {
		log.Printf("match %s: rejected %s(%d) from %d: %v", matchID, kind, amount, playerID, err)
		return nil, Errorf(NotAcceptable, "%v", err)
	}

	// round advancement is an explicit step, not a side effect of the action
	if !session.IsBettingRoundInProgress() {
		session.EndBettingRound()
	}

	if deal, settled, err := s.settle(ctx, m, session); err != nil {
		return nil, err
	} else if settled {
		return deal, nil
	}

	// hand continues: the awaited turn alternates to the other player
	if err := s.store.UpdateTurn(ctx, matchID, m.Opponent(playerID)); err != nil {
		return nil, Errorf(Internal, "update turn: %v", err)
	}
	return snapshot(session), nil
}

// CloseMatch terminates a match: the live session is dropped and the record
// deleted. Only a seated player may close.
func (s *Service) CloseMatch(ctx context.Context, matchID string, playerID int64) error {
	m, err := s.findMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !m.Seated(playerID) {
		return Errorf(Forbidden, "you are not playing this match")
	}
	mu := s.registry.Locker(matchID)
	mu.Lock()
	defer mu.Unlock()
	if err := s.store.DeleteMatch(ctx, matchID); err != nil {
		return Errorf(Internal, "delete match: %v", err)
	}
	s.registry.Remove(matchID)
	return nil
}

// FindMatch exposes the persisted record to transports.
func (s *Service) FindMatch(ctx context.Context, matchID string) (*store.Match, error) {
	return s.findMatch(ctx, matchID)
}

func (s *Service) findMatch(ctx context.Context, matchID string) (*store.Match, error) {
	m, err := s.store.FindByID(ctx, matchID)
	if err != nil {
		return nil, Errorf(Internal, "find match: %v", err)
	}
	if m == nil {
		return nil, Errorf(NotFound, "match #%s not found", matchID)
	}
	return m, nil
}
