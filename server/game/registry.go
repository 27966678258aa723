package game

import (
	"sync"

	"github.com/xp-team/cryptopoker/server/engine"
)

// Session is the live rules-engine instance backing one match's current
// hand. It is stateful, in-memory only, and fully replaced on every reset.
type Session interface {
	ActionTaken(kind engine.ActionKind, amount int) error
	IsBettingRoundInProgress() bool
	IsHandInProgress() bool
	EndBettingRound()
	HoleCards() []engine.HoleHand
	CommunityCards() []engine.Card
	Pots() []engine.Pot
	ShowdownReachable() bool
	Showdown() error
	Seats() []engine.SeatState
}

// SessionFactory builds a fresh engine instance, seats both players at the
// given stacks, posts the forced bets and starts the hand.
type SessionFactory func(balanceA, balanceB int) Session

// EngineFactory is the production SessionFactory.
func EngineFactory(forced engine.ForcedBets) SessionFactory {
	return func(balanceA, balanceB int) Session {
		t := engine.NewTable(forced)
		t.SitDown(0, balanceA)
		t.SitDown(1, balanceB)
		t.StartHand()
		return t
	}
}

// Registry owns the matchID -> live session mapping and the per-match
// mutexes that serialize every access to a session, from the direct action
// path and the poll dispatch path alike.
type Registry struct {
	newSession SessionFactory

	mu       sync.Mutex
	sessions map[string]Session
	locks    map[string]*sync.Mutex
}

func NewRegistry(newSession SessionFactory) *Registry {
	return &Registry{
		newSession: newSession,
		sessions:   make(map[string]Session),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Locker returns the serialization point for one match. Callers hold it
// across any session read, action, or replacement.
func (r *Registry) Locker(matchID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	mu, ok := r.locks[matchID]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[matchID] = mu
	}
	return mu
}

// Get returns the live session for a match, NotFound when no hand is open.
func (r *Registry) Get(matchID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[matchID]
	if !ok {
		return nil, Errorf(NotFound, "match #%s not found", matchID)
	}
	return s, nil
}

// Create starts a fresh hand for the match, discarding any prior session.
// Safe only because settlement persists balances before any reset.
func (r *Registry) Create(matchID string, balanceA, balanceB int) Session {
	s := r.newSession(balanceA, balanceB)
	r.mu.Lock()
	r.sessions[matchID] = s
	r.mu.Unlock()
	return s
}

// Remove drops the live session on match termination.
func (r *Registry) Remove(matchID string) {
	r.mu.Lock()
	delete(r.sessions, matchID)
	delete(r.locks, matchID)
	r.mu.Unlock()
}
