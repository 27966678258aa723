package game

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/xp-team/cryptopoker/server/engine"
	"github.com/xp-team/cryptopoker/server/store"
)

// memStore is an in-memory MatchStore with the same atomic-join semantics
// as the SQL conditional update.
type memStore struct {
	mu      sync.Mutex
	seq     int
	matches map[string]*store.Match
}

func newMemStore() *memStore {
	return &memStore{matches: make(map[string]*store.Match)}
}

func (s *memStore) CreateMatch(_ context.Context, playerA, chatA int64) (*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m := &store.Match{
		ID:       fmt.Sprintf("m%d", s.seq),
		PlayerA:  playerA,
		ChatA:    chatA,
		BalanceA: 100,
		BalanceB: 100,
	}
	s.matches[m.ID] = m
	return copyMatch(m), nil
}

func (s *memStore) FindOpenMatches(context.Context) ([]store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Match
	for _, m := range s.matches {
		if m.Open() {
			out = append(out, *copyMatch(m))
		}
	}
	return out, nil
}

func (s *memStore) AtomicJoin(_ context.Context, matchID string, playerB, chatB int64) (*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok || m.PlayerB != nil {
		return nil, nil
	}
	m.PlayerB = &playerB
	m.ChatB = &chatB
	turn := m.PlayerA
	m.TurnFor = &turn
	return copyMatch(m), nil
}

func (s *memStore) FindByID(_ context.Context, matchID string) (*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return nil, nil
	}
	return copyMatch(m), nil
}

func (s *memStore) UpdateBalances(_ context.Context, matchID string, balanceA, balanceB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return fmt.Errorf("no match %s", matchID)
	}
	m.BalanceA, m.BalanceB = balanceA, balanceB
	return nil
}

func (s *memStore) UpdateTurn(_ context.Context, matchID string, playerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return fmt.Errorf("no match %s", matchID)
	}
	m.TurnFor = &playerID
	return nil
}

func (s *memStore) DeleteMatch(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
	return nil
}

func copyMatch(m *store.Match) *store.Match {
	c := *m
	if m.PlayerB != nil {
		v := *m.PlayerB
		c.PlayerB = &v
	}
	if m.ChatB != nil {
		v := *m.ChatB
		c.ChatB = &v
	}
	if m.TurnFor != nil {
		v := *m.TurnFor
		c.TurnFor = &v
	}
	return &c
}

func (s *memStore) balances(matchID string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.matches[matchID]
	return m.BalanceA, m.BalanceB
}

var forced = engine.ForcedBets{Ante: 0, SmallBlind: 1, BigBlind: 2}

func newTestService() (*Service, *memStore) {
	st := newMemStore()
	return NewService(st, NewRegistry(EngineFactory(forced))), st
}

func TestCreateMatchLeavesSecondSeatOpen(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	m, err := svc.CreateMatch(ctx, 1, 100)
	if err != nil {
		t.Fatal(err)
	}
	if m.PlayerB != nil || m.ChatB != nil {
		t.Fatal("fresh match must not have a second player")
	}
	open, err := svc.ListOpenMatches(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].ID != m.ID {
		t.Fatalf("open matches = %v, want just %s", open, m.ID)
	}
}

func TestConnectMatchDealsFirstHand(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	m, _ := svc.CreateMatch(ctx, 1, 100)
	joined, deal, err := svc.ConnectMatch(ctx, m.ID, 2, 200)
	if err != nil {
		t.Fatal(err)
	}
	if joined.PlayerB == nil || *joined.PlayerB != 2 {
		t.Fatalf("playerB = %v, want 2", joined.PlayerB)
	}
	if joined.TurnFor == nil || *joined.TurnFor != 1 {
		t.Fatal("a new hand always awaits playerA")
	}
	if deal.Pot != 3 {
		t.Fatalf("opening pot = %d, want 3 (blinds)", deal.Pot)
	}
	if deal.PlayerACards == nil || deal.PlayerBCards == nil {
		t.Fatal("both hole hands should be dealt")
	}
	if len(deal.Winners) != 0 {
		t.Fatal("fresh deal must carry no winners")
	}

	open, _ := svc.ListOpenMatches(ctx)
	if len(open) != 0 {
		t.Fatal("joined match still listed as open")
	}
}

func TestConnectMatchExactlyOnce(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMatch(ctx, 1, 100)

	const joiners = 8
	errs := make(chan error, joiners)
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(player int64) {
			defer wg.Done()
			_, _, err := svc.ConnectMatch(ctx, m.ID, player, player*10)
			errs <- err
		}(int64(i + 2))
	}
	wg.Wait()
	close(errs)

	var ok, notFound int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case KindOf(err) == NotFound:
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || notFound != joiners-1 {
		t.Fatalf("joins: %d succeeded, %d NotFound; want exactly one winner", ok, notFound)
	}
}

func TestConnectMissingMatch(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.ConnectMatch(context.Background(), "nope", 2, 200)
	if KindOf(err) != NotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestTakeActionValidation(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMatch(ctx, 1, 100)
	svc.ConnectMatch(ctx, m.ID, 2, 200)

	if _, err := svc.TakeAction(ctx, "nope", 1, engine.Call, 0); KindOf(err) != NotFound {
		t.Fatalf("absent match: %v, want NotFound", err)
	}
	if _, err := svc.TakeAction(ctx, m.ID, 99, engine.Call, 0); KindOf(err) != Forbidden {
		t.Fatalf("stranger: %v, want Forbidden", err)
	}
	if _, err := svc.TakeAction(ctx, m.ID, 2, engine.Call, 0); KindOf(err) != NotAcceptable {
		t.Fatalf("out of turn: %v, want NotAcceptable", err)
	}
	// an illegal action is engine-rejected and changes nothing
	if _, err := svc.TakeAction(ctx, m.ID, 1, engine.Check, 0); KindOf(err) != NotAcceptable {
		t.Fatalf("illegal check: %v, want NotAcceptable", err)
	}
	if a, b := st.balances(m.ID); a != 100 || b != 100 {
		t.Fatalf("balances moved to %d/%d on rejected actions", a, b)
	}
	cur, _ := svc.FindMatch(ctx, m.ID)
	if *cur.TurnFor != 1 {
		t.Fatal("rejected action must not flip the turn")
	}
}

func TestTurnAlternatesEachAction(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMatch(ctx, 1, 100)
	svc.ConnectMatch(ctx, m.ID, 2, 200)

	steps := []struct {
		player int64
		kind   engine.ActionKind
		turn   int64 // awaited after the action
	}{
		{1, engine.Call, 2},
		{2, engine.Check, 1}, // closes preflop, flop dealt
		{1, engine.Check, 2},
		{2, engine.Check, 1}, // closes the flop
	}
	for i, s := range steps {
		deal, err := svc.TakeAction(ctx, m.ID, s.player, s.kind, 0)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if deal.Settled() {
			t.Fatalf("step %d: hand settled early", i)
		}
		cur, _ := svc.FindMatch(ctx, m.ID)
		if cur.TurnFor == nil || *cur.TurnFor != s.turn {
			t.Fatalf("step %d: turnFor = %v, want %d", i, cur.TurnFor, s.turn)
		}
	}
}

func TestFoldSettlesAndResets(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMatch(ctx, 1, 100)
	svc.ConnectMatch(ctx, m.ID, 2, 200)

	deal, err := svc.TakeAction(ctx, m.ID, 1, engine.Fold, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !deal.Settled() {
		t.Fatal("fold must settle the hand")
	}
	if len(deal.Winners) != 1 || deal.Winners[0] != 2 {
		t.Fatalf("winners = %v, want [2]", deal.Winners)
	}
	// uncalled half of the big blind comes back, so the pot is 2
	if deal.Winning != 2 {
		t.Fatalf("winning = %d, want 2", deal.Winning)
	}
	a, b := st.balances(m.ID)
	if a != 98 || b != 102 {
		t.Fatalf("balances = %d/%d, want 98/102", a, b)
	}
	if a+b != 200 {
		t.Fatalf("balance sum = %d, want 200", a+b)
	}

	// the next hand is already live and re-seeded from the running balances
	cur, _ := svc.FindMatch(ctx, m.ID)
	if *cur.TurnFor != 1 {
		t.Fatal("next hand must await playerA")
	}
	if deal.PlayerAChips != 98 || deal.PlayerBChips != 102 {
		t.Fatalf("next hand chips = %d/%d, want 98/102", deal.PlayerAChips, deal.PlayerBChips)
	}
	if deal.Pot != 3 {
		t.Fatalf("next hand pot = %d, want 3", deal.Pot)
	}
}

func TestBalanceSumInvariantAcrossFullHand(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMatch(ctx, 1, 100)
	svc.ConnectMatch(ctx, m.ID, 2, 200)

	// check the hand down to showdown
	script := []struct {
		player int64
		kind   engine.ActionKind
	}{
		{1, engine.Call}, {2, engine.Check},
		{1, engine.Check}, {2, engine.Check},
		{1, engine.Check}, {2, engine.Check},
		{1, engine.Check}, {2, engine.Check},
	}
	var last *Deal
	for i, s := range script {
		a, b := st.balances(m.ID)
		if a+b != 200 {
			t.Fatalf("step %d: balance sum %d before settlement", i, a+b)
		}
		deal, err := svc.TakeAction(ctx, m.ID, s.player, s.kind, 0)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		last = deal
	}
	if last == nil || !last.Settled() {
		t.Fatal("river check-down must reach showdown settlement")
	}
	a, b := st.balances(m.ID)
	if a+b != 200 {
		t.Fatalf("balance sum after settlement = %d, want 200", a+b)
	}
	if len(last.Winners) == 0 || len(last.Winners) > 2 {
		t.Fatalf("winners = %v", last.Winners)
	}
}

func TestCloseMatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMatch(ctx, 1, 100)
	svc.ConnectMatch(ctx, m.ID, 2, 200)

	if err := svc.CloseMatch(ctx, m.ID, 3); KindOf(err) != Forbidden {
		t.Fatal("stranger must not close a match")
	}
	if err := svc.CloseMatch(ctx, m.ID, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.FindMatch(ctx, m.ID); KindOf(err) != NotFound {
		t.Fatal("closed match still findable")
	}
	if _, err := svc.TakeAction(ctx, m.ID, 1, engine.Fold, 0); KindOf(err) != NotFound {
		t.Fatal("closed match still playable")
	}
}
