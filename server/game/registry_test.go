package game

import (
	"testing"

	"github.com/xp-team/cryptopoker/server/engine"
)

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry(EngineFactory(forced))
	if _, err := r.Get("m1"); KindOf(err) != NotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestRegistryCreateReplacesSession(t *testing.T) {
	r := NewRegistry(EngineFactory(forced))
	first := r.Create("m1", 100, 100)
	second := r.Create("m1", 100, 100)
	if first == second {
		t.Fatal("replacement must build a brand new session")
	}
	got, err := r.Get("m1")
	if err != nil {
		t.Fatal(err)
	}
	if got != second {
		t.Fatal("registry should hold the latest session")
	}
}

// Two resets in a row leave two independent fresh hands, each re-seeded
// from the same stacks with no residue from the discarded session.
func TestRegistryResetIsIdempotent(t *testing.T) {
	r := NewRegistry(EngineFactory(forced))
	for i := 0; i < 2; i++ {
		s := r.Create("m1", 50, 60)
		seats := s.Seats()
		if seats[0].TotalChips != 50 || seats[1].TotalChips != 60 {
			t.Fatalf("reset %d: totals = %d/%d, want 50/60", i, seats[0].TotalChips, seats[1].TotalChips)
		}
		if seats[0].BetSize != 1 || seats[1].BetSize != 2 {
			t.Fatalf("reset %d: blinds not freshly posted", i)
		}
		if !s.IsHandInProgress() || len(s.CommunityCards()) != 0 {
			t.Fatalf("reset %d: not a fresh hand", i)
		}
	}
}

func TestRegistryLockerIsStablePerMatch(t *testing.T) {
	r := NewRegistry(EngineFactory(forced))
	if r.Locker("m1") != r.Locker("m1") {
		t.Fatal("same match must share one lock")
	}
	if r.Locker("m1") == r.Locker("m2") {
		t.Fatal("different matches must not share a lock")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(EngineFactory(forced))
	r.Create("m1", 100, 100)
	r.Remove("m1")
	if _, err := r.Get("m1"); KindOf(err) != NotFound {
		t.Fatal("removed session still reachable")
	}
}

func TestEngineFactorySeatsAndStarts(t *testing.T) {
	s := EngineFactory(engine.ForcedBets{SmallBlind: 1, BigBlind: 2})(30, 40)
	if !s.IsHandInProgress() {
		t.Fatal("factory must start the hand")
	}
	pots := s.Pots()
	if len(pots) != 1 || pots[0].Size != 3 {
		t.Fatalf("pots = %v, want opening blinds", pots)
	}
}
