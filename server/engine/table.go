package engine

import (
	"errors"
	"fmt"
)

// Table is one heads-up hold'em hand in progress. It keeps no history and
// persists nothing; callers build a fresh Table for every hand.
type Table struct {
	forced ForcedBets
	seed   int64

	deck   []Card
	board  []Card
	street string

	seats [2]*seat
	pot   int // collected from completed streets

	curBet   int
	minRaise int
	toAct    int

	phase      phase
	streetActs int
	lastAct    ActionKind
}

type seat struct {
	stack     int
	committed int
	hole      []Card
	folded    bool
	allIn     bool
}

type phase int

const (
	phaseWaiting phase = iota
	phaseBetting
	phaseShowdown
	phaseOver
)

const (
	streetPreflop = "preflop"
	streetFlop    = "flop"
	streetTurn    = "turn"
	streetRiver   = "river"
)

func NewTable(forced ForcedBets) *Table {
	return &Table{forced: forced}
}

// Seed fixes the deck shuffle for the next StartHand. Zero keeps it random.
func (t *Table) Seed(seed int64) { t.seed = seed }

// SitDown places a stack at seat index 0 or 1.
func (t *Table) SitDown(index, stack int) {
	if index < 0 || index > 1 {
		return
	}
	t.seats[index] = &seat{stack: stack}
}

// StartHand posts the forced bets, deals hole cards and opens preflop
// betting. Both seats must be occupied.
func (t *Table) StartHand() {
	a, b := t.seats[0], t.seats[1]
	if a == nil || b == nil || t.phase == phaseBetting {
		return
	}
	t.deck = NewDeck(t.seed)
	t.board = nil
	t.street = streetPreflop
	t.pot = 0
	t.curBet = 0

	for _, s := range t.seats {
		ante := t.forced.Ante
		if ante > s.stack {
			ante = s.stack
		}
		s.stack -= ante
		t.pot += ante
	}
	t.put(a, t.forced.SmallBlind)
	t.put(b, t.forced.BigBlind)
	t.minRaise = t.forced.BigBlind

	a.hole = []Card{t.pop(), t.pop()}
	b.hole = []Card{t.pop(), t.pop()}

	t.toAct = 0 // small blind opens in heads-up
	t.streetActs = 0
	t.lastAct = ""
	t.phase = phaseBetting
}

func (t *Table) pop() Card { c := t.deck[0]; t.deck = t.deck[1:]; return c }

// put moves chips from a seat into its street commitment, capping at the
// stack (all-in) and tracking the current bet level.
func (t *Table) put(s *seat, amt int) {
	if amt >= s.stack {
		amt = s.stack
		s.allIn = true
	}
	s.stack -= amt
	s.committed += amt
	if s.committed > t.curBet {
		t.curBet = s.committed
	}
}

// ActionTaken applies one action for the seat currently to act. Illegal
// actions are rejected with an error and leave the table untouched.
func (t *Table) ActionTaken(kind ActionKind, amount int) error {
	if t.phase != phaseBetting {
		return errors.New("no betting round in progress")
	}
	a := t.seats[t.toAct]
	toCall := t.curBet - a.committed

	switch kind {
	case Fold:
		a.folded = true
	case Check:
		if toCall != 0 {
			return errors.New("cannot check facing a bet")
		}
	case Call:
		if toCall <= 0 {
			return errors.New("nothing to call")
		}
		t.put(a, toCall)
	case Bet:
		if t.curBet != 0 {
			return errors.New("cannot bet over a live bet, raise instead")
		}
		if amount <= 0 {
			return errors.New("bet needs an amount")
		}
		if amount < t.minRaise && amount < a.stack {
			return fmt.Errorf("min bet %d", t.minRaise)
		}
		t.put(a, amount)
		t.minRaise = t.curBet
	case Raise:
		if t.curBet == 0 {
			return errors.New("nothing to raise, bet instead")
		}
		if amount <= t.curBet {
			return fmt.Errorf("raise must exceed current bet %d", t.curBet)
		}
		if amount < t.curBet+t.minRaise && amount-a.committed < a.stack {
			return fmt.Errorf("min raise to %d", t.curBet+t.minRaise)
		}
		prev := t.curBet
		t.put(a, amount-a.committed)
		t.minRaise = t.curBet - prev
	default:
		return fmt.Errorf("unknown action %q", kind)
	}

	t.streetActs++
	t.lastAct = kind
	t.toAct = 1 - t.toAct
	return nil
}

// IsBettingRoundInProgress reports whether the current street still awaits
// action. A fold or a closed betting line ends the street; the caller must
// then invoke EndBettingRound explicitly.
func (t *Table) IsBettingRoundInProgress() bool {
	if t.phase != phaseBetting {
		return false
	}
	a, b := t.seats[0], t.seats[1]
	if a.folded || b.folded {
		return false
	}
	if a.allIn && b.allIn {
		return false
	}
	matched := (a.allIn || a.committed == t.curBet) && (b.allIn || b.committed == t.curBet)
	if matched && t.streetActs >= 2 && (t.lastAct == Check || t.lastAct == Call) {
		return false
	}
	return true
}

func (t *Table) IsHandInProgress() bool {
	return t.phase == phaseBetting || t.phase == phaseShowdown
}

// EndBettingRound sweeps street bets into the pot and advances the hand:
// next street, showdown once the river is closed (running the board out
// first when a seat is all-in), or straight to the end after a fold. Any
// uncalled portion of the last bet goes back to its owner.
func (t *Table) EndBettingRound() {
	if t.phase != phaseBetting {
		return
	}
	a, b := t.seats[0], t.seats[1]
	if a.committed > b.committed {
		t.refund(a, a.committed-b.committed)
	} else if b.committed > a.committed {
		t.refund(b, b.committed-a.committed)
	}
	t.pot += a.committed + b.committed
	a.committed, b.committed = 0, 0
	t.curBet = 0
	t.minRaise = t.forced.BigBlind
	t.streetActs = 0
	t.lastAct = ""

	switch {
	case a.folded || b.folded:
		t.phase = phaseOver
	case t.street == streetRiver:
		t.phase = phaseShowdown
	case a.allIn || b.allIn:
		// no further betting is possible: run the board out
		for t.street != streetRiver {
			t.nextStreet()
		}
		t.phase = phaseShowdown
	default:
		t.nextStreet()
		t.toAct = 1 // big blind acts first postflop in heads-up
	}
}

func (t *Table) refund(s *seat, amt int) {
	s.stack += amt
	s.committed -= amt
	s.allIn = s.stack == 0
}

func (t *Table) nextStreet() {
	switch t.street {
	case streetPreflop:
		t.board = append(t.board, t.pop(), t.pop(), t.pop())
		t.street = streetFlop
	case streetFlop:
		t.board = append(t.board, t.pop())
		t.street = streetTurn
	case streetTurn:
		t.board = append(t.board, t.pop())
		t.street = streetRiver
	}
}

// ShowdownReachable reports whether the hand has reached showdown. It is
// the discriminator between showdown settlement and fold settlement.
func (t *Table) ShowdownReachable() bool { return t.phase == phaseShowdown }

// Showdown evaluates both hands and moves the pot to the winner's stack;
// a tie splits it, odd chip to seat 0. Fails unless the hand actually
// reached showdown.
func (t *Table) Showdown() error {
	if t.phase != phaseShowdown {
		return errors.New("showdown not reachable")
	}
	a, b := t.seats[0], t.seats[1]
	ra := best5of7(append(append([]Card{}, a.hole...), t.board...))
	rb := best5of7(append(append([]Card{}, b.hole...), t.board...))
	pot := t.pot
	t.pot = 0
	switch {
	case better(ra, rb):
		a.stack += pot
	case better(rb, ra):
		b.stack += pot
	default:
		half := pot / 2
		b.stack += half
		a.stack += pot - half
	}
	t.phase = phaseOver
	return nil
}

func (t *Table) HoleCards() []HoleHand {
	out := make([]HoleHand, 2)
	for i, s := range t.seats {
		if s != nil && len(s.hole) == 2 {
			out[i] = HoleHand{First: s.hole[0], Second: s.hole[1]}
		}
	}
	return out
}

func (t *Table) CommunityCards() []Card {
	return append([]Card{}, t.board...)
}

// Pots returns the single heads-up pot, bets on the table included, with
// the seats still eligible to win it.
func (t *Table) Pots() []Pot {
	size := t.pot
	var eligible []int
	for i, s := range t.seats {
		if s == nil {
			continue
		}
		size += s.committed
		if !s.folded {
			eligible = append(eligible, i)
		}
	}
	return []Pot{{Size: size, EligiblePlayers: eligible}}
}

func (t *Table) Seats() []SeatState {
	out := make([]SeatState, 2)
	for i, s := range t.seats {
		if s == nil {
			continue
		}
		out[i] = SeatState{
			BetSize:    s.committed,
			StackSize:  s.stack,
			TotalChips: s.stack + s.committed,
		}
	}
	return out
}
