package engine

// ForcedBets is the blind schedule posted at the start of every hand.
type ForcedBets struct {
	Ante       int
	SmallBlind int
	BigBlind   int
}

type ActionKind string

const (
	Fold  ActionKind = "fold"
	Check ActionKind = "check"
	Call  ActionKind = "call"
	Bet   ActionKind = "bet"
	Raise ActionKind = "raise"
)

// ParseAction maps wire text to an ActionKind.
func ParseAction(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case Fold, Check, Call, Bet, Raise:
		return ActionKind(s), true
	}
	return "", false
}

type Card struct {
	Rank int
	Suit byte
} // e.g. "As" => rank 14, suit 's'

// HoleHand is one seat's two private cards.
type HoleHand struct {
	First  Card `json:"first"`
	Second Card `json:"second"`
}

// Pot is a pot plus the seats still eligible to win it.
type Pot struct {
	Size            int   `json:"size"`
	EligiblePlayers []int `json:"eligiblePlayers"`
}

// SeatState is the public view of one seat. TotalChips counts chips behind
// plus the seat's uncollected bet; during showdown it equals the stack.
type SeatState struct {
	BetSize    int `json:"betSize"`
	StackSize  int `json:"stackSize"`
	TotalChips int `json:"totalChips"`
}
