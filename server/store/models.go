package store

import "time"

// Match is the persisted record of a two-player pairing. B-side fields are
// nil until a second player joins; they are set together or not at all.
type Match struct {
	ID        string
	PlayerA   int64
	ChatA     int64
	BalanceA  int
	PlayerB   *int64
	ChatB     *int64
	BalanceB  int
	TurnFor   *int64
	CreatedAt time.Time
}

// Open reports whether the match still misses a second player.
func (m *Match) Open() bool { return m.PlayerB == nil }

// Seated reports whether the given player occupies one of the two seats.
func (m *Match) Seated(playerID int64) bool {
	return m.PlayerA == playerID || (m.PlayerB != nil && *m.PlayerB == playerID)
}

// SeatOf returns 0 for playerA, 1 for playerB, -1 for strangers.
func (m *Match) SeatOf(playerID int64) int {
	switch {
	case m.PlayerA == playerID:
		return 0
	case m.PlayerB != nil && *m.PlayerB == playerID:
		return 1
	}
	return -1
}

// Opponent returns the other seated player's id.
func (m *Match) Opponent(playerID int64) int64 {
	if m.PlayerA == playerID && m.PlayerB != nil {
		return *m.PlayerB
	}
	return m.PlayerA
}

// ChatFor returns the chat reference for a seated player, 0 otherwise.
func (m *Match) ChatFor(playerID int64) int64 {
	switch m.SeatOf(playerID) {
	case 0:
		return m.ChatA
	case 1:
		if m.ChatB != nil {
			return *m.ChatB
		}
	}
	return 0
}
