package rules

// FirstOfferRound is the first round in which cards are offered.
const FirstOfferRound = 3

// ShouldOfferCard reports whether cards are offered in round: 3, 5, 7, ...
func ShouldOfferCard(round int) bool {
	return round >= FirstOfferRound && round%2 == 1
}

// IsGameOver reports whether round lies past the turn limit.
func IsGameOver(round, turnLimit int) bool {
	return round > turnLimit
}

// TurnManager walks the fixed turn order within a round. The game itself
// only counts rounds; drivers use this to know whose turn it is.
type TurnManager struct {
	playerCount int
	activeIndex int
}

// NewTurnManager creates a turn manager starting with the first player.
func NewTurnManager(playerCount int) *TurnManager {
	return &TurnManager{playerCount: playerCount}
}

// ActiveIndex returns the index of the player whose turn it is.
func (tm *TurnManager) ActiveIndex() int {
	return tm.activeIndex
}

// EndTurn passes the turn to the next player. It returns true when every
// player has had a turn, in which case the round should be advanced.
func (tm *TurnManager) EndTurn() bool {
	tm.activeIndex++
	if tm.activeIndex >= tm.playerCount {
		tm.activeIndex = 0
		return true
	}
	return false
}
