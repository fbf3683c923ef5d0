package entity

import "fmt"

// PlayerCount is the fixed number of seats at the table.
const PlayerCount = 4

// Round is one entry of the round history. Scores are the stored outcome
// and are never recomputed from Points.
type Round struct {
	Points int              `json:"points"`
	Scores [PlayerCount]int `json:"scores"`
	Solo   bool             `json:"solo"`
}

// Game is the persisted snapshot: four player names and the rounds in play order.
type Game struct {
	Players [PlayerCount]string `json:"players"`
	Rounds  []Round             `json:"rounds"`
}

func NewGame() *Game {
	return &Game{
		Players: DefaultPlayers(),
		Rounds:  []Round{},
	}
}

func DefaultPlayerName(index int) string {
	return fmt.Sprintf("Player %d", index+1)
}

func DefaultPlayers() [PlayerCount]string {
	var players [PlayerCount]string
	for i := range players {
		players[i] = DefaultPlayerName(i)
	}

	return players
}

// IsValidPlayerIndex reports whether index addresses one of the four seats.
func IsValidPlayerIndex(index int) bool {
	return index >= 0 && index < PlayerCount
}

// Clone returns a deep copy, so the round slice can be handed out safely.
func (that *Game) Clone() *Game {
	rounds := make([]Round, len(that.Rounds))
	copy(rounds, that.Rounds)

	return &Game{
		Players: that.Players,
		Rounds:  rounds,
	}
}

// Normalize replaces a nil round list with an empty one, so a snapshot
// always serializes "rounds" as an array.
func (that *Game) Normalize() {
	if that.Rounds == nil {
		that.Rounds = []Round{}
	}
}

func (that *Game) HasRound(index int) bool {
	return index >= 0 && index < len(that.Rounds)
}
