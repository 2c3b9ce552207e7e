package domain

import "time"

// Finish reasons stored with an archived game.
const (
	ReasonConnectFour = "connect_four"
	ReasonDraw        = "draw"
	ReasonAbandoned   = "abandoned"
	ReasonIdle        = "idle"
)

// GameRecord is a finished game as it is archived.
type GameRecord struct {
	GameID          string     `json:"gameId"`
	HumanPlayer     PlayerID   `json:"humanPlayer"`
	Difficulty      string     `json:"difficulty"`
	Moves           []int      `json:"moves"`
	Status          GameStatus `json:"-"`
	Winner          PlayerID   `json:"winner"`
	Reason          string     `json:"reason"`
	DurationSeconds int        `json:"durationSeconds"`
	CreatedAt       time.Time  `json:"createdAt"`
	FinishedAt      time.Time  `json:"finishedAt"`
}

// HumanWon reports whether the human side won the game.
func (r GameRecord) HumanWon() bool {
	return r.Winner != Empty && r.Winner == r.HumanPlayer
}
