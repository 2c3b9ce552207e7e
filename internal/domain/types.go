package domain

import "fmt"

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

func (p PlayerID) Opponent() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4

	// each column is Rows playable bits plus one sentinel bit
	columnHeight = Rows + 1
)

// GameStatus is always derived from a board, never stored next to it.
type GameStatus int

const (
	InProgress GameStatus = iota
	FirstPlayerWins
	SecondPlayerWins
	Draw
)

func (s GameStatus) String() string {
	switch s {
	case FirstPlayerWins:
		return "first_player_wins"
	case SecondPlayerWins:
		return "second_player_wins"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

func ParseGameStatus(s string) (GameStatus, error) {
	for _, st := range []GameStatus{InProgress, FirstPlayerWins, SecondPlayerWins, Draw} {
		if st.String() == s {
			return st, nil
		}
	}
	return InProgress, fmt.Errorf("unknown game status %q", s)
}

func (s GameStatus) IsTerminal() bool {
	return s != InProgress
}

// Winner maps a terminal status to the winning player, Empty otherwise.
func (s GameStatus) Winner() PlayerID {
	switch s {
	case FirstPlayerWins:
		return Player1
	case SecondPlayerWins:
		return Player2
	default:
		return Empty
	}
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidColumn Error = "invalid column"
	ErrColumnFull    Error = "column is full"
	ErrGameFinished  Error = "game is already finished"
	ErrInvalidMoves  Error = "invalid move sequence"
	ErrInvalidGrid   Error = "invalid grid"
	ErrGameNotFound  Error = "game not found"
)
