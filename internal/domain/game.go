package domain

// Game is one running game. Its Position is always seen from Player1.
type Game struct {
	Position Position
	Moves    []int
	Status   GameStatus
}

func NewGame() *Game {
	return &Game{
		Position: NewPosition(true),
		Moves:    []int{},
		Status:   InProgress,
	}
}

// CurrentPlayer is the player expected to move next.
func (g *Game) CurrentPlayer() PlayerID {
	return g.Position.ToMove()
}

// MakeMove plays column for the current player and returns the row (0 = bottom)
// the disc landed on.
func (g *Game) MakeMove(column int) (int, error) {
	if g.IsFinished() {
		return -1, ErrGameFinished
	}

	next, err := g.Position.ApplyMove(column)
	if err != nil {
		return -1, err
	}
	row := g.Position.Height(column)

	g.Position = next
	g.Moves = append(g.Moves, column)
	g.Status = next.Status()

	return row, nil
}

func (g *Game) IsFinished() bool {
	return g.Status.IsTerminal()
}

func (g *Game) MoveString() string {
	return FormatMoves(g.Moves)
}

// Board returns a copy of the cells, top row first.
func (g *Game) Board() [][]int {
	return g.Position.Grid().TopDown()
}
