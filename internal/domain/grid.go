package domain

import "fmt"

// Grid is the dense board, row 0 at the bottom. It is a value type, so
// assigning or passing it copies every cell.
type Grid [Rows][Columns]int8

func (g Grid) IsValidColumn(col int) bool {
	return col >= 0 && col < Columns && g[Rows-1][col] == int8(Empty)
}

// NextOpenRow returns the lowest empty row of col, or -1 when the column is full.
func (g Grid) NextOpenRow(col int) int {
	for row := 0; row < Rows; row++ {
		if g[row][col] == int8(Empty) {
			return row
		}
	}
	return -1
}

// Drop returns a copy of the grid with piece placed in col and the row it landed on.
func (g Grid) Drop(col int, piece PlayerID) (Grid, int, error) {
	if col < 0 || col >= Columns {
		return g, -1, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	row := g.NextOpenRow(col)
	if row < 0 {
		return g, -1, fmt.Errorf("%w: %d", ErrColumnFull, col)
	}
	g[row][col] = int8(piece)
	return g, row, nil
}

func (g Grid) IsFull() bool {
	for c := 0; c < Columns; c++ {
		if g[Rows-1][c] == int8(Empty) {
			return false
		}
	}
	return true
}

func (g Grid) Count(piece PlayerID) int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if g[r][c] == int8(piece) {
				n++
			}
		}
	}
	return n
}

// CheckForWin scans every horizontal, vertical and diagonal run of four cells.
func (g Grid) CheckForWin(piece PlayerID) bool {
	p := int8(piece)

	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns-3; c++ {
			if g[r][c] == p && g[r][c+1] == p && g[r][c+2] == p && g[r][c+3] == p {
				return true
			}
		}
	}

	for r := 0; r < Rows-3; r++ {
		for c := 0; c < Columns; c++ {
			if g[r][c] == p && g[r+1][c] == p && g[r+2][c] == p && g[r+3][c] == p {
				return true
			}
		}
	}

	for r := 0; r < Rows-3; r++ {
		for c := 0; c < Columns-3; c++ {
			if g[r][c] == p && g[r+1][c+1] == p && g[r+2][c+2] == p && g[r+3][c+3] == p {
				return true
			}
		}
	}

	for r := 3; r < Rows; r++ {
		for c := 0; c < Columns-3; c++ {
			if g[r][c] == p && g[r-1][c+1] == p && g[r-2][c+2] == p && g[r-3][c+3] == p {
				return true
			}
		}
	}
	return false
}

// Status mirrors Position.Status on the dense encoding, Player1 first.
func (g Grid) Status() GameStatus {
	switch {
	case g.CheckForWin(Player1):
		return FirstPlayerWins
	case g.CheckForWin(Player2):
		return SecondPlayerWins
	case g.IsFull():
		return Draw
	default:
		return InProgress
	}
}

// TopDown returns the rows top first, the orientation used in API payloads.
func (g Grid) TopDown() [][]int {
	out := make([][]int, Rows)
	for r := 0; r < Rows; r++ {
		row := make([]int, Columns)
		for c := 0; c < Columns; c++ {
			row[c] = int(g[Rows-1-r][c])
		}
		out[r] = row
	}
	return out
}

// Grid expands the bitmask position into the dense encoding.
func (p Position) Grid() Grid {
	var g Grid
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			g[r][c] = int8(p.Cell(r, c))
		}
	}
	return g
}

// ToPosition packs the grid into a Position seen from Player1. It rejects
// floating discs, unknown cell values and impossible piece counts.
func (g Grid) ToPosition() (Position, error) {
	pos := NewPosition(true)
	for c := 0; c < Columns; c++ {
		seenEmpty := false
		for r := 0; r < Rows; r++ {
			switch PlayerID(g[r][c]) {
			case Empty:
				seenEmpty = true
				continue
			case Player1:
				pos.Own |= cellMask(r, c)
			case Player2:
			default:
				return Position{}, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidGrid, r, c, g[r][c])
			}
			if seenEmpty {
				return Position{}, fmt.Errorf("%w: floating disc at (%d,%d)", ErrInvalidGrid, r, c)
			}
			pos.Occupied |= cellMask(r, c)
			pos.Ply++
		}
	}

	ones, twos := g.Count(Player1), g.Count(Player2)
	if ones != twos && ones != twos+1 {
		return Position{}, fmt.Errorf("%w: %d discs for player 1, %d for player 2", ErrInvalidGrid, ones, twos)
	}
	return pos, nil
}
