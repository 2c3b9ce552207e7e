package domain

import (
	"fmt"
	"math/bits"
)

// Position is the packed board. Column c owns bits 7c..7c+6: bit 7c is the
// bottom row, bit 7c+5 the top playable row and bit 7c+6 a sentinel that
// keeps the column-fill addition from carrying into the next column.
//
// Own holds the pieces of the side the search maximizes for. OwnFirst records
// whether that side made the first move, which fixes whose turn it is at any ply.
// Own must be a subset of Occupied; violating that is a programming error.
type Position struct {
	Own      uint64
	Occupied uint64
	Ply      int
	OwnFirst bool
}

// Fingerprint identifies a position for de-duplication. Two positions reached
// through different move orders compare equal.
type Fingerprint struct {
	Own      uint64
	Occupied uint64
	Parity   uint8
}

var (
	bottomRow = rowMask(0)
	topRow    = rowMask(Rows - 1)
	boardMask = bottomRow * ((1 << Rows) - 1)
)

func rowMask(row int) uint64 {
	var m uint64
	for c := 0; c < Columns; c++ {
		m |= cellMask(row, c)
	}
	return m
}

func cellMask(row, col int) uint64 {
	return uint64(1) << uint(columnHeight*col+row)
}

func bottomMask(col int) uint64 {
	return uint64(1) << uint(columnHeight*col)
}

func topMask(col int) uint64 {
	return uint64(1) << uint(columnHeight*col+Rows-1)
}

// NewPosition returns the empty board seen from the side that moves first
// (ownFirst) or second.
func NewPosition(ownFirst bool) Position {
	return Position{OwnFirst: ownFirst}
}

func (p Position) Opponent() uint64 {
	return p.Own ^ p.Occupied
}

// OwnToMove reports whether the maximizing side is the one to play next.
func (p Position) OwnToMove() bool {
	return (p.Ply%2 == 0) == p.OwnFirst
}

// ToMove returns the player whose turn it is; Player1 always moves on even plies.
func (p Position) ToMove() PlayerID {
	if p.Ply%2 == 0 {
		return Player1
	}
	return Player2
}

// Pieces returns the mask of one player's discs.
func (p Position) Pieces(player PlayerID) uint64 {
	if (player == Player1) == p.OwnFirst {
		return p.Own
	}
	return p.Opponent()
}

func (p Position) CanPlay(col int) bool {
	return col >= 0 && col < Columns && p.Occupied&topMask(col) == 0
}

// ApplyMove drops a disc for the side to move into col and returns the new
// position. The receiver is never modified.
func (p Position) ApplyMove(col int) (Position, error) {
	if col < 0 || col >= Columns {
		return p, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	if p.Occupied&topMask(col) != 0 {
		return p, fmt.Errorf("%w: %d", ErrColumnFull, col)
	}
	return p.Play(col), nil
}

// Play is ApplyMove without the legality checks. col must satisfy CanPlay.
func (p Position) Play(col int) Position {
	occupied := p.Occupied | (p.Occupied + bottomMask(col))
	own := p.Own
	if p.OwnToMove() {
		own |= occupied ^ p.Occupied
	}
	return Position{Own: own, Occupied: occupied, Ply: p.Ply + 1, OwnFirst: p.OwnFirst}
}

// Flip returns the same position seen from the other side.
func (p Position) Flip() Position {
	return Position{Own: p.Opponent(), Occupied: p.Occupied, Ply: p.Ply, OwnFirst: !p.OwnFirst}
}

// Height is the number of discs already in col.
func (p Position) Height(col int) int {
	return bits.OnesCount64(p.Occupied & (((1 << Rows) - 1) << uint(columnHeight*col)))
}

// Cell returns the occupant of (row, col), row 0 being the bottom.
func (p Position) Cell(row, col int) PlayerID {
	m := cellMask(row, col)
	if p.Occupied&m == 0 {
		return Empty
	}
	if p.Pieces(Player1)&m != 0 {
		return Player1
	}
	return Player2
}

func (p Position) Fingerprint() Fingerprint {
	return Fingerprint{Own: p.Own, Occupied: p.Occupied, Parity: uint8(p.Ply % 2)}
}

// Key is a stable text form of the position independent of perspective.
func (p Position) Key() string {
	return fmt.Sprintf("%013x-%013x", p.Pieces(Player1), p.Occupied)
}

// OwnWins and OpponentWins are the status values of a four-in-a-row for each side.
func (p Position) OwnWins() GameStatus {
	if p.OwnFirst {
		return FirstPlayerWins
	}
	return SecondPlayerWins
}

func (p Position) OpponentWins() GameStatus {
	if p.OwnFirst {
		return SecondPlayerWins
	}
	return FirstPlayerWins
}

// Status checks the own side, then the opponent, then a full board.
func (p Position) Status() GameStatus {
	if FourInARow(p.Own) {
		return p.OwnWins()
	}
	if FourInARow(p.Opponent()) {
		return p.OpponentWins()
	}
	if IsFull(p.Occupied) {
		return Draw
	}
	return InProgress
}

// FourInARow detects four consecutive set bits along any axis of a mask.
func FourInARow(mask uint64) bool {
	// horizontal
	m := mask & (mask >> columnHeight)
	if m&(m>>(2*columnHeight)) != 0 {
		return true
	}
	// diagonal \
	m = mask & (mask >> (columnHeight - 1))
	if m&(m>>(2*(columnHeight-1))) != 0 {
		return true
	}
	// diagonal /
	m = mask & (mask >> (columnHeight + 1))
	if m&(m>>(2*(columnHeight+1))) != 0 {
		return true
	}
	// vertical
	m = mask & (mask >> 1)
	return m&(m>>2) != 0
}

// IsFull is true when every column has its top playable row occupied.
func IsFull(occupied uint64) bool {
	return occupied&topRow == topRow
}

// Valid reports whether the masks respect the layout invariants: Own inside
// Occupied, no sentinel bits, and every column filled from the bottom without gaps.
func (p Position) Valid() bool {
	if p.Own&^p.Occupied != 0 || p.Occupied&^boardMask != 0 {
		return false
	}
	for c := 0; c < Columns; c++ {
		col := (p.Occupied >> uint(columnHeight*c)) & ((1 << columnHeight) - 1)
		if col&(col+1) != 0 {
			return false
		}
	}
	return bits.OnesCount64(p.Occupied) == p.Ply
}
