package bot

import "github.com/iamasit07/4-in-a-row/engine/internal/domain"

// BitboardOrder is the center-out column order of the bitboard search:
// 3, 2, 4, 1, 5, 0, 6.
var BitboardOrder = centerOut()

// GridOrder is the column order of the grid search. It leans right first,
// unlike BitboardOrder, and the two are kept apart on purpose.
var GridOrder = [domain.Columns]int{3, 4, 2, 5, 1, 6, 0}

func centerOut() [domain.Columns]int {
	var order [domain.Columns]int
	center := domain.Columns / 2
	for i := range order {
		order[i] = center + (1-2*(i%2))*(i+1)/2
	}
	return order
}

// LegalMoves lists the non-full columns of pos in BitboardOrder.
func LegalMoves(pos domain.Position) []int {
	moves := make([]int, 0, domain.Columns)
	for _, col := range BitboardOrder {
		if pos.CanPlay(col) {
			moves = append(moves, col)
		}
	}
	return moves
}

// ValidColumns lists the non-full columns of g in GridOrder.
func ValidColumns(g domain.Grid) []int {
	cols := make([]int, 0, domain.Columns)
	for _, col := range GridOrder {
		if g.IsValidColumn(col) {
			cols = append(cols, col)
		}
	}
	return cols
}
