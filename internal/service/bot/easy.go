package bot

import (
	"math/rand"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// immediateMove looks one ply ahead only. pos.Own must be the side to move.
func immediateMove(pos domain.Position, rng *rand.Rand) int {
	validColumns := LegalMoves(pos)
	if len(validColumns) == 0 {
		return -1
	}

	for _, col := range validColumns {
		if domain.FourInARow(pos.Play(col).Own) {
			return col
		}
	}

	// the cell the disc would land on, taken by the opponent instead
	for _, col := range validColumns {
		cell := pos.Play(col).Occupied ^ pos.Occupied
		if domain.FourInARow(pos.Opponent() | cell) {
			return col
		}
	}

	return validColumns[rng.Intn(len(validColumns))]
}
