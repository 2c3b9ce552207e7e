package domain

import (
	"fmt"
	"strings"
)

// ParseMoves replays a sequence of 0-based column digits ("3342") from the
// empty board. The result is seen from Player1. Play after a finished game
// is rejected.
func ParseMoves(sequence string) (Position, error) {
	pos := NewPosition(true)
	for i, ch := range sequence {
		if ch < '0' || ch > '9' {
			return Position{}, fmt.Errorf("%w: character %q at index %d", ErrInvalidMoves, ch, i)
		}
		if pos.Status().IsTerminal() {
			return Position{}, fmt.Errorf("%w: move at index %d after the game ended", ErrInvalidMoves, i)
		}
		next, err := pos.ApplyMove(int(ch - '0'))
		if err != nil {
			return Position{}, fmt.Errorf("%w: index %d: %w", ErrInvalidMoves, i, err)
		}
		pos = next
	}
	return pos, nil
}

// FormatMoves is the inverse of ParseMoves.
func FormatMoves(moves []int) string {
	var b strings.Builder
	b.Grow(len(moves))
	for _, m := range moves {
		b.WriteByte(byte('0' + m))
	}
	return b.String()
}
