package bot

import (
	"context"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// gridSearch runs minimax over the dense grid. depth counts the plies still
// allowed; wins are aged by it so that faster wins and slower losses score higher.
type gridSearch struct {
	ctx      context.Context
	prune    bool
	preset   WindowPreset
	maxPiece domain.PlayerID
	minPiece domain.PlayerID
	nodes    uint64
	err      error
}

func newGridSearch(ctx context.Context, prune bool, preset WindowPreset, maxPiece domain.PlayerID) *gridSearch {
	return &gridSearch{
		ctx:      ctx,
		prune:    prune,
		preset:   preset,
		maxPiece: maxPiece,
		minPiece: maxPiece.Opponent(),
	}
}

func (s *gridSearch) run(g domain.Grid, depth int) (int, int) {
	return s.minimax(g, depth, -Infinity, Infinity, true)
}

// minimax returns the best column and its score. Only expanded nodes are
// counted; leaves are not.
func (s *gridSearch) minimax(g domain.Grid, depth, alpha, beta int, maximizing bool) (int, int) {
	if g.CheckForWin(s.maxPiece) {
		return 0, GridWinScore + depth*AgingPenalty
	}
	if g.CheckForWin(s.minPiece) {
		return 0, -GridWinScore - depth*AgingPenalty
	}

	cols := ValidColumns(g)
	if len(cols) == 0 {
		return 0, GridTie
	}
	if depth == 0 {
		return cols[0], EvaluateGrid(g, s.maxPiece, s.preset)
	}

	s.nodes++
	if s.nodes%cancelCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return cols[0], 0
		}
	}

	piece, value := s.minPiece, Infinity
	if maximizing {
		piece, value = s.maxPiece, -Infinity
	}
	bestCol := cols[0]

	for _, col := range cols {
		child := g
		child[child.NextOpenRow(col)][col] = int8(piece)

		_, score := s.minimax(child, depth-1, alpha, beta, !maximizing)
		if s.err != nil {
			return bestCol, 0
		}

		if maximizing {
			if score > value {
				value, bestCol = score, col
			}
			if s.prune {
				alpha = max(alpha, value)
			}
		} else {
			if score < value {
				value, bestCol = score, col
			}
			if s.prune {
				beta = min(beta, value)
			}
		}
		if s.prune && alpha >= beta {
			break
		}
	}
	return bestCol, value
}
