package bot

import (
	"context"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// cancelCheckInterval is how many nodes pass between context checks.
const cancelCheckInterval = 1 << 12

// bitboardSearch is the state of one bitboard search. It is built per call
// and dropped when the call returns.
type bitboardSearch struct {
	ctx   context.Context
	eval  Evaluator
	prune bool
	limit int
	seen  *seenCache
	tt    *transpositionTable
	nodes uint64
	err   error
}

func newBitboardSearch(ctx context.Context, eval Evaluator, prune bool, limit int, cache CacheMode) *bitboardSearch {
	s := &bitboardSearch{ctx: ctx, eval: eval, prune: prune, limit: limit}
	switch cache {
	case CacheDiscard:
		s.seen = newSeenCache()
	case CacheTransposition:
		s.tt = newTranspositionTable()
	}
	return s
}

func (s *bitboardSearch) cacheHits() uint64 {
	switch {
	case s.seen != nil:
		return s.seen.hits
	case s.tt != nil:
		return s.tt.hits
	}
	return 0
}

// run picks the root child with the strictly greatest value; ties keep the
// earlier child in BitboardOrder. With pruning, each child is searched with
// the best score so far as its alpha. pos.Own must be the side to move.
func (s *bitboardSearch) run(pos domain.Position) (int, int) {
	bestMove, bestScore := -1, -Infinity
	for _, col := range BitboardOrder {
		if !pos.CanPlay(col) {
			continue
		}
		if bestMove < 0 {
			bestMove = col
		}

		alpha := -Infinity
		if s.prune {
			alpha = bestScore
		}
		v := s.value(pos.Play(col), 1, alpha, Infinity)
		if s.err != nil {
			return -1, 0
		}
		if v > bestScore {
			bestMove, bestScore = col, v
		}
	}
	return bestMove, bestScore
}

// value returns the minimax value of pos from the maximizing side's view.
// depth counts plies below the root; the search stops past s.limit.
func (s *bitboardSearch) value(pos domain.Position, depth, alpha, beta int) int {
	s.nodes++
	if s.nodes%cancelCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return 0
		}
	}

	if status := pos.Status(); status.IsTerminal() {
		return s.eval.Terminal(pos, status)
	}
	if depth > s.limit {
		return s.eval.Horizon(pos)
	}

	fp := pos.Fingerprint()
	if s.tt != nil {
		if v, ok := s.tt.probe(fp, alpha, beta); ok {
			return v
		}
	}

	alphaOrig, betaOrig := alpha, beta
	maximizing := pos.OwnToMove()
	best := Infinity
	if maximizing {
		best = -Infinity
	}

	for _, col := range BitboardOrder {
		if !pos.CanPlay(col) {
			continue
		}
		child := pos.Play(col)
		if s.seen != nil && s.seen.skip(child.Fingerprint()) {
			continue
		}

		v := s.value(child, depth+1, alpha, beta)
		if s.err != nil {
			return 0
		}
		if s.seen != nil {
			s.seen.record(child.Fingerprint(), alpha)
		}

		if maximizing {
			if v > best {
				best = v
			}
			if s.prune {
				if best >= beta {
					s.store(fp, best, alphaOrig, betaOrig)
					return best
				}
				if best > alpha {
					alpha = best
				}
			}
		} else {
			if v < best {
				best = v
			}
			if s.prune {
				if best <= alpha {
					s.store(fp, best, alphaOrig, betaOrig)
					return best
				}
				if best < beta {
					beta = best
				}
			}
		}
	}

	// No child produced a value: every child was skipped, or in sentinel
	// mode every child sat on the horizon.
	if (maximizing && best == -Infinity) || (!maximizing && best == Infinity) {
		best = s.eval.Horizon(pos)
	}
	s.store(fp, best, alphaOrig, betaOrig)
	return best
}

func (s *bitboardSearch) store(fp domain.Fingerprint, value, alpha, beta int) {
	if s.tt != nil {
		s.tt.store(fp, value, alpha, beta)
	}
}
