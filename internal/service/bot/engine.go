package bot

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

const (
	ErrNoLegalMoves domain.Error = "position has no legal moves"
	ErrInvalidDepth domain.Error = "search depth must not be negative"
)

// Model selects the board encoding the search runs on.
type Model string

const (
	ModelBitboard Model = "bitboard"
	ModelGrid     Model = "grid"
)

type Strategy string

const (
	StrategyMinimax   Strategy = "minimax"
	StrategyAlphaBeta Strategy = "alphabeta"
	// StrategyImmediate wins now, blocks now, or plays a random legal column.
	StrategyImmediate Strategy = "immediate"
)

type Options struct {
	Model    Model        `json:"model"`
	Strategy Strategy     `json:"strategy"`
	Cache    CacheMode    `json:"cache"`
	Leaf     LeafMode     `json:"leaf"`
	Preset   WindowPreset `json:"preset"`
}

func DefaultOptions() Options {
	return Options{
		Model:    ModelBitboard,
		Strategy: StrategyAlphaBeta,
		Cache:    CacheTransposition,
		Leaf:     LeafPositional,
		Preset:   PresetOffline,
	}
}

func (o Options) Validate() error {
	switch o.Model {
	case ModelBitboard, ModelGrid:
	default:
		return fmt.Errorf("unknown model %q", o.Model)
	}
	switch o.Strategy {
	case StrategyMinimax, StrategyAlphaBeta, StrategyImmediate:
	default:
		return fmt.Errorf("unknown strategy %q", o.Strategy)
	}
	if _, err := ParseCacheMode(string(o.Cache)); err != nil {
		return err
	}
	if _, err := NewEvaluator(o.Leaf, o.Preset); err != nil {
		return err
	}
	return nil
}

// SearchResult is what one call to Search produced. Score is from the view
// of the side that was to move.
type SearchResult struct {
	Move      int           `json:"move"`
	Score     int           `json:"score"`
	Nodes     uint64        `json:"nodes"`
	CacheHits uint64        `json:"cacheHits"`
	Depth     int           `json:"depth"`
	Elapsed   time.Duration `json:"-"`
}

// Engine picks moves. It holds no state between searches apart from the
// random source used by StrategyImmediate, so one Engine may serve many games.
type Engine struct {
	opts   Options
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewEngine(opts Options, logger zerolog.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:   opts,
		logger: logger.With().Str("component", "engine").Logger(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (e *Engine) Options() Options {
	return e.opts
}

// WithOptions returns an engine sharing this one's logger with other options.
func (e *Engine) WithOptions(opts Options) (*Engine, error) {
	return NewEngine(opts, e.logger)
}

// Search chooses a move for the side to move in pos. It runs to completion
// unless ctx is cancelled, in which case ctx.Err() is returned.
func (e *Engine) Search(ctx context.Context, pos domain.Position, depth int) (SearchResult, error) {
	if depth < 0 {
		return SearchResult{}, ErrInvalidDepth
	}
	if pos.Status().IsTerminal() {
		return SearchResult{}, ErrNoLegalMoves
	}
	if !pos.OwnToMove() {
		pos = pos.Flip()
	}

	start := time.Now()
	result := SearchResult{Depth: depth}

	switch {
	case e.opts.Strategy == StrategyImmediate:
		e.rngMu.Lock()
		result.Move = immediateMove(pos, e.rng)
		e.rngMu.Unlock()

	case e.opts.Model == ModelGrid:
		s := newGridSearch(ctx, e.opts.Strategy == StrategyAlphaBeta, e.opts.Preset, pos.ToMove())
		result.Move, result.Score = s.run(pos.Grid(), depth)
		if s.err != nil {
			return SearchResult{}, s.err
		}
		result.Nodes = s.nodes

	default:
		eval, err := NewEvaluator(e.opts.Leaf, e.opts.Preset)
		if err != nil {
			return SearchResult{}, err
		}
		s := newBitboardSearch(ctx, eval, e.opts.Strategy == StrategyAlphaBeta, depth, e.opts.Cache)
		result.Move, result.Score = s.run(pos)
		if s.err != nil {
			return SearchResult{}, s.err
		}
		result.Nodes = s.nodes
		result.CacheHits = s.cacheHits()
	}

	result.Elapsed = time.Since(start)
	e.logger.Debug().
		Str("model", string(e.opts.Model)).
		Str("strategy", string(e.opts.Strategy)).
		Int("depth", depth).
		Int("ply", pos.Ply).
		Int("move", result.Move).
		Int("score", result.Score).
		Uint64("nodes", result.Nodes).
		Uint64("cache_hits", result.CacheHits).
		Dur("elapsed", result.Elapsed).
		Msg("search complete")

	return result, nil
}
