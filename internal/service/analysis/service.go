package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
)

const (
	ErrDepthLimit     domain.Error = "search depth above the configured limit"
	ErrInvalidOptions domain.Error = "invalid search options"
)

// ResultCache stores finished searches by key. A miss is (zero, false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) (bot.SearchResult, bool, error)
	Set(ctx context.Context, key string, result bot.SearchResult) error
}

// Request asks for the best move after Moves. Empty option fields keep the
// service defaults; a nil Depth uses the default depth.
type Request struct {
	Moves    string `json:"moves"`
	Depth    *int   `json:"depth,omitempty"`
	Model    string `json:"model,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Cache    string `json:"cache,omitempty"`
	Leaf     string `json:"leaf,omitempty"`
	Preset   string `json:"preset,omitempty"`
}

type Result struct {
	bot.SearchResult
	Cached bool `json:"cached"`
}

type Status struct {
	Status string  `json:"status"`
	Ply    int     `json:"ply"`
	ToMove int     `json:"toMove"`
	Board  [][]int `json:"board"`
}

type Service struct {
	engine       *bot.Engine
	cache        ResultCache
	defaultDepth int
	maxDepth     int
	timeout      time.Duration
	logger       zerolog.Logger
}

// NewService wraps engine. cache may be nil; a zero timeout never expires.
func NewService(engine *bot.Engine, cache ResultCache, defaultDepth, maxDepth int, timeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		engine:       engine,
		cache:        cache,
		defaultDepth: defaultDepth,
		maxDepth:     maxDepth,
		timeout:      timeout,
		logger:       logger.With().Str("component", "analysis").Logger(),
	}
}

func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	pos, err := domain.ParseMoves(req.Moves)
	if err != nil {
		return Result{}, err
	}

	depth := s.defaultDepth
	if req.Depth != nil {
		depth = *req.Depth
	}
	if depth < 0 {
		return Result{}, bot.ErrInvalidDepth
	}
	if s.maxDepth > 0 && depth > s.maxDepth {
		return Result{}, fmt.Errorf("%w: %d > %d", ErrDepthLimit, depth, s.maxDepth)
	}

	opts, err := s.resolve(req)
	if err != nil {
		return Result{}, err
	}

	key := cacheKey(pos, depth, opts)
	// immediate answers are random, so they are never cached
	cacheable := s.cache != nil && opts.Strategy != bot.StrategyImmediate
	if cacheable {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("result cache read failed")
		} else if ok {
			return Result{SearchResult: cached, Cached: true}, nil
		}
	}

	engine := s.engine
	if opts != s.engine.Options() {
		if engine, err = s.engine.WithOptions(opts); err != nil {
			return Result{}, err
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := engine.Search(ctx, pos, depth)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn().Str("moves", req.Moves).Int("depth", depth).Dur("timeout", s.timeout).Msg("analysis timed out")
		}
		return Result{}, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("result cache write failed")
		}
	}

	s.logger.Info().
		Str("moves", req.Moves).
		Int("depth", depth).
		Int("move", res.Move).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Msg("position analysed")

	return Result{SearchResult: res}, nil
}

// Status reports the state of the game after moves without searching.
func (s *Service) Status(moves string) (Status, error) {
	pos, err := domain.ParseMoves(moves)
	if err != nil {
		return Status{}, err
	}
	status := pos.Status()
	toMove := int(pos.ToMove())
	if status.IsTerminal() {
		toMove = int(domain.Empty)
	}
	return Status{
		Status: status.String(),
		Ply:    pos.Ply,
		ToMove: toMove,
		Board:  pos.Grid().TopDown(),
	}, nil
}

func (s *Service) resolve(req Request) (bot.Options, error) {
	opts := s.engine.Options()
	if req.Model != "" {
		opts.Model = bot.Model(req.Model)
	}
	if req.Strategy != "" {
		opts.Strategy = bot.Strategy(req.Strategy)
	}
	if req.Cache != "" {
		opts.Cache = bot.CacheMode(req.Cache)
	}
	if req.Leaf != "" {
		opts.Leaf = bot.LeafMode(req.Leaf)
	}
	if req.Preset != "" {
		preset, err := bot.PresetByName(req.Preset)
		if err != nil {
			return bot.Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		opts.Preset = preset
	}
	if err := opts.Validate(); err != nil {
		return bot.Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return opts, nil
}

func cacheKey(pos domain.Position, depth int, opts bot.Options) string {
	return fmt.Sprintf("%s:%d:%s:%s:%s:%s:%s", pos.Key(), depth, opts.Model, opts.Strategy, opts.Cache, opts.Leaf, opts.Preset.Name)
}
