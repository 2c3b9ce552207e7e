package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/pkg/uid"
)

const (
	ErrSessionNotFound domain.Error = "game session not found"
	ErrNotYourTurn     domain.Error = "not your turn"
)

const saveTimeout = 10 * time.Second

type GameRepository interface {
	SaveGame(ctx context.Context, record domain.GameRecord) error
}

// level is the engine and fixed depth behind one difficulty. A zero depth
// follows the session's schedule.
type level struct {
	engine *bot.Engine
	depth  int
}

// SessionManager owns every running game against the engine.
type SessionManager struct {
	sessions map[string]*GameSession
	mu       sync.RWMutex

	levels   map[bot.Difficulty]level
	schedule DepthSchedule
	timeout  time.Duration
	repo     GameRepository
	logger   zerolog.Logger

	now   func() time.Time
	saves sync.WaitGroup
}

// NewSessionManager derives one engine per difficulty from engine. repo may
// be nil, in which case finished games are not archived. A zero timeout lets
// machine turns search to completion.
func NewSessionManager(engine *bot.Engine, schedule DepthSchedule, timeout time.Duration, repo GameRepository, logger zerolog.Logger) (*SessionManager, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	levels := make(map[bot.Difficulty]level)
	for _, d := range []bot.Difficulty{bot.Easy, bot.Medium, bot.Hard} {
		opts, depth := d.Tune(engine.Options())
		e, err := engine.WithOptions(opts)
		if err != nil {
			return nil, err
		}
		levels[d] = level{engine: e, depth: depth}
	}

	return &SessionManager{
		sessions: make(map[string]*GameSession),
		levels:   levels,
		schedule: schedule,
		timeout:  timeout,
		repo:     repo,
		logger:   logger.With().Str("component", "session").Logger(),
		now:      time.Now,
	}, nil
}

// Start opens a game. When engineFirst is set the engine plays move one
// before Start returns.
func (sm *SessionManager) Start(ctx context.Context, engineFirst bool, difficulty bot.Difficulty) (Snapshot, Update, error) {
	if _, ok := sm.levels[difficulty]; !ok {
		return Snapshot{}, Update{}, fmt.Errorf("unknown difficulty %q", difficulty)
	}

	human := domain.Player1
	if engineFirst {
		human = domain.Player2
	}
	now := sm.now()
	gs := &GameSession{
		GameID:     uid.GenerateGameID(),
		Human:      human,
		Difficulty: difficulty,
		Game:       domain.NewGame(),
		CreatedAt:  now,
		LastActive: now,
		depth:      sm.schedule.Initial,
	}

	sm.mu.Lock()
	sm.sessions[gs.GameID] = gs
	sm.mu.Unlock()

	sm.logger.Info().
		Str("game_id", gs.GameID).
		Str("difficulty", string(difficulty)).
		Bool("engine_first", engineFirst).
		Msg("game started")

	gs.mu.Lock()
	defer gs.mu.Unlock()

	upd := gs.update()
	if gs.engineToMove() {
		var err error
		if upd, err = sm.machineTurn(ctx, gs); err != nil {
			return gs.snapshot(), Update{}, err
		}
	}
	return gs.snapshot(), upd, nil
}

// Play makes the human move in column and, unless that ended the game,
// answers with the engine's move.
func (sm *SessionManager) Play(ctx context.Context, gameID string, column int) (Update, error) {
	gs, ok := sm.get(gameID)
	if !ok {
		return Update{}, ErrSessionNotFound
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		return Update{}, domain.ErrGameFinished
	}
	if gs.Game.CurrentPlayer() != gs.Human {
		return Update{}, ErrNotYourTurn
	}

	row, err := gs.Game.MakeMove(column)
	if err != nil {
		return Update{}, err
	}
	gs.LastActive = sm.now()
	human := &Move{Column: column, Row: row, Player: gs.Human}

	if gs.Game.IsFinished() {
		sm.finish(gs, finishReason(gs.Game.Status))
		upd := gs.update()
		upd.Human = human
		return upd, nil
	}

	upd, err := sm.machineTurn(ctx, gs)
	upd.Human = human
	return upd, err
}

// Continue plays the engine's move if it is the engine's turn, which is only
// the case after an earlier machine turn was interrupted.
func (sm *SessionManager) Continue(ctx context.Context, gameID string) (Update, error) {
	gs, ok := sm.get(gameID)
	if !ok {
		return Update{}, ErrSessionNotFound
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if !gs.engineToMove() {
		return gs.update(), nil
	}
	return sm.machineTurn(ctx, gs)
}

// Abandon ends a running game in the engine's favour and drops the session.
func (sm *SessionManager) Abandon(gameID string) error {
	gs, ok := sm.get(gameID)
	if !ok {
		return ErrSessionNotFound
	}

	gs.mu.Lock()
	if gs.Game.IsFinished() {
		gs.mu.Unlock()
		return domain.ErrGameFinished
	}
	sm.finish(gs, domain.ReasonAbandoned)
	gs.mu.Unlock()

	sm.Remove(gameID)
	return nil
}

func (sm *SessionManager) Snapshot(gameID string) (Snapshot, error) {
	gs, ok := sm.get(gameID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.snapshot(), nil
}

// Live lists unfinished games, oldest first.
func (sm *SessionManager) Live() []Snapshot {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.sessions))
	for _, gs := range sm.sessions {
		sessions = append(sessions, gs)
	}
	sm.mu.RUnlock()

	live := make([]Snapshot, 0, len(sessions))
	for _, gs := range sessions {
		gs.mu.Lock()
		if !gs.Game.IsFinished() {
			live = append(live, gs.snapshot())
		}
		gs.mu.Unlock()
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})
	return live
}

func (sm *SessionManager) Remove(gameID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[gameID]; ok {
		delete(sm.sessions, gameID)
		sm.logger.Debug().Str("game_id", gameID).Msg("session removed")
	}
}

// EvictIdle drops sessions untouched for longer than idle. Unfinished ones
// are archived as lost by the human first. It returns how many were dropped.
func (sm *SessionManager) EvictIdle(idle time.Duration) int {
	cutoff := sm.now().Add(-idle)

	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.sessions))
	for _, gs := range sm.sessions {
		sessions = append(sessions, gs)
	}
	sm.mu.RUnlock()

	var stale []string
	for _, gs := range sessions {
		gs.mu.Lock()
		if gs.LastActive.Before(cutoff) {
			if !gs.Game.IsFinished() {
				sm.finish(gs, domain.ReasonIdle)
			}
			stale = append(stale, gs.GameID)
		}
		gs.mu.Unlock()
	}

	sm.mu.Lock()
	for _, id := range stale {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	if len(stale) > 0 {
		sm.logger.Info().Int("count", len(stale)).Msg("evicted idle sessions")
	}
	return len(stale)
}

// Wait blocks until every pending archive write has finished.
func (sm *SessionManager) Wait() {
	sm.saves.Wait()
}

func (sm *SessionManager) get(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	gs, ok := sm.sessions[gameID]
	return gs, ok
}

// machineTurn plays the engine's move. gs.mu must be held.
func (sm *SessionManager) machineTurn(ctx context.Context, gs *GameSession) (Update, error) {
	prevDepth := gs.depth
	gs.turns++
	gs.depth = sm.schedule.Step(gs.turns, gs.depth)

	lvl := sm.levels[gs.Difficulty]
	depth := lvl.depth
	if depth == 0 {
		depth = gs.depth
	}

	res, err := sm.search(ctx, lvl.engine, gs.Game.Position, depth)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		sm.logger.Warn().
			Str("game_id", gs.GameID).
			Int("depth", depth).
			Dur("timeout", sm.timeout).
			Msg("engine search timed out, playing immediate move")
		res, err = sm.levels[bot.Easy].engine.Search(ctx, gs.Game.Position, 0)
	}
	if err != nil {
		gs.turns, gs.depth = gs.turns-1, prevDepth
		return gs.update(), err
	}

	player := gs.Game.CurrentPlayer()
	row, err := gs.Game.MakeMove(res.Move)
	if err != nil {
		return gs.update(), err
	}
	gs.LastActive = sm.now()

	if gs.Game.IsFinished() {
		sm.finish(gs, finishReason(gs.Game.Status))
	}

	upd := gs.update()
	upd.Engine = &EngineMove{
		Move:    Move{Column: res.Move, Row: row, Player: player},
		Score:   res.Score,
		Nodes:   res.Nodes,
		Depth:   depth,
		Elapsed: res.Elapsed,
	}
	return upd, nil
}

func (sm *SessionManager) search(ctx context.Context, engine *bot.Engine, pos domain.Position, depth int) (bot.SearchResult, error) {
	if sm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sm.timeout)
		defer cancel()
	}
	return engine.Search(ctx, pos, depth)
}

// finish marks gs over and archives it once. gs.mu must be held.
func (sm *SessionManager) finish(gs *GameSession, reason string) {
	if gs.archived {
		return
	}
	gs.archived = true
	gs.Reason = reason
	gs.FinishedAt = sm.now()

	record := gs.record()
	sm.logger.Info().
		Str("game_id", gs.GameID).
		Str("reason", reason).
		Int("winner", int(record.Winner)).
		Int("moves", len(record.Moves)).
		Msg("game finished")

	if sm.repo == nil {
		return
	}

	// saved in the background so the final move reaches the player first
	sm.saves.Add(1)
	go func() {
		defer sm.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := sm.repo.SaveGame(ctx, record); err != nil {
			sm.logger.Error().Err(err).Str("game_id", record.GameID).Msg("saving game failed")
			return
		}
		sm.logger.Debug().Str("game_id", record.GameID).Msg("game saved")
	}()
}

func finishReason(status domain.GameStatus) string {
	if status == domain.Draw {
		return domain.ReasonDraw
	}
	return domain.ReasonConnectFour
}
