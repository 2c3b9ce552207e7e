package game

import (
	"sync"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
)

type Move struct {
	Column int             `json:"column"`
	Row    int             `json:"row"`
	Player domain.PlayerID `json:"player"`
}

// EngineMove is a machine move with the search figures behind it.
type EngineMove struct {
	Move
	Score   int           `json:"score"`
	Nodes   uint64        `json:"nodes"`
	Depth   int           `json:"depth"`
	Elapsed time.Duration `json:"-"`
}

// Update is what one call changed on the board.
type Update struct {
	Human  *Move
	Engine *EngineMove
	Status domain.GameStatus
	Board  [][]int
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	GameID     string            `json:"gameId"`
	Human      domain.PlayerID   `json:"humanPlayer"`
	Difficulty bot.Difficulty    `json:"difficulty"`
	Moves      string            `json:"moves"`
	Status     domain.GameStatus `json:"-"`
	Board      [][]int           `json:"board"`
	Depth      int               `json:"depth"`
	CreatedAt  time.Time         `json:"createdAt"`
	LastActive time.Time         `json:"lastActive"`
}

// GameSession is one game between a human and the engine.
type GameSession struct {
	GameID     string
	Human      domain.PlayerID
	Difficulty bot.Difficulty
	Game       *domain.Game
	Reason     string
	CreatedAt  time.Time
	LastActive time.Time
	FinishedAt time.Time

	// turns counts machine turns; depth is the schedule depth reached so far.
	turns    int
	depth    int
	archived bool
	mu       sync.Mutex
}

func (gs *GameSession) engineToMove() bool {
	return !gs.Game.IsFinished() && gs.Game.CurrentPlayer() != gs.Human
}

func (gs *GameSession) update() Update {
	return Update{Status: gs.Game.Status, Board: gs.Game.Board()}
}

func (gs *GameSession) snapshot() Snapshot {
	return Snapshot{
		GameID:     gs.GameID,
		Human:      gs.Human,
		Difficulty: gs.Difficulty,
		Moves:      gs.Game.MoveString(),
		Status:     gs.Game.Status,
		Board:      gs.Game.Board(),
		Depth:      gs.depth,
		CreatedAt:  gs.CreatedAt,
		LastActive: gs.LastActive,
	}
}

func (gs *GameSession) record() domain.GameRecord {
	winner := gs.Game.Status.Winner()
	if !gs.Game.IsFinished() {
		// left unfinished: the engine takes the game
		winner = gs.Human.Opponent()
	}
	return domain.GameRecord{
		GameID:          gs.GameID,
		HumanPlayer:     gs.Human,
		Difficulty:      string(gs.Difficulty),
		Moves:           append([]int(nil), gs.Game.Moves...),
		Status:          gs.Game.Status,
		Winner:          winner,
		Reason:          gs.Reason,
		DurationSeconds: int(gs.FinishedAt.Sub(gs.CreatedAt).Seconds()),
		CreatedAt:       gs.CreatedAt,
		FinishedAt:      gs.FinishedAt,
	}
}
