package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/game"
)

type LiveGames interface {
	Live() []game.Snapshot
}

type GamesHandler struct {
	Sessions LiveGames
}

func NewGamesHandler(sessions LiveGames) *GamesHandler {
	return &GamesHandler{Sessions: sessions}
}

type liveGameResponse struct {
	GameID      string    `json:"gameId"`
	Difficulty  string    `json:"difficulty"`
	HumanPlayer int       `json:"humanPlayer"`
	MoveCount   int       `json:"moveCount"`
	Depth       int       `json:"depth"`
	StartedAt   time.Time `json:"startedAt"`
	LastActive  time.Time `json:"lastActive"`
}

// GetLiveGames answers GET /api/games with every unfinished session.
func (h *GamesHandler) GetLiveGames(c *gin.Context) {
	live := h.Sessions.Live()

	response := make([]liveGameResponse, 0, len(live))
	for _, g := range live {
		response = append(response, liveGameResponse{
			GameID:      g.GameID,
			Difficulty:  string(g.Difficulty),
			HumanPlayer: int(g.Human),
			MoveCount:   len(g.Moves),
			Depth:       g.Depth,
			StartedAt:   g.CreatedAt,
			LastActive:  g.LastActive,
		})
	}

	c.JSON(http.StatusOK, response)
}
