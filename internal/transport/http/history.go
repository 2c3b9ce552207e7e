package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type GameArchive interface {
	GetGame(ctx context.Context, gameID string) (domain.GameRecord, error)
	ListGames(ctx context.Context, limit int) ([]domain.GameRecord, error)
}

type HistoryHandler struct {
	Archive GameArchive
}

func NewHistoryHandler(archive GameArchive) *HistoryHandler {
	return &HistoryHandler{Archive: archive}
}

type historyItem struct {
	ID         string    `json:"id"`
	Difficulty string    `json:"difficulty"`
	Result     string    `json:"result"` // "win", "loss", "draw" for the human
	EndReason  string    `json:"endReason"`
	MovesCount int       `json:"movesCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newHistoryItem(rec domain.GameRecord) historyItem {
	item := historyItem{
		ID:         rec.GameID,
		Difficulty: rec.Difficulty,
		EndReason:  rec.Reason,
		MovesCount: len(rec.Moves),
		CreatedAt:  rec.CreatedAt,
	}
	switch {
	case rec.Winner == domain.Empty:
		item.Result = "draw"
	case rec.HumanWon():
		item.Result = "win"
	default:
		item.Result = "loss"
	}
	return item
}

// GetHistory answers GET /api/history?limit=N.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.Archive.ListGames(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	history := make([]historyItem, 0, len(records))
	for _, rec := range records {
		history = append(history, newHistoryItem(rec))
	}
	c.JSON(http.StatusOK, history)
}

type gameDetails struct {
	domain.GameRecord
	Status string  `json:"status"`
	Board  [][]int `json:"board"`
}

// GetGameDetails answers GET /api/history/:id with the record and final board.
func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	rec, err := h.Archive.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	pos, err := domain.ParseMoves(domain.FormatMoves(rec.Moves))
	if err != nil {
		// a stored game that does not replay is our fault, not the caller's
		abortWithError(c, fmt.Errorf("replay game %s: %v", rec.GameID, err))
		return
	}

	c.JSON(http.StatusOK, gameDetails{
		GameRecord: rec,
		Status:     rec.Status.String(),
		Board:      pos.Grid().TopDown(),
	})
}
