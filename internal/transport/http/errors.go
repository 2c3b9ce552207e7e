package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/analysis"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/game"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidMoves),
		errors.Is(err, domain.ErrInvalidColumn),
		errors.Is(err, domain.ErrColumnFull),
		errors.Is(err, bot.ErrInvalidDepth),
		errors.Is(err, analysis.ErrDepthLimit),
		errors.Is(err, analysis.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGameNotFound),
		errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, bot.ErrNoLegalMoves),
		errors.Is(err, domain.ErrGameFinished):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
