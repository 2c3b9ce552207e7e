package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/analysis"
)

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
	Status(moves string) (analysis.Status, error)
}

type AnalysisHandler struct {
	Analyzer Analyzer
}

func NewAnalysisHandler(a Analyzer) *AnalysisHandler {
	return &AnalysisHandler{Analyzer: a}
}

type analyzeResponse struct {
	analysis.Result
	ElapsedMs int64 `json:"elapsedMs"`
}

// Analyze answers POST /api/analyze with the engine's move for a sequence.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.Analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{Result: res, ElapsedMs: res.Elapsed.Milliseconds()})
}

type statusRequest struct {
	Moves string `json:"moves"`
}

// Status answers POST /api/status with the board after a sequence.
func (h *AnalysisHandler) Status(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	st, err := h.Analyzer.Status(req.Moves)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
