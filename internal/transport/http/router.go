package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/transport/http/middleware"
)

// Handlers groups everything the router serves. History and WebSocket may be
// nil, in which case their routes are not registered.
type Handlers struct {
	Analysis  *AnalysisHandler
	History   *HistoryHandler
	Games     *GamesHandler
	Health    *HealthHandler
	WebSocket http.HandlerFunc
}

func NewRouter(h Handlers, allowedOrigins []string, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())
	router.Use(middleware.CORSMiddleware(allowedOrigins, logger))

	router.GET("/healthz", h.Health.Healthz)

	api := router.Group("/api")
	{
		api.POST("/analyze", h.Analysis.Analyze)
		api.POST("/status", h.Analysis.Status)
		api.GET("/games", h.Games.GetLiveGames)

		if h.History != nil {
			api.GET("/history", h.History.GetHistory)
			api.GET("/history/:id", h.History.GetGameDetails)
		}
	}

	if h.WebSocket != nil {
		router.GET("/ws", gin.WrapF(h.WebSocket))
	}

	return router
}
