package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/iamasit07/4-in-a-row/engine/internal/config"
	"github.com/iamasit07/4-in-a-row/engine/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/engine/internal/repository/redis"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/analysis"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/cleanup"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/game"
	transportHttp "github.com/iamasit07/4-in-a-row/engine/internal/transport/http"
	"github.com/iamasit07/4-in-a-row/engine/internal/transport/websocket"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
	"github.com/iamasit07/4-in-a-row/engine/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second
	cleanupInterval = time.Minute
)

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		envErr = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	lg := logger.New(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		lg.Debug().Msg("no .env file found, using the environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := cfg.Search.EngineOptions()
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid search settings")
	}
	engine, err := bot.NewEngine(opts, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("creating engine failed")
	}

	// Postgres is optional: without it finished games are only logged.
	var (
		repo    game.GameRepository
		history *transportHttp.HistoryHandler
		pinger  transportHttp.Pinger
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:       cfg.DBMaxOpenConns,
			MaxIdleConns:       cfg.DBMaxIdleConns,
			ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		})
		if err != nil {
			lg.Fatal().Err(err).Msg("database unreachable")
		}
		defer db.Close()

		lg.Info().Msg("running database migrations")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			lg.Fatal().Err(err).Msg("migration failed")
		}

		gameRepo := postgres.NewGameRepo(db)
		repo = gameRepo
		history = transportHttp.NewHistoryHandler(gameRepo)
		pinger = db
	} else {
		lg.Warn().Msg("DATABASE_URL not set, game history is disabled")
	}

	var cache analysis.ResultCache
	if client := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, lg); client != nil {
		defer client.Close()
		cache = redis.NewResultCache(client, cfg.CacheTTL)
	}

	schedule := game.DepthSchedule{
		Initial:    cfg.Search.InitialDepth,
		EveryTurns: cfg.Search.DepthStepTurns,
		Max:        cfg.Search.MaxDepth,
	}
	sessions, err := game.NewSessionManager(engine, schedule, cfg.SearchTimeout, repo, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid depth schedule")
	}
	analyzer := analysis.NewService(engine, cache, cfg.Search.InitialDepth, cfg.Search.MaxDepth, cfg.SearchTimeout, lg)

	tickets := auth.NewTickets(cfg.JWTSecret, cfg.TicketTTL)
	wsHandler := websocket.NewHandler(sessions, tickets, cfg.AllowedOrigins, lg)

	router := transportHttp.NewRouter(transportHttp.Handlers{
		Analysis:  transportHttp.NewAnalysisHandler(analyzer),
		History:   history,
		Games:     transportHttp.NewGamesHandler(sessions),
		Health:    transportHttp.NewHealthHandler(pinger),
		WebSocket: wsHandler.HandleWebSocket,
	}, cfg.AllowedOrigins, lg)
	serveFrontend(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cleanup.NewWorker(sessions, cfg.SessionIdle, cleanupInterval, lg).Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info().Msg("server is shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error().Err(err).Msg("server stopped with error")
	}

	sessions.Wait()
	lg.Info().Msg("server exited gracefully")
}

// serveFrontend hosts a built frontend from ./static when one is present.
func serveFrontend(router *gin.Engine) {
	if _, err := os.Stat("./static"); err != nil {
		return
	}

	router.Static("/assets", "./static/assets")
	router.GET("/", func(c *gin.Context) {
		c.File("./static/index.html")
	})

	router.NoRoute(func(c *gin.Context) {
		path := "./static" + c.Request.URL.Path
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/assets/") || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Status(http.StatusNotFound)
			return
		}

		// SPA fallback
		c.File("./static/index.html")
	})
}
