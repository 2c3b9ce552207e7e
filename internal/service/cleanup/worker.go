package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// IdleEvicter is the part of the session manager the worker drives.
type IdleEvicter interface {
	EvictIdle(idle time.Duration) int
}

type Worker struct {
	sessions IdleEvicter
	idle     time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

// NewWorker evicts sessions idle for longer than idle, checking every interval.
func NewWorker(sessions IdleEvicter, idle, interval time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		sessions: sessions,
		idle:     idle,
		interval: interval,
		logger:   logger.With().Str("component", "cleanup").Logger(),
	}
}

// Run sweeps until ctx is done. It always returns nil so it can sit in an
// errgroup without tearing the group down.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("idle", w.idle).Dur("interval", w.interval).Msg("background worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("background worker stopped")
			return nil
		case <-ticker.C:
			w.runCleanup()
		}
	}
}

func (w *Worker) runCleanup() {
	if n := w.sessions.EvictIdle(w.idle); n > 0 {
		w.logger.Info().Int("evicted", n).Msg("removed idle game sessions")
	}
}
