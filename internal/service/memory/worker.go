package memory

import (
	"context"
	"time"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

const defaultWorkerBatch = 10

// Worker periodically distills sessions that have gone idle since their
// last distillation.
type Worker struct {
	sessions  core.SessionRepository
	distiller *Distiller
	Interval  time.Duration
	Idle      time.Duration
	BatchSize int
}

func NewWorker(sessions core.SessionRepository, distiller *Distiller, interval, idle time.Duration) *Worker {
	return &Worker{
		sessions:  sessions,
		distiller: distiller,
		Interval:  interval,
		Idle:      idle,
		BatchSize: defaultWorkerBatch,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", w.Interval).Dur("idle", w.Idle).Msg("starting distillation worker")

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) Shutdown(ctx context.Context) error {
	return nil
}

func (w *Worker) processBatch(ctx context.Context) int {
	logger := log.FromCtx(ctx)

	sessions, err := w.sessions.IdleUnprocessed(ctx, w.Idle, w.BatchSize)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list idle sessions")
		return 0
	}

	done := 0
	for _, s := range sessions {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.distiller.Process(ctx, s.ID); err != nil {
			logger.Error().Err(err).Str("session_id", s.ID).Msg("distillation failed")
			continue
		}
		done++
	}
	return done
}
