package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pacerank/internal/config"
	"github.com/pacerank/internal/service"
)

// RecomputeWorker periodically recomputes every competition's standings so
// cached leaderboards stay warm and WebSocket subscribers receive updates
// even when no new workouts arrive.
type RecomputeWorker struct {
	service *service.LeaderboardService
	config  *config.RecomputeConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewRecomputeWorker creates a new recompute worker
func NewRecomputeWorker(
	svc *service.LeaderboardService,
	cfg *config.RecomputeConfig,
	logger *slog.Logger,
) *RecomputeWorker {
	return &RecomputeWorker{
		service: svc,
		config:  cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the background recompute process
func (w *RecomputeWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("recompute worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background recompute process
func (w *RecomputeWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("recompute worker stopped")
	return nil
}

// run is the main worker loop
func (w *RecomputeWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.recomputeAll(ctx)
		}
	}
}

// recomputeAll recomputes standings for every competition
func (w *RecomputeWorker) recomputeAll(ctx context.Context) {
	w.logger.Info("starting recompute cycle")
	startTime := time.Now()

	competitions, err := w.service.ListCompetitions(ctx)
	if err != nil {
		w.logger.Error("failed to list competitions for recompute", "error", err)
		return
	}

	recomputedCount := 0
	errorCount := 0

	for _, comp := range competitions {
		if err := w.service.RecomputeAndBroadcast(ctx, comp.ID); err != nil {
			w.logger.Error("failed to recompute leaderboard",
				"competition_id", comp.ID,
				"error", err,
			)
			errorCount++
		} else {
			recomputedCount++
		}
	}

	duration := time.Since(startTime)
	w.logger.Info("recompute cycle completed",
		"duration", duration,
		"recomputed", recomputedCount,
		"errors", errorCount,
	)
}

// IsRunning returns whether the worker is currently running
func (w *RecomputeWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single recompute cycle (useful for manual triggers)
func (w *RecomputeWorker) RunOnce(ctx context.Context) {
	w.recomputeAll(ctx)
}
