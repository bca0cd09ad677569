package notification

import (
	"context"
	"log/slog"
	"time"
)

// SweeperConfig holds configuration for the stale entry sweeper.
type SweeperConfig struct {
	// Interval is how often the sweeper scans for stale entries.
	Interval time.Duration

	// StaleThreshold is how long an entry may sit in pending before the
	// sweeper marks it failed.
	StaleThreshold time.Duration

	// BatchSize is the maximum number of stale entries handled per cycle.
	BatchSize int
}

// Sweeper periodically scans the log store for entries stuck in pending.
// A send writes its entry as pending before the provider call, so a
// process crash in that window leaves a pending row with no terminal
// status. The sweeper closes those rows out as failed, keeping the log
// an honest record and the entries eligible for the admin resend action.
type Sweeper struct {
	logs   LogStore
	config SweeperConfig
}

// NewSweeper creates a new stale entry sweeper.
func NewSweeper(logs LogStore, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = 10 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	return &Sweeper{
		logs:   logs,
		config: cfg,
	}
}

// Run starts the sweeper loop. It blocks until the context is cancelled.
// Should be called in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("sweeper started",
		"interval", s.config.Interval,
		"stale_threshold", s.config.StaleThreshold,
		"batch_size", s.config.BatchSize,
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep performs one cycle: find stale pending entries and fail them.
func (s *Sweeper) sweep(ctx context.Context) {
	olderThan := time.Now().Add(-s.config.StaleThreshold)

	stale, err := s.logs.ListStalePending(ctx, olderThan, s.config.BatchSize)
	if err != nil {
		slog.Error("sweeper: failed to list stale entries", "error", err)
		return
	}

	if len(stale) == 0 {
		return // Nothing to do — the common case
	}

	slog.Warn("sweeper: found stale pending entries", "count", len(stale))

	closed := 0
	for _, entry := range stale {
		if err := s.logs.UpdateStatus(ctx, entry.ID, StatusFailed, "send interrupted before completion"); err != nil {
			slog.Error("sweeper: failed to close out entry",
				"log_id", entry.ID,
				"error", err,
			)
			continue
		}

		closed++
		slog.Info("sweeper: closed out stale entry",
			"log_id", entry.ID,
			"type", entry.Type,
			"age", time.Since(entry.UpdatedAt).Round(time.Second),
		)
	}

	if closed > 0 {
		slog.Info("sweeper: sweep complete", "closed", closed, "total_stale", len(stale))
	}
}
