// Package cleanup removes questions left behind by a session delete that
// did not finish.
//
// Session delete removes the session and then its questions in one
// transaction, so orphans should not occur. The sweep is a periodic
// reconciliation for older data and for databases written by other tools.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/YadavAkhileshh/CrackBano/internal/metrics"
)

const orphanQuery = `DELETE FROM questions WHERE session_id NOT IN (SELECT id FROM sessions)`

// DefaultInterval is how often the server sweeps when nothing is configured.
const DefaultInterval = time.Hour

// Executor is satisfied by *sql.DB, *sql.Tx and *sqlite.DB.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// OrphanSweep deletes questions whose session no longer exists.
type OrphanSweep struct {
	db      Executor
	logger  *slog.Logger
	metrics metrics.Recorder
}

func NewOrphanSweep(db Executor, logger *slog.Logger, rec metrics.Recorder) *OrphanSweep {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &OrphanSweep{db: db, logger: logger, metrics: rec}
}

// Run performs one sweep and returns the number of deleted questions. It is
// idempotent.
func (s *OrphanSweep) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	result, err := s.db.ExecContext(ctx, orphanQuery)
	if err != nil {
		s.logger.Error("orphan sweep failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("cleanup: deleting orphan questions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup: reading deleted count: %w", err)
	}

	s.metrics.RecordOrphansSwept(deleted)
	level := slog.LevelDebug
	if deleted > 0 {
		level = slog.LevelInfo
	}
	s.logger.Log(ctx, level, "orphan sweep completed",
		slog.Int64("deleted", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return deleted, nil
}

// Start sweeps once immediately and then every interval until ctx is
// cancelled. Errors are logged and the loop continues.
func (s *OrphanSweep) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("orphan sweeper started", slog.Duration("interval", interval))
	_, _ = s.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("orphan sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.Run(ctx)
		}
	}
}
