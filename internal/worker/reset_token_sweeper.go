package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/repository"
)

// ResetTokenSweeper periodically deletes expired and consumed password reset tokens.
type ResetTokenSweeper struct {
	repo     repository.PasswordResetRepository
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewResetTokenSweeper builds a sweeper. A non-positive interval defaults to one hour.
func NewResetTokenSweeper(repo repository.PasswordResetRepository, interval time.Duration, logger *zap.Logger) *ResetTokenSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResetTokenSweeper{repo: repo, interval: interval, logger: logger, now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *ResetTokenSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.SweepOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce deletes tokens that stopped being usable before now.
func (s *ResetTokenSweeper) SweepOnce(ctx context.Context) {
	removed, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("failed to sweep password reset tokens", zap.Error(err))
		}
		return
	}
	if removed > 0 {
		s.logger.Info("swept password reset tokens", zap.Int64("removed", removed))
	}
}
