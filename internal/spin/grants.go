package spin

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"spin-rewards/internal/observability"
)

// GrantDailySpins gives the daily free spins to every user not yet granted
// on the UTC day of now. Running it again on the same day grants nothing.
func (s *Service) GrantDailySpins(ctx context.Context, now time.Time) (int64, error) {
	if s.cfg.DailyFreeSpins <= 0 {
		return 0, nil
	}

	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	granted, err := s.deps.Users.GrantDailySpins(ctx, s.cfg.DailyFreeSpins, dayStart, now)
	if err != nil {
		return 0, fmt.Errorf("grant daily spins: %w", err)
	}

	observability.RecordDailyGrants(granted)
	s.logger.Info("daily spins granted",
		zap.Int64("users", granted),
		zap.Int64("spins_each", s.cfg.DailyFreeSpins),
		zap.Time("day", dayStart),
	)
	return granted, nil
}
