package spin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/fairness"
	"spin-rewards/internal/idhash"
	"spin-rewards/internal/observability"
	"spin-rewards/internal/storage"
	"spin-rewards/internal/sui"
)

// Outcome is the result of one completed spin.
type Outcome struct {
	Spin           *domain.Spin
	RemainingSpins int64
	TokenBalance   decimal.Decimal
}

// Spin spends one spin of wallet on the current prize table.
//
// The spin balance is decremented before the draw. If the draw or the
// persistence of its result fails, the spin is given back.
func (s *Service) Spin(ctx context.Context, wallet string) (*Outcome, error) {
	start := time.Now()

	wallet, err := sui.NormalizeAddress(wallet)
	if err != nil {
		return nil, err
	}

	if s.deps.Limiter != nil {
		ok, err := s.deps.Limiter.Allow(ctx, wallet)
		if err != nil {
			observability.RecordSpinFailure("rate_limiter")
			return nil, fmt.Errorf("check rate limit: %w", err)
		}
		if !ok {
			observability.RecordRateLimited()
			return nil, ErrRateLimited
		}
	}

	table, err := s.deps.Prizes.Current(ctx)
	if err != nil {
		observability.RecordSpinFailure("prize_table")
		return nil, fmt.Errorf("load prize table: %w", err)
	}

	user, err := s.deps.Users.Get(ctx, wallet)
	if err != nil {
		return nil, err
	}

	remaining, err := s.deps.Users.DecrementSpins(ctx, wallet)
	if err != nil {
		if errors.Is(err, storage.ErrNoSpinsRemaining) {
			observability.RecordSpinFailure("no_spins")
		}
		return nil, err
	}

	result, err := s.generator.ExecuteSpin(table.Slots)
	if err != nil {
		observability.RecordSpinFailure(failureReason(err))
		s.restoreSpin(ctx, wallet, "execute")
		return nil, fmt.Errorf("execute spin: %w", err)
	}

	sp := domain.NewSpin(s.newID(), wallet, idhash.ComputeSeedHash(result.ServerSeed), table.Version, result, s.now())
	sp.CommissionAmount = decimal.Zero
	if user.HasReferrer() {
		ref := *user.ReferrerWallet
		sp.ReferrerWallet = &ref
		sp.CommissionAmount = fairness.CalculateReferralCommission(sp.Amount, s.cfg.CommissionPercent)
	}

	balance, err := s.deps.Spins.RecordSpin(ctx, sp)
	if err != nil {
		observability.RecordSpinFailure("record")
		s.restoreSpin(ctx, wallet, "record")
		return nil, fmt.Errorf("record spin: %w", err)
	}

	s.afterSpin(ctx, sp, time.Since(start))

	return &Outcome{
		Spin:           sp,
		RemainingSpins: remaining,
		TokenBalance:   balance,
	}, nil
}

// restoreSpin gives back a spin taken by DecrementSpins.
func (s *Service) restoreSpin(ctx context.Context, wallet, stage string) {
	rctx, cancel := detachedContext(ctx)
	defer cancel()

	_, err := s.deps.Users.IncrementSpins(rctx, wallet, 1)
	observability.RecordRollback(stage, err)
	if err != nil {
		s.logger.Error("restore spin failed",
			zap.String("wallet", wallet),
			zap.String("stage", stage),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("spin restored", zap.String("wallet", wallet), zap.String("stage", stage))
}

// afterSpin performs side effects that must not fail a persisted spin.
func (s *Service) afterSpin(ctx context.Context, sp *domain.Spin, elapsed time.Duration) {
	amount := sp.Amount.InexactFloat64()
	observability.RecordSpin(sp.PrizeType.String(), sp.SlotIndex, amount, elapsed.Seconds(), sp.CreatedAt.Unix())
	observability.RecordCommission(sp.CommissionAmount.InexactFloat64())

	if s.deps.Events != nil {
		event := &domain.SpinEvent{
			SpinID:        sp.SpinID,
			WalletAddress: sp.WalletAddress,
			SlotIndex:     sp.SlotIndex,
			PrizeType:     sp.PrizeType,
			Amount:        amount,
			ValueUSD:      sp.ValueUSD.InexactFloat64(),
			TableVersion:  sp.TableVersion,
			Timestamp:     sp.CreatedAt.UnixMilli(),
		}
		ectx, cancel := detachedContext(ctx)
		err := s.deps.Events.InsertBulk(ectx, []*domain.SpinEvent{event})
		cancel()
		if err != nil {
			s.logger.Warn("spin event not recorded", zap.String("spin_id", sp.SpinID), zap.Error(err))
		}
	}

	if s.deps.Publisher != nil {
		s.deps.Publisher.PublishSpin(sp)
	}

	s.logger.Info("spin completed",
		zap.String("spin_id", sp.SpinID),
		zap.String("wallet", sp.WalletAddress),
		zap.Int("slot", sp.SlotIndex),
		zap.String("prize_type", sp.PrizeType.String()),
		zap.String("amount", sp.Amount.String()),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, fairness.ErrEntropyUnavailable):
		return "entropy"
	case errors.Is(err, fairness.ErrEmptyPrizeTable):
		return "empty_table"
	default:
		return "execute"
	}
}
