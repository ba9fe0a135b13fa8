package spin

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/idhash"
	"spin-rewards/internal/observability"
	"spin-rewards/internal/storage"
	"spin-rewards/internal/sui"
)

// PurchaseOutcome is the result of crediting a payment.
type PurchaseOutcome struct {
	Purchase    *domain.Purchase
	SpinBalance int64
}

// CreditPurchase verifies an on-chain SUI payment from wallet to the
// treasury and credits one spin per full spin price received.
// A digest is credited at most once.
func (s *Service) CreditPurchase(ctx context.Context, wallet, digest string) (out *PurchaseOutcome, err error) {
	defer func() {
		if err != nil {
			observability.RecordPurchase(purchaseStatus(err), 0)
		}
	}()

	if s.treasury == "" || s.deps.RPC == nil {
		return nil, ErrPurchasesDisabled
	}

	wallet, err = sui.NormalizeAddress(wallet)
	if err != nil {
		return nil, err
	}
	if err := sui.ValidateDigest(digest); err != nil {
		return nil, err
	}

	if _, err := s.deps.Purchases.GetByDigest(ctx, digest); err == nil {
		return nil, storage.ErrDuplicateKey
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	if _, err := s.deps.Users.Get(ctx, wallet); err != nil {
		return nil, err
	}

	tx, err := s.deps.RPC.GetTransactionBlock(ctx, digest)
	if err != nil {
		if errors.Is(err, sui.ErrTransactionNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if !tx.Succeeded() {
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, tx.Error)
	}
	if tx.Sender != wallet {
		return nil, ErrPaymentSenderMismatch
	}

	received := tx.ReceivedBy(s.treasury)
	quotient, _ := received.QuoRem(s.cfg.SpinPriceMist, 0)
	spins := quotient.IntPart()
	if spins < 1 {
		return nil, fmt.Errorf("%w: received %s MIST, price %s MIST", ErrPaymentTooSmall, received, s.cfg.SpinPriceMist)
	}

	p := &domain.Purchase{
		PurchaseID:    idhash.ComputePurchaseID(digest, wallet),
		WalletAddress: wallet,
		TxDigest:      digest,
		AmountMist:    received,
		SpinsCredited: spins,
		CreatedAt:     s.now(),
	}

	balance, err := s.deps.Purchases.RecordPurchase(ctx, p)
	if err != nil {
		return nil, err
	}

	observability.RecordPurchase("credited", spins)
	s.logger.Info("purchase credited",
		zap.String("wallet", wallet),
		zap.String("digest", digest),
		zap.String("amount_mist", received.String()),
		zap.Int64("spins", spins),
	)

	return &PurchaseOutcome{Purchase: p, SpinBalance: balance}, nil
}

func purchaseStatus(err error) string {
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return "duplicate"
	case errors.Is(err, ErrPaymentNotFound):
		return "not_found"
	case errors.Is(err, ErrPaymentFailed), errors.Is(err, ErrPaymentSenderMismatch), errors.Is(err, ErrPaymentTooSmall):
		return "rejected"
	case errors.Is(err, sui.ErrInvalidAddress), errors.Is(err, sui.ErrInvalidDigest), errors.Is(err, storage.ErrNotFound):
		return "invalid"
	case errors.Is(err, ErrPurchasesDisabled):
		return "disabled"
	default:
		return "error"
	}
}
