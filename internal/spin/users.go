package spin

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
	"spin-rewards/internal/sui"
)

// RegisterRequest connects a wallet. PublicKey and Referrer are optional.
type RegisterRequest struct {
	Wallet    string
	PublicKey string // base64 or hex ed25519 key
	Referrer  string
}

// RegisterWallet creates a user for the wallet, or returns the existing one.
// The second return value reports whether the user was created.
func (s *Service) RegisterWallet(ctx context.Context, req RegisterRequest) (*domain.User, bool, error) {
	wallet, err := sui.NormalizeAddress(req.Wallet)
	if err != nil {
		return nil, false, err
	}

	if req.PublicKey != "" {
		pk, err := sui.ParsePublicKey(req.PublicKey)
		if err != nil {
			return nil, false, err
		}
		derived, err := sui.DeriveAddress(pk)
		if err != nil {
			return nil, false, err
		}
		if derived != wallet {
			return nil, false, ErrPublicKeyMismatch
		}
	}

	existing, err := s.deps.Users.Get(ctx, wallet)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	var referrer *string
	if req.Referrer != "" {
		ref, err := s.validateReferrer(ctx, wallet, req.Referrer)
		if err != nil {
			return nil, false, err
		}
		referrer = &ref
	}

	now := s.now()
	u := &domain.User{
		WalletAddress:  wallet,
		SpinBalance:    s.cfg.InitialSpins,
		TokenBalance:   decimal.Zero,
		ReferrerWallet: referrer,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.deps.Users.Create(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Concurrent registration won
			existing, err := s.deps.Users.Get(ctx, wallet)
			if err != nil {
				return nil, false, fmt.Errorf("get user: %w", err)
			}
			return existing, false, nil
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, ErrInvalidReferrer
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("wallet registered",
		zap.String("wallet", wallet),
		zap.Bool("referred", referrer != nil),
	)
	return u, true, nil
}

func (s *Service) validateReferrer(ctx context.Context, wallet, raw string) (string, error) {
	ref, err := sui.NormalizeAddress(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidReferrer, err)
	}
	if ref == wallet {
		return "", fmt.Errorf("%w: self referral", ErrInvalidReferrer)
	}
	if _, err := s.deps.Users.Get(ctx, ref); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%w: unknown wallet %s", ErrInvalidReferrer, ref)
		}
		return "", fmt.Errorf("get referrer: %w", err)
	}
	return ref, nil
}

// GetUser returns the user of a wallet.
func (s *Service) GetUser(ctx context.Context, wallet string) (*domain.User, error) {
	wallet, err := sui.NormalizeAddress(wallet)
	if err != nil {
		return nil, err
	}
	return s.deps.Users.Get(ctx, wallet)
}

// History returns a wallet's most recent spins, newest first.
// Non-positive or oversized limits are clamped to the configured maximum.
func (s *Service) History(ctx context.Context, wallet string, limit int) ([]*domain.Spin, error) {
	wallet, err := sui.NormalizeAddress(wallet)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	return s.deps.Spins.ListByWallet(ctx, wallet, limit)
}
