// Package spin implements the spin-to-win flows around the prize selection
// kernel: wallet registration, spins, purchases and daily grants.
package spin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/fairness"
	"spin-rewards/internal/ratelimit"
	"spin-rewards/internal/storage"
	"spin-rewards/internal/sui"
)

// detachedTimeout bounds writes that must finish even if the request context is done.
const detachedTimeout = 5 * time.Second

// TableSource provides prize table snapshots.
type TableSource interface {
	Current(ctx context.Context) (*domain.PrizeTable, error)
}

// Publisher receives completed spins for live broadcast.
type Publisher interface {
	PublishSpin(s *domain.Spin)
}

// Config holds the business parameters of the service.
type Config struct {
	CommissionPercent decimal.Decimal
	InitialSpins      int64
	DailyFreeSpins    int64
	TreasuryAddress   string // empty disables purchases
	SpinPriceMist     decimal.Decimal
	HistoryLimit      int
}

// Deps are the collaborators of the service. Events, Publisher, Limiter
// and RPC are optional.
type Deps struct {
	Users     storage.UserStore
	Spins     storage.SpinStore
	Purchases storage.PurchaseStore
	Events    storage.SpinEventStore
	Prizes    TableSource
	Limiter   ratelimit.Limiter
	RPC       sui.RPCClient
	Publisher Publisher
}

// Option customizes a Service.
type Option func(*Service)

// WithGenerator replaces the secure random generator.
func WithGenerator(g *fairness.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service coordinates stores, the kernel and side effects for each flow.
// It is safe for concurrent use.
type Service struct {
	cfg       Config
	deps      Deps
	treasury  string
	generator *fairness.Generator
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService creates a Service. The treasury address is normalized here.
func NewService(cfg Config, deps Deps, logger *zap.Logger, opts ...Option) (*Service, error) {
	if deps.Users == nil || deps.Spins == nil || deps.Purchases == nil || deps.Prizes == nil {
		return nil, fmt.Errorf("spin service: users, spins, purchases and prizes are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}

	s := &Service{
		cfg:       cfg,
		deps:      deps,
		generator: fairness.NewGenerator(nil),
		logger:    logger.Named("spin"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}

	if cfg.TreasuryAddress != "" {
		treasury, err := sui.NormalizeAddress(cfg.TreasuryAddress)
		if err != nil {
			return nil, fmt.Errorf("treasury address: %w", err)
		}
		if !cfg.SpinPriceMist.IsPositive() {
			return nil, fmt.Errorf("spin price must be positive")
		}
		s.treasury = treasury
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// detachedContext detaches from ctx cancellation but keeps its values.
func detachedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
}
