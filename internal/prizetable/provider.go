package prizetable

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/observability"
	"spin-rewards/internal/storage"
)

const currentKey = "current"

// Provider serves the current prize table from a TTL cache backed by a store.
// Callers always receive their own copy.
type Provider struct {
	store  storage.PrizeTableStore
	cache  *cache.Cache
	logger *zap.Logger
}

// NewProvider creates a provider caching the table for ttl.
func NewProvider(store storage.PrizeTableStore, ttl time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		store:  store,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger.Named("prizetable"),
	}
}

// Current returns a snapshot of the current prize table.
func (p *Provider) Current(ctx context.Context) (*domain.PrizeTable, error) {
	if v, found := p.cache.Get(currentKey); found {
		return v.(*domain.PrizeTable).Clone(), nil
	}
	return p.Refresh(ctx)
}

// Refresh reloads the table from the store, bypassing the cache.
func (p *Provider) Refresh(ctx context.Context) (*domain.PrizeTable, error) {
	t, err := p.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prize table: %w", err)
	}
	if err := Validate(t.Slots); err != nil {
		return nil, fmt.Errorf("prize table version %d: %w", t.Version, err)
	}

	p.set(t)
	return t.Clone(), nil
}

// Update validates and stores slots as a new version.
func (p *Provider) Update(ctx context.Context, slots []domain.PrizeSlot) (*domain.PrizeTable, error) {
	if err := Validate(slots); err != nil {
		return nil, err
	}

	t, err := p.store.Put(ctx, slots)
	if err != nil {
		return nil, fmt.Errorf("store prize table: %w", err)
	}

	p.logger.Info("prize table updated", zap.Int64("version", t.Version), zap.Int("slots", len(t.Slots)))
	p.set(t)
	return t.Clone(), nil
}

// EnsureSeeded stores slots when the store holds no table yet.
func (p *Provider) EnsureSeeded(ctx context.Context, slots []domain.PrizeSlot) (*domain.PrizeTable, error) {
	t, err := p.Refresh(ctx)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	p.logger.Info("no prize table stored, seeding default")
	return p.Update(ctx, slots)
}

func (p *Provider) set(t *domain.PrizeTable) {
	p.cache.Set(currentKey, t.Clone(), cache.DefaultExpiration)
	observability.UpdatePrizeTableVersion(t.Version)
}
