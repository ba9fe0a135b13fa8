package prizetable

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
	"spin-rewards/internal/storage/memory"
)

// countingStore counts reads reaching the underlying store.
type countingStore struct {
	storage.PrizeTableStore
	gets atomic.Int32
}

func (s *countingStore) Get(ctx context.Context) (*domain.PrizeTable, error) {
	s.gets.Add(1)
	return s.PrizeTableStore.Get(ctx)
}

func TestProvider_EnsureSeededAndCache(t *testing.T) {
	store := &countingStore{PrizeTableStore: memory.NewPrizeTableStore()}
	p := NewProvider(store, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	seeded, err := p.EnsureSeeded(ctx, Default())
	require.NoError(t, err)
	assert.Equal(t, int64(1), seeded.Version)

	// Seeding again keeps the stored table
	again, err := p.EnsureSeeded(ctx, Default())
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Version)

	reads := store.gets.Load()
	for i := 0; i < 5; i++ {
		tbl, err := p.Current(ctx)
		require.NoError(t, err)
		assert.Len(t, tbl.Slots, len(Default()))
	}
	assert.Equal(t, reads, store.gets.Load(), "cached reads must not hit the store")
}

func TestProvider_ReturnsCopies(t *testing.T) {
	p := NewProvider(memory.NewPrizeTableStore(), time.Minute, nil)
	ctx := context.Background()

	_, err := p.EnsureSeeded(ctx, Default())
	require.NoError(t, err)

	first, err := p.Current(ctx)
	require.NoError(t, err)
	first.Slots[0].Weight = 1e9
	*first.Slots[3].LockDuration = domain.LockOneYear

	second, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, Default()[0].Weight, second.Slots[0].Weight)
	assert.Equal(t, domain.LockOneWeek, *second.Slots[3].LockDuration)
}

func TestProvider_UpdateRejectsInvalid(t *testing.T) {
	p := NewProvider(memory.NewPrizeTableStore(), time.Minute, nil)
	ctx := context.Background()

	_, err := p.Update(ctx, []domain.PrizeSlot{{SlotIndex: 0, Type: domain.PrizeTypeLiquid, Weight: 0}})
	assert.ErrorIs(t, err, ErrInvalidTable)

	_, err = p.Current(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProvider_UpdateReplacesCachedTable(t *testing.T) {
	p := NewProvider(memory.NewPrizeTableStore(), time.Hour, nil)
	ctx := context.Background()

	_, err := p.EnsureSeeded(ctx, Default())
	require.NoError(t, err)

	updated, err := p.Update(ctx, []domain.PrizeSlot{
		{SlotIndex: 0, Type: domain.PrizeTypeLiquid, Amount: decimal.NewFromInt(1), Weight: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	cur, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cur.Version)
	assert.Len(t, cur.Slots, 1)
}
