package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

func TestPrizeTableStore_Versions(t *testing.T) {
	store := NewPrizeTableStore()
	ctx := context.Background()

	if _, err := store.Get(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty store, got %v", err)
	}

	lock := domain.LockOneWeek
	slots := []domain.PrizeSlot{
		{SlotIndex: 0, Type: domain.PrizeTypeNoPrize, Amount: decimal.Zero, Weight: 5},
		{SlotIndex: 1, Type: domain.PrizeTypeLocked, Amount: decimal.NewFromInt(10), Weight: 1, LockDuration: &lock},
	}

	v1, err := store.Put(ctx, slots)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if v1.Version != 1 {
		t.Errorf("expected version 1, got %d", v1.Version)
	}

	// Mutating the input after Put must not affect the store
	slots[0].Weight = 99
	*slots[1].LockDuration = domain.LockOneYear

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Slots[0].Weight != 5 || *got.Slots[1].LockDuration != domain.LockOneWeek {
		t.Errorf("store was mutated through input slice: %+v", got.Slots)
	}

	v2, _ := store.Put(ctx, got.Slots)
	if v2.Version != 2 {
		t.Errorf("expected version 2, got %d", v2.Version)
	}

	if _, err := store.Put(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
