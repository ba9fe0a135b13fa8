package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

const (
	walletA = "0x00000000000000000000000000000000000000000000000000000000000000a1"
	walletB = "0x00000000000000000000000000000000000000000000000000000000000000b2"
)

func newUser(wallet string, spins int64) *domain.User {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &domain.User{
		WalletAddress: wallet,
		SpinBalance:   spins,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestUserStore_CreateAndGet(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	referrer := walletB
	u := newUser(walletA, 3)
	u.ReferrerWallet = &referrer

	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, walletA)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SpinBalance != 3 {
		t.Errorf("SpinBalance mismatch: got %d, want 3", got.SpinBalance)
	}
	if !got.HasReferrer() || *got.ReferrerWallet != walletB {
		t.Errorf("ReferrerWallet mismatch: got %v", got.ReferrerWallet)
	}

	// Mutating the returned copy must not affect the store
	*got.ReferrerWallet = "changed"
	again, _ := store.Get(ctx, walletA)
	if *again.ReferrerWallet != walletB {
		t.Errorf("store was mutated through returned copy")
	}
}

func TestUserStore_DuplicateKey(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if err := store.Create(ctx, newUser(walletA, 0)); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	err := store.Create(ctx, newUser(walletA, 0))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestUserStore_NotFound(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, walletA); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.DecrementSpins(ctx, walletA); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.IncrementSpins(ctx, walletA, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_DecrementSpins(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()
	store.Create(ctx, newUser(walletA, 2))

	remaining, err := store.DecrementSpins(ctx, walletA)
	if err != nil || remaining != 1 {
		t.Fatalf("first decrement: got (%d, %v), want (1, nil)", remaining, err)
	}
	remaining, err = store.DecrementSpins(ctx, walletA)
	if err != nil || remaining != 0 {
		t.Fatalf("second decrement: got (%d, %v), want (0, nil)", remaining, err)
	}
	if _, err := store.DecrementSpins(ctx, walletA); !errors.Is(err, storage.ErrNoSpinsRemaining) {
		t.Errorf("Expected ErrNoSpinsRemaining, got %v", err)
	}

	balance, err := store.IncrementSpins(ctx, walletA, 5)
	if err != nil || balance != 5 {
		t.Errorf("increment: got (%d, %v), want (5, nil)", balance, err)
	}
}

func TestUserStore_DecrementSpins_Concurrent(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()
	store.Create(ctx, newUser(walletA, 10))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.DecrementSpins(ctx, walletA); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Errorf("expected exactly 10 successful decrements, got %d", succeeded)
	}
	u, _ := store.Get(ctx, walletA)
	if u.SpinBalance != 0 {
		t.Errorf("expected zero balance, got %d", u.SpinBalance)
	}
}

func TestUserStore_GrantDailySpins(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()
	store.Create(ctx, newUser(walletA, 0))
	store.Create(ctx, newUser(walletB, 0))

	now := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)
	dayStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	granted, err := store.GrantDailySpins(ctx, 1, dayStart, now)
	if err != nil {
		t.Fatalf("GrantDailySpins failed: %v", err)
	}
	if granted != 2 {
		t.Errorf("expected 2 grants, got %d", granted)
	}

	// Second run on the same day is a no-op
	granted, _ = store.GrantDailySpins(ctx, 1, dayStart, now.Add(time.Hour))
	if granted != 0 {
		t.Errorf("expected 0 grants on repeat, got %d", granted)
	}

	// Next day grants again
	next := dayStart.Add(24 * time.Hour)
	granted, _ = store.GrantDailySpins(ctx, 1, next, next.Add(time.Minute))
	if granted != 2 {
		t.Errorf("expected 2 grants next day, got %d", granted)
	}

	u, _ := store.Get(ctx, walletA)
	if u.SpinBalance != 2 {
		t.Errorf("expected balance 2, got %d", u.SpinBalance)
	}
}

func TestUserStore_InvalidInput(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if err := store.Create(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Create(ctx, newUser("", 0)); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty wallet, got %v", err)
	}
	store.Create(ctx, newUser(walletA, 0))
	if _, err := store.IncrementSpins(ctx, walletA, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero increment, got %v", err)
	}
}
