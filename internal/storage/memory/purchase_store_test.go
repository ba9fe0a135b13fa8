package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/storage"
)

func TestPurchaseStore_RecordPurchase(t *testing.T) {
	users := NewUserStore()
	store := NewPurchaseStore(users)
	ctx := context.Background()
	users.Create(ctx, newUser(walletA, 1))

	p := &domain.Purchase{
		PurchaseID:    "p1",
		WalletAddress: walletA,
		TxDigest:      "digest1",
		AmountMist:    decimal.NewFromInt(3_000_000_000),
		SpinsCredited: 3,
		CreatedAt:     time.Now().UTC(),
	}

	balance, err := store.RecordPurchase(ctx, p)
	if err != nil {
		t.Fatalf("RecordPurchase failed: %v", err)
	}
	if balance != 4 {
		t.Errorf("expected balance 4, got %d", balance)
	}

	got, err := store.GetByDigest(ctx, "digest1")
	if err != nil {
		t.Fatalf("GetByDigest failed: %v", err)
	}
	if got.SpinsCredited != 3 || !got.AmountMist.Equal(p.AmountMist) {
		t.Errorf("unexpected purchase: %+v", got)
	}

	// Same digest is never credited twice
	if _, err := store.RecordPurchase(ctx, p); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	u, _ := users.Get(ctx, walletA)
	if u.SpinBalance != 4 {
		t.Errorf("expected balance to stay 4, got %d", u.SpinBalance)
	}
}

func TestPurchaseStore_Errors(t *testing.T) {
	store := NewPurchaseStore(NewUserStore())
	ctx := context.Background()

	if _, err := store.GetByDigest(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	p := &domain.Purchase{PurchaseID: "p1", WalletAddress: walletA, TxDigest: "d", SpinsCredited: 0}
	if _, err := store.RecordPurchase(ctx, p); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	p.SpinsCredited = 1
	if _, err := store.RecordPurchase(ctx, p); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown wallet, got %v", err)
	}
}
