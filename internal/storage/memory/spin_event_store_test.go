package memory

import (
	"context"
	"testing"

	"spin-rewards/internal/domain"
)

func TestSpinEventStore_SlotDistribution(t *testing.T) {
	store := NewSpinEventStore()
	ctx := context.Background()

	events := []*domain.SpinEvent{
		{SpinID: "1", SlotIndex: 2, Timestamp: 1000},
		{SpinID: "2", SlotIndex: 0, Timestamp: 2000},
		{SpinID: "3", SlotIndex: 2, Timestamp: 3000},
		{SpinID: "4", SlotIndex: 1, Timestamp: 9000}, // outside range
	}
	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	dist, err := store.SlotDistribution(ctx, 1000, 3000)
	if err != nil {
		t.Fatalf("SlotDistribution failed: %v", err)
	}

	want := []domain.SlotCount{{SlotIndex: 0, Count: 1}, {SlotIndex: 2, Count: 2}}
	if len(dist) != len(want) {
		t.Fatalf("expected %d slots, got %d: %+v", len(want), len(dist), dist)
	}
	for i := range want {
		if dist[i] != want[i] {
			t.Errorf("dist[%d] = %+v, want %+v", i, dist[i], want[i])
		}
	}
}

func TestSpinEventStore_RejectsInvalidBatch(t *testing.T) {
	store := NewSpinEventStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.SpinEvent{{SpinID: "1"}, nil})
	if err == nil {
		t.Fatal("expected error for nil event")
	}

	dist, _ := store.SlotDistribution(ctx, 0, 1<<62)
	if len(dist) != 0 {
		t.Errorf("invalid batch must not be partially applied, got %+v", dist)
	}
}
