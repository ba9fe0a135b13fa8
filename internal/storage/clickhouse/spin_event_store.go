package clickhouse

import (
	"context"
	"fmt"
	"math"
	"time"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/observability"
	"spin-rewards/internal/storage"
)

// SpinEventStore implements storage.SpinEventStore using ClickHouse.
// Rows are deduplicated on (timestamp, spin_id) by ReplacingMergeTree.
type SpinEventStore struct {
	conn *Conn
}

// NewSpinEventStore creates a new SpinEventStore.
func NewSpinEventStore(conn *Conn) *SpinEventStore {
	return &SpinEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SpinEventStore = (*SpinEventStore)(nil)

// InsertBulk appends spin events in a single batch.
func (s *SpinEventStore) InsertBulk(ctx context.Context, events []*domain.SpinEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e == nil || e.SpinID == "" || e.SlotIndex < 0 || e.SlotIndex > math.MaxUint16 {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "spin_events_insert", time.Since(start).Seconds(), err)
	}()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO spin_events (
			spin_id, wallet_address, slot_index, prize_type,
			amount, value_usd, table_version, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.SpinID, e.WalletAddress, uint16(e.SlotIndex), string(e.PrizeType),
			e.Amount, e.ValueUSD, e.TableVersion, e.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// SlotDistribution counts events per slot within [start, end] (inclusive), ordered by slot.
func (s *SpinEventStore) SlotDistribution(ctx context.Context, start, end int64) ([]domain.SlotCount, error) {
	query := `
		SELECT slot_index, count() AS n
		FROM spin_events FINAL
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY slot_index
		ORDER BY slot_index
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query slot distribution: %w", err)
	}
	defer rows.Close()

	var result []domain.SlotCount
	for rows.Next() {
		var (
			slot uint16
			n    uint64
		)
		if err := rows.Scan(&slot, &n); err != nil {
			return nil, fmt.Errorf("scan slot count: %w", err)
		}
		result = append(result, domain.SlotCount{SlotIndex: int(slot), Count: int64(n)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot counts: %w", err)
	}
	return result, nil
}
