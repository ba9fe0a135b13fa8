package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"spin-rewards/internal/config"
	"spin-rewards/internal/storage"
	chstore "spin-rewards/internal/storage/clickhouse"
	"spin-rewards/internal/storage/memory"
	"spin-rewards/internal/storage/migrations"
	pgstore "spin-rewards/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	mode      string
	users     storage.UserStore
	spins     storage.SpinStore
	purchases storage.PurchaseStore
	prizes    storage.PrizeTableStore
	events    storage.SpinEventStore // nil when analytics are disabled
	cleanup   func()
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*allStores, error) {
	if cfg.UseMemory {
		users := memory.NewUserStore()
		log.Info("using in-memory storage")
		return &allStores{
			mode:      "memory",
			users:     users,
			spins:     memory.NewSpinStore(users),
			purchases: memory.NewPurchaseStore(users),
			prizes:    memory.NewPrizeTableStore(),
			events:    memory.NewSpinEventStore(),
			cleanup:   func() {},
		}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	logMigrations(log, "postgres", applied)

	stores := &allStores{
		mode:      "postgres",
		users:     pgstore.NewUserStore(pool),
		spins:     pgstore.NewSpinStore(pool),
		purchases: pgstore.NewPurchaseStore(pool),
		prizes:    pgstore.NewPrizeTableStore(pool),
		cleanup:   pool.Close,
	}

	// ClickHouse analytics are optional
	if cfg.ClickhouseDSN == "" {
		log.Warn("storage.clickhouse_dsn not set, spin analytics disabled")
		return stores, nil
	}

	chConn, applied, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("clickhouse: %w", err)
	}
	logMigrations(log, "clickhouse", applied)

	stores.mode = "postgres+clickhouse"
	stores.events = chstore.NewSpinEventStore(chConn)
	stores.cleanup = func() {
		if err := chConn.Close(); err != nil {
			log.Warn("close clickhouse", zap.Error(err))
		}
		pool.Close()
	}
	return stores, nil
}

func logMigrations(log *zap.Logger, backend string, applied []migrations.Migration) {
	if len(applied) == 0 {
		log.Info("schema up to date", zap.String("backend", backend))
		return
	}
	for _, m := range applied {
		log.Info("applied migration",
			zap.String("backend", backend),
			zap.Int64("version", m.Version),
			zap.String("name", m.Name),
		)
	}
}
