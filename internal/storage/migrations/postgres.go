package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"spin-rewards/internal/storage/postgres"
)

const postgresVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    BIGINT PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// postgresLockKey is the advisory lock held while a migration applies, so
// replicas starting together do not race on the same version.
const postgresLockKey int64 = 0x7370696e

// RunPostgresMigrations applies every embedded migration not yet recorded in
// schema_migrations and returns the ones it applied. Each file runs in its own
// transaction together with its version row.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) ([]Migration, error) {
	return runPostgres(ctx, pool, PostgresFS, "postgres")
}

func runPostgres(ctx context.Context, pool *postgres.Pool, fsys fs.FS, dir string) ([]Migration, error) {
	all, err := load(fsys, dir)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, postgresVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []Migration
	for _, m := range all {
		ok, err := applyPostgres(ctx, pool, m)
		if err != nil {
			return applied, fmt.Errorf("apply migration %03d_%s: %w", m.Version, m.Name, err)
		}
		if ok {
			applied = append(applied, m)
		}
	}
	return applied, nil
}

// applyPostgres runs m unless its version is already recorded.
func applyPostgres(ctx context.Context, pool *postgres.Pool, m Migration) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, postgresLockKey); err != nil {
		return false, fmt.Errorf("lock: %w", err)
	}

	var done bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version).Scan(&done)
	if err != nil {
		return false, fmt.Errorf("check version: %w", err)
	}
	if done {
		return false, nil
	}

	if strings.TrimSpace(m.SQL) != "" {
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return false, err
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return false, fmt.Errorf("record version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

// AppliedPostgresVersions lists recorded migration versions in ascending order.
func AppliedPostgresVersions(ctx context.Context, pool *postgres.Pool) ([]int64, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	var versions []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
