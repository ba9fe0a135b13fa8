package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	chstore "spin-rewards/internal/storage/clickhouse"
)

const clickhouseVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    UInt64,
		name       String,
		applied_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree()
	ORDER BY version
`

// RunClickhouseMigrations creates the analytics database named by dsn if
// needed, applies pending migrations and returns a connection to it.
// ClickHouse has no transactional DDL, so a version is recorded only after
// all statements of its file succeed.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, []Migration, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	adminConn, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	err = adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName))
	adminConn.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("create database %s: %w", dbName, err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	applied, err := runClickhouse(ctx, conn, ClickhouseFS, "clickhouse")
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, applied, nil
}

func runClickhouse(ctx context.Context, conn *chstore.Conn, fsys fs.FS, dir string) ([]Migration, error) {
	all, err := load(fsys, dir)
	if err != nil {
		return nil, err
	}

	if err := conn.Exec(ctx, clickhouseVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	done, err := appliedClickhouseVersions(ctx, conn)
	if err != nil {
		return nil, err
	}

	var applied []Migration
	for _, m := range all {
		if done[m.Version] {
			continue
		}
		stmts, err := splitStatements(m.SQL)
		if err != nil {
			return applied, fmt.Errorf("migration %03d_%s: %w", m.Version, m.Name, err)
		}
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				return applied, fmt.Errorf("apply migration %03d_%s: %w", m.Version, m.Name, err)
			}
		}
		if err := conn.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, uint64(m.Version), m.Name); err != nil {
			return applied, fmt.Errorf("record migration %03d_%s: %w", m.Version, m.Name, err)
		}
		applied = append(applied, m)
	}
	return applied, nil
}

func appliedClickhouseVersions(ctx context.Context, conn *chstore.Conn) (map[int64]bool, error) {
	rows, err := conn.Query(ctx, `SELECT DISTINCT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[int64]bool)
	for rows.Next() {
		var v uint64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		done[int64(v)] = true
	}
	return done, rows.Err()
}

// splitStatements splits a migration for the native protocol, which takes one
// statement per Exec. A semicolon ends a statement unless it sits inside a
// quoted literal or a -- comment.
func splitStatements(sql string) ([]string, error) {
	var (
		stmts []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(sql) {
				i++
				cur.WriteByte(sql[i])
			} else if c == quote {
				if i+1 < len(sql) && sql[i+1] == quote {
					i++
					cur.WriteByte(sql[i])
				} else {
					quote = 0
				}
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
			cur.WriteByte(c)
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
		case c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c literal", quote)
	}
	flush()
	return stmts, nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}
