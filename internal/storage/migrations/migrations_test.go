package migrations

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"spin-rewards/internal/storage/postgres"
)

func TestEmbeddedMigrationsLoad(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Equal(t, int64(1), pg[0].Version)
	assert.Equal(t, "init", pg[0].Name)

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	for _, m := range ch {
		stmts, err := splitStatements(m.SQL)
		require.NoError(t, err, m.Name)
		assert.NotEmpty(t, stmts, m.Name)
	}
}

func TestLoad_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/10_late.sql":   {Data: []byte("SELECT 10;")},
		"m/9_early.sql":   {Data: []byte("SELECT 9;")},
		"m/002_mid.sql":   {Data: []byte("SELECT 2;")},
		"m/README.md":     {Data: []byte("ignored")},
		"m/001_first.sql": {Data: []byte("SELECT 1;")},
	}

	got, err := load(fsys, "m")
	require.NoError(t, err)

	var versions []int64
	for _, m := range got {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []int64{1, 2, 9, 10}, versions)
	assert.Equal(t, "SELECT 2;", got[1].SQL)
}

func TestLoad_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{name: "no prefix", fsys: fstest.MapFS{"m/init.sql": {}}},
		{name: "no description", fsys: fstest.MapFS{"m/001.sql": {}}},
		{name: "zero version", fsys: fstest.MapFS{"m/000_init.sql": {}}},
		{name: "duplicate version", fsys: fstest.MapFS{"m/001_a.sql": {}, "m/1_b.sql": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.fsys, "m")
			assert.Error(t, err)
		})
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `
-- header comment; with a semicolon
CREATE TABLE a (x Int8) ENGINE = Memory;

-- second
CREATE TABLE b (y String DEFAULT 'a;b') ENGINE = Memory; -- trailing
`
	stmts, err := splitStatements(sql)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x Int8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String DEFAULT 'a;b') ENGINE = Memory", stmts[1])
}

func TestSplitStatements_Quotes(t *testing.T) {
	stmts, err := splitStatements(`SELECT 'it''s'; SELECT 'x\';y'; SELECT "c;d"`)
	require.NoError(t, err)
	assert.Equal(t, []string{`SELECT 'it''s'`, `SELECT 'x\';y'`, `SELECT "c;d"`}, stmts)

	_, err = splitStatements(`SELECT 'open;`)
	assert.Error(t, err)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/spin_analytics")
	require.NoError(t, err)
	assert.Equal(t, "spin_analytics", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func setupPostgres(t *testing.T) *postgres.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, dsn, 0)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRunPostgresMigrations_AppliesOnce(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	applied, err := RunPostgresMigrations(ctx, pool)
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	applied, err = RunPostgresMigrations(ctx, pool)
	require.NoError(t, err)
	assert.Empty(t, applied, "second start must not re-run migrations")

	versions, err := AppliedPostgresVersions(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, versions)
}

func TestRunPostgres_SkipsRecordedVersions(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	// Neither file is idempotent, so a second run would fail if it re-executed them.
	fsys := fstest.MapFS{
		"m/001_first.sql":  {Data: []byte("CREATE TABLE first (id INT);")},
		"m/002_second.sql": {Data: []byte("CREATE TABLE second (id INT); INSERT INTO second VALUES (1);")},
	}

	applied, err := runPostgres(ctx, pool, fsys, "m")
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	fsys["m/003_third.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE second ADD COLUMN note TEXT;")}
	applied, err = runPostgres(ctx, pool, fsys, "m")
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, int64(3), applied[0].Version)

	var rows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM second`).Scan(&rows))
	assert.Equal(t, 1, rows)

	versions, err := AppliedPostgresVersions(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, versions)
}

func TestRunPostgres_FailedFileIsNotRecorded(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"m/001_ok.sql":     {Data: []byte("CREATE TABLE ok (id INT);")},
		"m/002_broken.sql": {Data: []byte("CREATE TABLE half (id INT); SELECT * FROM missing_table;")},
	}

	applied, err := runPostgres(ctx, pool, fsys, "m")
	require.Error(t, err)
	assert.Len(t, applied, 1)

	var exists bool
	require.NoError(t, pool.QueryRow(ctx, `SELECT to_regclass('half') IS NOT NULL`).Scan(&exists))
	assert.False(t, exists, "failed migration must roll back")

	versions, err := AppliedPostgresVersions(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, versions)
}
