package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup/pkg/platform/sentinel"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty url", func(t *testing.T) {
		_, err := Open(ctx, "  ")
		require.Error(t, err)
	})

	t.Run("rejects unknown scheme", func(t *testing.T) {
		_, err := Open(ctx, "mysql://localhost/db")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database url scheme")
	})

	t.Run("opens sqlite file", func(t *testing.T) {
		db, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "signup.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		assert.Equal(t, DialectSQLite, db.Dialect)
		assert.NoError(t, db.Health(ctx))
	})

	t.Run("closed database is unavailable", func(t *testing.T) {
		db, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "closed.db"))
		require.NoError(t, err)
		require.NoError(t, db.Close())

		assert.ErrorIs(t, db.Health(ctx), sentinel.ErrUnavailable)
	})
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations := fstest.MapFS{
		"sql/0001_widgets.sql": {Data: []byte(`
-- widgets
CREATE TABLE widgets (id INTEGER PRIMARY KEY, label TEXT NOT NULL);
CREATE INDEX widgets_label_idx ON widgets (label);
`)},
		"sql/0002_seed.sql": {Data: []byte(`INSERT INTO widgets (label) VALUES ('first');`)},
		"sql/README.md":     {Data: []byte("not a migration")},
	}

	require.NoError(t, Migrate(ctx, db, migrations, "sql"))
	// Second run must be a no-op; re-running 0001 would fail on CREATE TABLE.
	require.NoError(t, Migrate(ctx, db, migrations, "sql"))

	var count int
	require.NoError(t, db.SQL.QueryRowContext(ctx, `SELECT COUNT(1) FROM widgets`).Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, db.SQL.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$2", (&DB{Dialect: DialectPostgres}).Placeholder(2))
	assert.Equal(t, "?", (&DB{Dialect: DialectSQLite}).Placeholder(2))
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (x INT);\n\n;CREATE TABLE b (y INT)")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, stmts)
}
