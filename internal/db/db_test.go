package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), SQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_AppliesSchemaOnce(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, db.applyMigrations(ctx))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n, "re-running migrations is a no-op")

	for _, table := range []string{"certifications", "questions", "attempts", "progress_records", "session_results"} {
		_, err := db.ExecContext(ctx, `SELECT 1 FROM `+table+` LIMIT 1`)
		assert.NoError(t, err, table)
	}
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("oracle"), "x")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	sqlite := &DB{Dialect: SQLite}
	pg := &DB{Dialect: Postgres}

	q, _, err := sqlite.Builder().Select("id").From("users").Where(squirrel.Eq{"id": "u"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id = ?", q)

	q, _, err = pg.Builder().Select("id").From("users").Where(squirrel.Eq{"id": "u"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id = $1", q)
}

func TestTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	boom := errors.New("boom")

	err := db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, display_name, created_at) VALUES ('u1', 'Ana', CURRENT_TIMESTAMP)`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n)
}
