package auth

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/submission-service/internal/platform/db"
	"github.com/noah-isme/submission-service/migrations"
)

func TestLedgerLiveAndSweepPredicatesPartitionRecords(t *testing.T) {
	assert.Contains(t, ledgerFindLiveSQL, "token = $1")
	assert.Contains(t, ledgerFindLiveSQL, "expires_at > NOW()")
	assert.Contains(t, ledgerSweepSQL, "expires_at <= NOW()")
	assert.NotContains(t, ledgerSweepSQL, "$1")
	assert.Contains(t, ledgerDeleteUserSQL, "user_id = $1")
}

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set; skipping Postgres ledger tests")
	}
	ctx := context.Background()
	pool, err := db.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool, migrations.Migrations))
	return pool
}

func TestPGLedgerExpiryBoundary(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	suffix := time.Now().UnixNano()
	var userID int64
	err := pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role_id)
		 SELECT $1, $2, 'x', id FROM roles WHERE name = 'user' RETURNING id`,
		fmt.Sprintf("ledger_%d", suffix), fmt.Sprintf("ledger_%d@example.com", suffix),
	).Scan(&userID)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, userID) })

	ledger := NewLedger(pool)
	live := fmt.Sprintf("live-%d", suffix)
	stale := fmt.Sprintf("stale-%d", suffix)
	require.NoError(t, ledger.Store(ctx, userID, live, time.Now().Add(time.Hour)))
	require.NoError(t, ledger.Store(ctx, userID, stale, time.Now().Add(-time.Hour)))

	rec, err := ledger.Find(ctx, live)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, userID, rec.UserID)

	rec, err = ledger.Find(ctx, stale)
	require.NoError(t, err)
	assert.Nil(t, rec)

	swept, err := ledger.SweepExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, swept, int64(1))

	var remaining int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1`, userID).Scan(&remaining))
	assert.Equal(t, 1, remaining)

	removed, err := ledger.DeleteOne(ctx, "missing-token")
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = ledger.DeleteAllForUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
