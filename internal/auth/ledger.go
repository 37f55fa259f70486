package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ledgerInsertSQL     = `INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`
	ledgerFindLiveSQL   = `SELECT user_id, expires_at, created_at FROM refresh_tokens WHERE token = $1 AND expires_at > NOW()`
	ledgerDeleteOneSQL  = `DELETE FROM refresh_tokens WHERE token = $1`
	ledgerDeleteUserSQL = `DELETE FROM refresh_tokens WHERE user_id = $1`

	// Sweep is the complement of the live predicate: a record is either findable or sweepable.
	ledgerSweepSQL = `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`
)

// PGLedger stores refresh tokens in PostgreSQL.
type PGLedger struct {
	pool *pgxpool.Pool
}

// NewLedger constructs a PostgreSQL-backed ledger.
func NewLedger(pool *pgxpool.Pool) *PGLedger {
	return &PGLedger{pool: pool}
}

// Store inserts a refresh token record.
func (l *PGLedger) Store(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := l.pool.Exec(ctx, ledgerInsertSQL, userID, token, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("ledger: store: %w", err)
	}
	return nil
}

// Find returns the record for token when it has not yet expired.
func (l *PGLedger) Find(ctx context.Context, token string) (*RefreshToken, error) {
	rec := &RefreshToken{Token: token}
	err := l.pool.QueryRow(ctx, ledgerFindLiveSQL, token).Scan(&rec.UserID, &rec.ExpiresAt, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: find: %w", err)
	}
	return rec, nil
}

// DeleteOne removes token; deleting an unknown token is not an error.
func (l *PGLedger) DeleteOne(ctx context.Context, token string) (int64, error) {
	return l.exec(ctx, "delete", ledgerDeleteOneSQL, token)
}

// DeleteAllForUser removes every token issued to userID.
func (l *PGLedger) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	return l.exec(ctx, "delete all", ledgerDeleteUserSQL, userID)
}

// SweepExpired removes records whose expiry has passed.
func (l *PGLedger) SweepExpired(ctx context.Context) (int64, error) {
	return l.exec(ctx, "sweep", ledgerSweepSQL)
}

func (l *PGLedger) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	tag, err := l.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ledger: %s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}
