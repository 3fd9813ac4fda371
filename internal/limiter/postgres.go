package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG is a PostgreSQL-backed limiter implementation with sliding window and lockout.
type PG struct {
	pool   Querier
	policy Policy
	now    func() time.Time
}

// Querier is the subset of a pgx pool the limiter needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(q Querier, p Policy) *PG {
	return &PG{pool: q, policy: p, now: time.Now}
}

// Allow reports whether verification is currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, ipHash []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM auth_limiter WHERE ip_hash=$1`
	var blockedUntil time.Time
	err := l.pool.QueryRow(ctx, q, ipHash).Scan(&blockedUntil)
	switch {
	case err == nil:
		if now := l.now(); blockedUntil.After(now) {
			return false, blockedUntil.Sub(now), nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for the address.
func (l *PG) Success(ctx context.Context, ipHash []byte) error {
	const q = `
INSERT INTO auth_limiter (ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,0,'epoch',now())
ON CONFLICT (ip_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.pool.Exec(ctx, q, ipHash)
	return err
}

// Failure records a rejected token; may set a block until a future time.
func (l *PG) Failure(ctx context.Context, ipHash []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO auth_limiter (ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,1,'epoch',now())
ON CONFLICT (ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN EXCLUDED.updated_at - auth_limiter.updated_at > $2::interval THEN 1 ELSE auth_limiter.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.pool.QueryRow(ctx, q, ipHash, l.policy.Window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.policy.MaxFails {
		return false, 0, nil
	}
	blockUntil := l.now().Add(l.policy.BlockFor)
	const upd = `UPDATE auth_limiter SET blocked_until=$2 WHERE ip_hash=$1`
	if _, err := l.pool.Exec(ctx, upd, ipHash, blockUntil); err != nil {
		return false, 0, err
	}
	return true, l.policy.BlockFor, nil
}
