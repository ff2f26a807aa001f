package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Revocation is a logged-out token. Rows only need to outlive the token
// itself, after which the signature check rejects it anyway.
type Revocation struct {
	JTI        string
	ClinicCode string
	UserID     int64
	RevokedAt  time.Time
	ExpiresAt  time.Time
}

// RevokeToken records a revocation. Revoking the same token twice keeps the
// first record.
func RevokeToken(ctx context.Context, db *sql.DB, rev Revocation) error {
	if rev.JTI == "" {
		return fmt.Errorf("revoking token: missing token id")
	}
	if rev.RevokedAt.IsZero() {
		rev.RevokedAt = time.Now()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, clinic_code, user_id, revoked_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		rev.JTI, rev.ClinicCode, rev.UserID, dbTime(rev.RevokedAt), dbTime(rev.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("revoking token %s: %w", rev.JTI, err)
	}
	return nil
}

// IsTokenRevoked reports whether the token id is on the revocation list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}

// PurgeRevokedTokens drops revocations for tokens that expired before now
// and returns how many were removed.
func PurgeRevokedTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, dbTime(now))
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	return n, nil
}
