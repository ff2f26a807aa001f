package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klinika/internal/db"
)

func TestRevocationLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	revoked, err := IsTokenRevoked(ctx, database, "jti-live")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, database, Revocation{
		JTI: "jti-live", ClinicCode: "DEMO123", UserID: 1, RevokedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, RevokeToken(ctx, database, Revocation{
		JTI: "jti-stale", ClinicCode: "DEMO123", UserID: 1, RevokedAt: now, ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, RevokeToken(ctx, database, Revocation{
		JTI: "jti-other", ClinicCode: "OTHER99", UserID: 2, RevokedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	for _, jti := range []string{"jti-live", "jti-stale", "jti-other"} {
		revoked, err := IsTokenRevoked(ctx, database, jti)
		require.NoError(t, err)
		assert.True(t, revoked, jti)
	}

	purged, err := PurgeRevokedTokens(ctx, database, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	revoked, err = IsTokenRevoked(ctx, database, "jti-stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = IsTokenRevoked(ctx, database, "jti-live")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevokeTokenTwiceKeepsFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, RevokeToken(ctx, database, Revocation{JTI: "jti-1", ClinicCode: "DEMO123", ExpiresAt: exp}))
	require.NoError(t, RevokeToken(ctx, database, Revocation{JTI: "jti-1", ClinicCode: "OTHER99", ExpiresAt: exp}))

	var clinic string
	require.NoError(t, database.QueryRow(`SELECT clinic_code FROM revoked_tokens WHERE jti = ?`, "jti-1").Scan(&clinic))
	assert.Equal(t, "DEMO123", clinic)
}

func TestRevokeTokenRequiresID(t *testing.T) {
	database := db.NewTestDB(t)
	err := RevokeToken(context.Background(), database, Revocation{ExpiresAt: time.Now()})
	assert.Error(t, err)
}
