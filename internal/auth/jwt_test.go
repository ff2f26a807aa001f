package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klinika/internal/model"
)

func testUser() *model.User {
	u := &model.User{ID: 1, Name: "Ana Novak", Email: "ana@example.com", Role: model.RoleAdministrator}
	u.ClinicCode = "DEMO123"
	return u
}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, 0, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)

	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "Ana Novak", claims.Name)
	assert.Equal(t, model.RoleAdministrator, claims.Role)
	assert.Equal(t, "DEMO123", claims.ClinicCode)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateTokenRequiresClinic(t *testing.T) {
	u := testUser()
	u.ClinicCode = ""

	_, err := GenerateToken("secret", 0, u)
	assert.Error(t, err)
}

func TestValidateTokenWithoutClinic(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ValidateToken("secret", signed)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret1", 0, testUser())
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	assert.Error(t, err)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", time.Nanosecond, testUser())
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = ValidateToken("secret", token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"default", 0, TokenExpiry},
		{"custom", 2 * time.Hour, 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken("test", tt.ttl, testUser())
			require.NoError(t, err)
			claims, err := ValidateToken("test", token)
			require.NoError(t, err)

			assert.WithinDuration(t, time.Now().Add(tt.want), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}
