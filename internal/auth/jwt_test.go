package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, "civicvoice", time.Hour)
	userID := uuid.New().String()

	token, expires, err := m.GenerateAccessToken(userID, "+919876543210")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, "civicvoice", time.Hour)
	userID := uuid.New().String()

	expired := NewJWTManager(testSecret, "civicvoice", -time.Minute)
	expiredToken, _, err := expired.GenerateAccessToken(userID, "")
	require.NoError(t, err)

	otherIssuer := NewJWTManager(testSecret, "someone-else", time.Hour)
	otherIssuerToken, _, err := otherIssuer.GenerateAccessToken(userID, "")
	require.NoError(t, err)

	otherSecret := NewJWTManager("ffffffffffffffffffffffffffffffff", "civicvoice", time.Hour)
	otherSecretToken, _, err := otherSecret.GenerateAccessToken(userID, "")
	require.NoError(t, err)

	badSubject, _, err := m.GenerateAccessToken("not-a-uuid", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: userID, Issuer: "civicvoice"})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"expired", expiredToken},
		{"wrong issuer", otherIssuerToken},
		{"wrong secret", otherSecretToken},
		{"non-uuid subject", badSubject},
		{"alg none", noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateAccessToken(tt.token)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestHashCode(t *testing.T) {
	a := HashCode("+911234567890", "123456")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashCode("+911234567890", "123456"))
	assert.NotEqual(t, a, HashCode("+911234567891", "123456"), "hash is bound to the phone")
}
