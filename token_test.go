package novacast

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestToken(t *testing.T) *PermissionToken {
	t.Helper()

	token := NewPermissionToken("auth-service", "event-service", "user-1")
	require.NoError(t, token.AddPermissions("event/e1", "read", "write"))
	require.NoError(t, token.AddPermissions("session/s1", "read"))

	return token
}

func TestPermissionToken_AddPermissions(t *testing.T) {
	token := NewPermissionToken("iss", "aud", "sub")

	require.Error(t, token.AddPermissions("", "read"))
	require.Error(t, token.AddPermissions("event/e1"))
	require.NoError(t, token.AddPermissions("event/e1", "read"))
	require.Len(t, token.Permissions(), 1)
}

func TestPermissionToken_HasPermission(t *testing.T) {
	token := newTestToken(t)

	require.True(t, token.HasPermission("event/e1", "read"))
	require.True(t, token.HasPermission("event/e1", "write"))
	require.True(t, token.HasPermission("session/s1", "read"))
	require.False(t, token.HasPermission("session/s1", "write"))
	require.False(t, token.HasPermission("event/e2", "read"))
}

func TestPermissionToken_EncodeRequiresSecret(t *testing.T) {
	token := newTestToken(t)

	_, err := token.Encode("")
	require.ErrorIs(t, err, ErrSecretRequired)
}

func TestPermissionToken_RoundTrip(t *testing.T) {
	token := newTestToken(t)
	token.SetTTL(time.Minute)
	token.AddClaims(map[string]any{"session": "s1"})

	encoded, err := token.Encode(testSecret)
	require.NoError(t, err)

	decoded, err := DecodePermissionToken(encoded, testSecret, ExpectedClaims{})
	require.NoError(t, err)

	require.Equal(t, "auth-service", decoded.Issuer)
	require.Equal(t, "event-service", decoded.Audience)
	require.Equal(t, "user-1", decoded.UserUID)
	require.WithinDuration(t, token.Expiration, decoded.Expiration, time.Second)
	require.Equal(t, token.Permissions(), decoded.Permissions())
	require.Equal(t, "s1", decoded.Claims()["session"])
	require.True(t, decoded.HasPermission("event/e1", "write"))
}

func TestDecodePermissionToken_VerifiesTarget(t *testing.T) {
	token := newTestToken(t)
	encoded, err := token.Encode(testSecret)
	require.NoError(t, err)

	t.Run("matching claims", func(t *testing.T) {
		_, err := DecodePermissionToken(encoded, testSecret, ExpectedClaims{
			Issuer:   "auth-service",
			Audience: "event-service",
			UserUID:  "user-1",
		})
		require.NoError(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := DecodePermissionToken(encoded, testSecret, ExpectedClaims{Issuer: "other"})
		require.ErrorIs(t, err, ErrInvalidTarget)
	})

	t.Run("wrong audience", func(t *testing.T) {
		_, err := DecodePermissionToken(encoded, testSecret, ExpectedClaims{Audience: "other"})
		require.ErrorIs(t, err, ErrInvalidTarget)
	})

	t.Run("wrong user", func(t *testing.T) {
		_, err := DecodePermissionToken(encoded, testSecret, ExpectedClaims{UserUID: "other"})
		require.ErrorIs(t, err, ErrInvalidTarget)
	})
}

func TestDecodePermissionToken_RejectsBadSecret(t *testing.T) {
	token := newTestToken(t)
	encoded, err := token.Encode(testSecret)
	require.NoError(t, err)

	_, err = DecodePermissionToken(encoded, "wrong-secret", ExpectedClaims{})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodePermissionToken_ExpirationLeeway(t *testing.T) {
	t.Run("within leeway", func(t *testing.T) {
		token := newTestToken(t)
		token.Expiration = time.Now().Add(-10 * time.Second)

		encoded, err := token.Encode(testSecret)
		require.NoError(t, err)

		_, err = DecodePermissionToken(encoded, testSecret, ExpectedClaims{})
		require.NoError(t, err)
	})

	t.Run("beyond leeway", func(t *testing.T) {
		token := newTestToken(t)
		token.Expiration = time.Now().Add(-time.Minute)

		encoded, err := token.Encode(testSecret)
		require.NoError(t, err)

		_, err = DecodePermissionToken(encoded, testSecret, ExpectedClaims{})
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestDecodePermissionToken_RejectsUnsignedToken(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss": "auth-service",
		"sub": "user-1",
	})
	encoded, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = DecodePermissionToken(encoded, testSecret, ExpectedClaims{})
	require.ErrorIs(t, err, ErrInvalidToken)
}
