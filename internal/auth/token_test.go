package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))

	token, hash, expireAt, err := Generate(opts, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Contains(t, hash, "sha256:")
	assert.WithinDuration(t, time.Now().Add(opts.TTL), expireAt, time.Minute)

	claims, err := Verify(opts, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, _, _, err := Generate(DefaultOptions([]byte("secret-a")), "alice")
	require.NoError(t, err)

	_, err = Verify(DefaultOptions([]byte("secret-b")), token)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	opts.TTL = -time.Hour

	token, _, _, err := Generate(opts, "alice")
	require.NoError(t, err)

	_, err = Verify(opts, token)
	assert.Error(t, err)
}

func TestEmptySecretRefused(t *testing.T) {
	opts := DefaultOptions([]byte(""))

	// An empty HMAC key would sign tokens anyone can forge; both ends
	// refuse it.
	_, _, _, err := Generate(opts, "alice")
	assert.Error(t, err)

	token, _, _, err := Generate(DefaultOptions([]byte("real-secret")), "alice")
	require.NoError(t, err)

	_, err = Verify(opts, token)
	assert.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := Verify(DefaultOptions([]byte("test-secret")), "not.a.token")
	assert.Error(t, err)
}

func TestUnsupportedAlg(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	opts.Alg = "RS256"

	_, _, _, err := Generate(opts, "alice")
	assert.Error(t, err)
}

func TestHashToken_Stable(t *testing.T) {
	assert.Equal(t, HashToken("tok"), HashToken("tok"))
	assert.NotEqual(t, HashToken("tok"), HashToken("other"))
}

func TestTokenAuthenticator(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	token, _, _, err := Generate(opts, "alice")
	require.NoError(t, err)

	authenticator := NewTokenAuthenticator(opts)

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		subject, err := authenticator.Authenticate(r)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("query parameter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?token="+token, nil)

		subject, err := authenticator.Authenticate(r)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)

		_, err := authenticator.Authenticate(r)
		assert.Error(t, err)
	})

	t.Run("invalid token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?token=bogus", nil)

		_, err := authenticator.Authenticate(r)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
