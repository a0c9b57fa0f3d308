package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princekumar9234/DarkBot/internal/core"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager([]byte("super-secret"), time.Hour)

	tok, err := tm.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager([]byte("secret"), time.Hour)
	tm.ttl = -time.Second

	tok, err := tm.Issue("u1")
	require.NoError(t, err)

	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager([]byte("right-secret"), time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenManager([]byte("wrong-secret"), time.Hour).Verify(tok)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager([]byte("secret"), time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Verify(tok)
		assert.ErrorIs(t, err, core.ErrInvalidToken, "token %q", tok)
	}
}

func TestDefaultTTL(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager([]byte("secret"), 0)
	assert.Equal(t, SessionTTL, tm.ttl)
}
